package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luhambo/before-you-sign/internal/config"
	"github.com/luhambo/before-you-sign/internal/middleware"
	"github.com/luhambo/before-you-sign/internal/model"
	"github.com/luhambo/before-you-sign/internal/queue"
	"github.com/luhambo/before-you-sign/internal/repository"
	queuepub "github.com/luhambo/before-you-sign/internal/service"
	"github.com/luhambo/before-you-sign/internal/session"
	"github.com/luhambo/before-you-sign/internal/utils"
)

// Login failures use one message for unknown usernames and wrong passwords
// so the response never reveals whether an account exists.
const invalidCredentials = "Invalid username or password"

// AuthHandler bundles dependencies for the login/registration/logout
// endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions session.Store
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, sessions session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions}
}

// Home renders the landing page.
func (h *AuthHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", page(c, "Before You Sign - Home", nil))
}

// LoginForm renders the login page. Users who already hold a session are
// sent straight to their dashboard.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	if sess := middleware.CurrentSession(c); sess != nil {
		return c.Redirect(http.StatusSeeOther, sess.Role.DashboardPath())
	}
	return c.Render(http.StatusOK, "login.html", page(c, "Login", nil))
}

// Login verifies credentials and establishes a session. Exactly one
// session is created per successful call; no session or cookie is issued
// on any failure path.
func (h *AuthHandler) Login(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Render(http.StatusUnauthorized, "login.html",
			page(c, "Login", echo.Map{"Error": invalidCredentials}))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Render(http.StatusUnauthorized, "login.html",
				page(c, "Login", echo.Map{"Error": invalidCredentials}))
		}
		// Covers storage failures and a corrupt role column; both fail
		// closed instead of redirecting somewhere undefined.
		return serverError(c, err, "login user lookup failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return c.Render(http.StatusUnauthorized, "login.html",
			page(c, "Login", echo.Map{"Error": invalidCredentials}))
	}

	sess, err := h.Sessions.Create(ctx, u.ID, u.Username, u.Email, u.Role)
	if err != nil {
		return serverError(c, err, "session create failed")
	}
	c.SetCookie(sessionCookie(sess.ID, int(h.Cfg.SessionTTL.Seconds()), h.Cfg.Env == "prod"))
	return c.Redirect(http.StatusSeeOther, u.Role.DashboardPath())
}

// RegisterDealershipForm renders the dealership registration page.
func (h *AuthHandler) RegisterDealershipForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register-dealership.html",
		page(c, "Dealership Registration", nil))
}

var dealershipFormFields = []string{
	"username", "email", "businessName", "registrationNumber", "licenseNumber",
	"yearEstablished", "phone", "address", "city", "postalCode",
	"website", "operatingHours", "description",
}

// RegisterDealership creates a dealership account: one user row and one
// profile row, committed together or not at all.
func (h *AuthHandler) RegisterDealership(c echo.Context) error {
	form := formMap(c, dealershipFormFields...)
	rerender := func(status int, msg string) error {
		return c.Render(status, "register-dealership.html",
			page(c, "Dealership Registration", echo.Map{"Error": msg, "Form": form}))
	}

	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	if username == "" || email == "" || password == "" {
		return rerender(http.StatusBadRequest, "Username, email and password are required")
	}
	if password != c.FormValue("confirmPassword") {
		return rerender(http.StatusBadRequest, "Passwords do not match")
	}
	if strings.TrimSpace(c.FormValue("businessName")) == "" {
		return rerender(http.StatusBadRequest, "Business name is required")
	}
	year, _ := strconv.Atoi(strings.TrimSpace(c.FormValue("yearEstablished")))

	profile := &model.DealershipProfile{
		BusinessName:       strings.TrimSpace(c.FormValue("businessName")),
		RegistrationNumber: strings.TrimSpace(c.FormValue("registrationNumber")),
		LicenseNumber:      strings.TrimSpace(c.FormValue("licenseNumber")),
		YearEstablished:    year,
		Email:              strings.ToLower(email),
		Phone:              strings.TrimSpace(c.FormValue("phone")),
		Address:            strings.TrimSpace(c.FormValue("address")),
		City:               strings.TrimSpace(c.FormValue("city")),
		PostalCode:         strings.TrimSpace(c.FormValue("postalCode")),
		Website:            strings.TrimSpace(c.FormValue("website")),
		OperatingHours:     strings.TrimSpace(c.FormValue("operatingHours")),
		Description:        strings.TrimSpace(c.FormValue("description")),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Users.RegisterDealership(ctx, username, email, password, h.Cfg.BcryptCost, profile)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return rerender(http.StatusConflict, "Username or email already exists")
		}
		return serverError(c, err, "dealership registration failed")
	}

	h.publishRegistered(userID, username, model.RoleDealership)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// RegisterCustomerForm renders the customer registration page.
func (h *AuthHandler) RegisterCustomerForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register-customer.html",
		page(c, "Customer Registration", nil))
}

var customerFormFields = []string{
	"username", "email", "fullName", "phone", "address", "city", "postalCode",
}

// RegisterCustomer is the customer variant of RegisterDealership.
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
	form := formMap(c, customerFormFields...)
	rerender := func(status int, msg string) error {
		return c.Render(status, "register-customer.html",
			page(c, "Customer Registration", echo.Map{"Error": msg, "Form": form}))
	}

	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	if username == "" || email == "" || password == "" {
		return rerender(http.StatusBadRequest, "Username, email and password are required")
	}
	if password != c.FormValue("confirmPassword") {
		return rerender(http.StatusBadRequest, "Passwords do not match")
	}
	if strings.TrimSpace(c.FormValue("fullName")) == "" {
		return rerender(http.StatusBadRequest, "Full name is required")
	}

	profile := &model.CustomerProfile{
		FullName:   strings.TrimSpace(c.FormValue("fullName")),
		Phone:      strings.TrimSpace(c.FormValue("phone")),
		Address:    strings.TrimSpace(c.FormValue("address")),
		City:       strings.TrimSpace(c.FormValue("city")),
		PostalCode: strings.TrimSpace(c.FormValue("postalCode")),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Users.RegisterCustomer(ctx, username, email, password, h.Cfg.BcryptCost, profile)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return rerender(http.StatusConflict, "Username or email already exists")
		}
		return serverError(c, err, "customer registration failed")
	}

	h.publishRegistered(userID, username, model.RoleCustomer)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Logout destroys the current session unconditionally and redirects home.
// Safe to call without a session.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.Sessions.Destroy(ctx, cookie.Value); err != nil {
			logger.Error().Err(err).Msg("session destroy failed")
		}
	}
	c.SetCookie(sessionCookie("", -1, h.Cfg.Env == "prod"))
	return c.Redirect(http.StatusSeeOther, "/")
}

// publishRegistered emits the registration event in the background. The
// account is already committed, so broker trouble must not affect the
// response.
func (h *AuthHandler) publishRegistered(userID int64, username string, role model.Role) {
	if h.Cfg.AMQPURL == "" {
		return
	}
	ev := queue.UserRegisteredEvent{
		UserID:       userID,
		Username:     username,
		Role:         role.String(),
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepub.PublishUserRegistered(ctx, h.Cfg.AMQPURL, ev)
	}()
}
