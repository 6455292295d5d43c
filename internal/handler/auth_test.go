package handler_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luhambo/before-you-sign/internal/config"
	"github.com/luhambo/before-you-sign/internal/database"
	"github.com/luhambo/before-you-sign/internal/handler"
	"github.com/luhambo/before-you-sign/internal/repository"
	"github.com/luhambo/before-you-sign/internal/router"
	"github.com/luhambo/before-you-sign/internal/session"
	"github.com/luhambo/before-you-sign/internal/upload"
	"github.com/luhambo/before-you-sign/internal/utils"
	"github.com/luhambo/before-you-sign/internal/view"
)

type testApp struct {
	e     *echo.Echo
	db    *sql.DB
	store session.Store
}

func newTestApp(t *testing.T, name string) *testApp {
	t.Helper()
	db, err := database.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)

	cfg := config.Config{
		Env:               "dev",
		BcryptCost:        4, // keep test hashing fast
		SessionTTL:        time.Hour,
		QRSecret:          "test-secret",
		QRTokenTTL:        time.Hour,
		BaseURL:           "http://test.local",
		MaxUploadSize:     5 * 1024 * 1024,
		MaxDocsPerVehicle: 10,
	}

	base := t.TempDir()
	cfg.UploadDir = filepath.Join(base, "uploads")
	if err := upload.EnsureDirs(cfg.UploadDir, filepath.Join(base, "qr-codes"), filepath.Join(base, "logs")); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	users := repository.NewUserRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	documents := repository.NewDocumentRepo(db, cfg.MaxDocsPerVehicle)

	e := echo.New()
	e.Renderer = renderer
	router.Register(e, store,
		handler.NewAuthHandler(cfg, users, store),
		handler.NewDashboardHandler(users, vehicles),
		handler.NewVehicleHandler(cfg, vehicles, documents))
	return &testApp{e: e, db: db, store: store}
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func dealershipForm(username string) url.Values {
	return url.Values{
		"username":        {username},
		"email":           {username + "@example.com"},
		"password":        {"pw123456"},
		"confirmPassword": {"pw123456"},
		"businessName":    {"Acme Motors"},
		"city":            {"Cape Town"},
	}
}

func customerForm(username string) url.Values {
	return url.Values{
		"username":        {username},
		"email":           {username + "@example.com"},
		"password":        {"pw123456"},
		"confirmPassword": {"pw123456"},
		"fullName":        {"Test Customer"},
	}
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("expected a session cookie to be set")
	return nil
}

func assertNoSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			t.Fatal("session cookie set on a failed login")
		}
	}
}

func TestRegisterDealershipThenLogin(t *testing.T) {
	app := newTestApp(t, "auth_flow")

	rec := app.postForm("/register/dealership", dealershipForm("acme1"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("register: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	rec = app.postForm("/login", url.Values{"username": {"acme1"}, "password": {"pw123456"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dealership/dashboard" {
		t.Fatalf("login: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	cookie := sessionCookieFrom(t, rec)

	sess, err := app.store.Get(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if sess.Role.String() != "dealership" || sess.Username != "acme1" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	// The cookie opens the dealership dashboard but not the others.
	if rec := app.get("/dealership/dashboard", cookie); rec.Code != http.StatusOK {
		t.Fatalf("own dashboard: code=%d", rec.Code)
	}
	if rec := app.get("/admin/dashboard", cookie); rec.Code != http.StatusForbidden {
		t.Fatalf("admin dashboard: code=%d, want 403", rec.Code)
	}
	if rec := app.get("/customer/dashboard", cookie); rec.Code != http.StatusForbidden {
		t.Fatalf("customer dashboard: code=%d, want 403", rec.Code)
	}
}

func TestLogin_RoleToDashboardMapping(t *testing.T) {
	app := newTestApp(t, "auth_mapping")

	// Admins have no registration route; seed one directly.
	hash, err := utils.HashPassword("pw123456", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := app.db.Exec(
		"INSERT INTO users (username, email, password, role) VALUES ('root','root@example.com',?,'admin')", hash); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	app.postForm("/register/dealership", dealershipForm("dealer"))
	app.postForm("/register/customer", customerForm("buyer"))

	cases := []struct {
		username, want string
	}{
		{"root", "/admin/dashboard"},
		{"dealer", "/dealership/dashboard"},
		{"buyer", "/customer/dashboard"},
	}
	for _, tc := range cases {
		rec := app.postForm("/login", url.Values{"username": {tc.username}, "password": {"pw123456"}})
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != tc.want {
			t.Fatalf("%s: code=%d location=%q, want 303 %s",
				tc.username, rec.Code, rec.Header().Get("Location"), tc.want)
		}
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t, "auth_generic")
	app.postForm("/register/customer", customerForm("jane"))

	ghost := app.postForm("/login", url.Values{"username": {"ghost"}, "password": {"whatever"}})
	wrongPw := app.postForm("/login", url.Values{"username": {"jane"}, "password": {"wrong"}})

	for name, rec := range map[string]*httptest.ResponseRecorder{"unknown user": ghost, "wrong password": wrongPw} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: code=%d, want 401", name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Invalid username or password") {
			t.Fatalf("%s: generic error message missing", name)
		}
		assertNoSessionCookie(t, rec)
	}
	// Identical bodies: the response must not reveal which half failed.
	if ghost.Body.String() != wrongPw.Body.String() {
		t.Fatal("unknown-user and wrong-password responses differ")
	}
}

func TestRegister_PasswordMismatchHasNoSideEffects(t *testing.T) {
	app := newTestApp(t, "auth_mismatch")

	for path, form := range map[string]url.Values{
		"/register/dealership": dealershipForm("d1"),
		"/register/customer":   customerForm("c1"),
	} {
		form.Set("confirmPassword", "different")
		rec := app.postForm(path, form)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: code=%d, want 400", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Passwords do not match") {
			t.Fatalf("%s: mismatch message missing", path)
		}
	}

	var users int
	if err := app.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 0 {
		t.Fatalf("rows written despite mismatch: %d", users)
	}
}

func TestRegister_DuplicateRendersConflict(t *testing.T) {
	app := newTestApp(t, "auth_dup")

	if rec := app.postForm("/register/customer", customerForm("jane")); rec.Code != http.StatusSeeOther {
		t.Fatalf("first register: code=%d", rec.Code)
	}
	rec := app.postForm("/register/customer", customerForm("jane"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: code=%d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Username or email already exists") {
		t.Fatal("duplicate message missing")
	}
}

func TestLogout_DestroysSessionAndIsIdempotent(t *testing.T) {
	app := newTestApp(t, "auth_logout")
	app.postForm("/register/customer", customerForm("jane"))

	rec := app.postForm("/login", url.Values{"username": {"jane"}, "password": {"pw123456"}})
	cookie := sessionCookieFrom(t, rec)

	rec = app.get("/logout", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("logout: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	// The old cookie no longer opens gated pages.
	rec = app.get("/customer/dashboard", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("after logout: code=%d location=%q, want redirect to /login", rec.Code, rec.Header().Get("Location"))
	}
	// Logging out with no session at all is still a clean redirect.
	rec = app.get("/logout")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("anonymous logout: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginForm_RedirectsAuthenticatedUsers(t *testing.T) {
	app := newTestApp(t, "auth_loginform")
	app.postForm("/register/customer", customerForm("jane"))
	rec := app.postForm("/login", url.Values{"username": {"jane"}, "password": {"pw123456"}})
	cookie := sessionCookieFrom(t, rec)

	rec = app.get("/login", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/customer/dashboard" {
		t.Fatalf("authed /login: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestNotFound_RendersPage(t *testing.T) {
	app := newTestApp(t, "auth_404")
	rec := app.get("/no/such/page")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code=%d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page Not Found") {
		t.Fatal("404 page not rendered")
	}
}
