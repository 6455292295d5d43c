package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luhambo/before-you-sign/internal/middleware"
	"github.com/luhambo/before-you-sign/internal/repository"
)

// DashboardHandler serves the role-keyed landing pages. Each handler sits
// behind RequireRole for its role, so the session is present and matching
// by the time these run.
type DashboardHandler struct {
	Users    *repository.UserRepo
	Vehicles *repository.VehicleRepo
}

func NewDashboardHandler(users *repository.UserRepo, vehicles *repository.VehicleRepo) *DashboardHandler {
	return &DashboardHandler{Users: users, Vehicles: vehicles}
}

// Admin renders account counts per role.
func (h *DashboardHandler) Admin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Users.CountByRole(ctx)
	if err != nil {
		return serverError(c, err, "admin dashboard query failed")
	}
	byName := map[string]int{}
	for role, n := range counts {
		byName[role.String()] = n
	}
	return c.Render(http.StatusOK, "dashboard-admin.html",
		page(c, "Admin Dashboard", echo.Map{"Counts": byName}))
}

// Dealership renders the dealership's profile header and vehicle list.
func (h *DashboardHandler) Dealership(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Users.DealershipProfileByUserID(ctx, sess.UserID)
	if err != nil {
		return serverError(c, err, "dealership profile query failed")
	}
	vehicles, err := h.Vehicles.ListByDealership(ctx, sess.UserID)
	if err != nil {
		return serverError(c, err, "dealership vehicle query failed")
	}
	return c.Render(http.StatusOK, "dashboard-dealership.html",
		page(c, "Dealership Dashboard", echo.Map{
			"Profile":  profile,
			"Vehicles": vehicles,
		}))
}

// Customer renders the customer's profile greeting and browsable listings.
func (h *DashboardHandler) Customer(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Users.CustomerProfileByUserID(ctx, sess.UserID)
	if err != nil {
		return serverError(c, err, "customer profile query failed")
	}
	vehicles, err := h.Vehicles.ListAvailable(ctx, 50)
	if err != nil {
		return serverError(c, err, "vehicle browse query failed")
	}
	return c.Render(http.StatusOK, "dashboard-customer.html",
		page(c, "Customer Dashboard", echo.Map{
			"Profile":  profile,
			"Vehicles": vehicles,
		}))
}
