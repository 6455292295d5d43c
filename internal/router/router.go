// Package router defines how HTTP routes are registered for the application.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/luhambo/before-you-sign/internal/handler"
	"github.com/luhambo/before-you-sign/internal/middleware"
	"github.com/luhambo/before-you-sign/internal/model"
	"github.com/luhambo/before-you-sign/internal/session"
)

// Register wires every route and the shared middleware chain onto the
// provided Echo instance. LoadSession runs on all routes so handlers and
// templates can read the request's session; the role groups add their own
// guards on top.
func Register(e *echo.Echo, store session.Store, a *handler.AuthHandler, d *handler.DashboardHandler, v *handler.VehicleHandler) {
	e.Use(echomw.RequestID())
	e.Use(middleware.LoadSession(store))

	e.GET("/healthz", handler.Health)

	// Public pages and the auth surface.
	e.GET("/", a.Home)
	e.GET("/login", a.LoginForm)
	e.POST("/login", a.Login)
	e.GET("/register/dealership", a.RegisterDealershipForm)
	e.POST("/register/dealership", a.RegisterDealership)
	e.GET("/register/customer", a.RegisterCustomerForm)
	e.POST("/register/customer", a.RegisterCustomer)
	e.GET("/logout", a.Logout)

	// Public vehicle pages. The QR image and the verification link are
	// reachable without a session so a scanned code works for anyone.
	e.GET("/vehicle/:id", v.Detail)
	e.GET("/vehicle/:id/qr", v.QR)
	e.GET("/verify", v.Verify)

	// Role-gated dashboards. Each group checks the exact role; a session
	// with a different role gets the rendered 403 page.
	admin := e.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/dashboard", d.Admin)

	dealership := e.Group("/dealership", middleware.RequireRole(model.RoleDealership))
	dealership.GET("/dashboard", d.Dealership)
	dealership.GET("/vehicles/new", v.NewForm)
	dealership.POST("/vehicles", v.Create)
	dealership.GET("/vehicles/:id/edit", v.EditForm)
	dealership.POST("/vehicles/:id", v.Update)
	dealership.POST("/vehicles/:id/sold", v.MarkSold)
	dealership.POST("/vehicles/:id/delist", v.Delist)
	dealership.POST("/vehicles/:id/documents", v.UploadDocuments)

	customer := e.Group("/customer", middleware.RequireRole(model.RoleCustomer))
	customer.GET("/dashboard", d.Customer)

	e.RouteNotFound("/*", handler.NotFound)
}
