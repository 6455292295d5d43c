package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/luhambo/before-you-sign/internal/config"
	"github.com/luhambo/before-you-sign/internal/middleware"
	"github.com/luhambo/before-you-sign/internal/model"
	"github.com/luhambo/before-you-sign/internal/qr"
	"github.com/luhambo/before-you-sign/internal/queue"
	"github.com/luhambo/before-you-sign/internal/repository"
	queuepub "github.com/luhambo/before-you-sign/internal/service"
	"github.com/luhambo/before-you-sign/internal/upload"
)

// VehicleHandler serves vehicle listing pages: dealership CRUD, the public
// detail page, document uploads and the QR verification pair.
type VehicleHandler struct {
	Cfg       config.Config
	Vehicles  *repository.VehicleRepo
	Documents *repository.DocumentRepo
}

func NewVehicleHandler(cfg config.Config, vehicles *repository.VehicleRepo, documents *repository.DocumentRepo) *VehicleHandler {
	return &VehicleHandler{Cfg: cfg, Vehicles: vehicles, Documents: documents}
}

// NewForm renders the listing form for dealerships.
func (h *VehicleHandler) NewForm(c echo.Context) error {
	return c.Render(http.StatusOK, "vehicle-new.html", page(c, "List a Vehicle", nil))
}

var vehicleFormFields = []string{"make", "model", "year", "price", "mileage", "vin", "description"}

// Create handles POST /dealership/vehicles.
func (h *VehicleHandler) Create(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	form := formMap(c, vehicleFormFields...)
	rerender := func(status int, msg string) error {
		return c.Render(status, "vehicle-new.html",
			page(c, "List a Vehicle", echo.Map{"Error": msg, "Form": form}))
	}

	v, msg := vehicleFromForm(c)
	if msg != "" {
		return rerender(http.StatusBadRequest, msg)
	}
	v.DealershipID = sess.UserID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Vehicles.Create(ctx, v); err != nil {
		return serverError(c, err, "vehicle create failed")
	}

	h.publishListed(v)
	return c.Redirect(http.StatusSeeOther, "/dealership/dashboard")
}

// vehicleFromForm validates the shared listing form fields and returns the
// partially populated record, or a non-empty message describing the first
// problem. ID and DealershipID are left for the caller.
func vehicleFromForm(c echo.Context) (*model.Vehicle, string) {
	make_ := strings.TrimSpace(c.FormValue("make"))
	modelName := strings.TrimSpace(c.FormValue("model"))
	if make_ == "" || modelName == "" {
		return nil, "Make and model are required"
	}
	year, err := strconv.Atoi(strings.TrimSpace(c.FormValue("year")))
	if err != nil || year < 1900 || year > time.Now().Year()+1 {
		return nil, "Enter a valid year"
	}
	priceCents, err := parsePriceCents(c.FormValue("price"))
	if err != nil {
		return nil, "Enter a valid price"
	}
	mileage, _ := strconv.Atoi(strings.TrimSpace(c.FormValue("mileage")))

	return &model.Vehicle{
		Make:        make_,
		Model:       modelName,
		Year:        year,
		PriceCents:  priceCents,
		MileageKM:   mileage,
		VIN:         strings.ToUpper(strings.TrimSpace(c.FormValue("vin"))),
		Description: strings.TrimSpace(c.FormValue("description")),
	}, ""
}

// EditForm renders the edit page for a listing the dealership owns,
// pre-filled with the stored values.
func (h *VehicleHandler) EditForm(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NotFound(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		return serverError(c, err, "vehicle query failed")
	}
	if v == nil {
		return NotFound(c)
	}
	if v.DealershipID != sess.UserID {
		return renderError(c, http.StatusForbidden, "Access Denied",
			"You can only manage your own vehicles.")
	}
	form := map[string]string{
		"make":        v.Make,
		"model":       v.Model,
		"year":        strconv.Itoa(v.Year),
		"price":       fmt.Sprintf("%d.%02d", v.PriceCents/100, v.PriceCents%100),
		"mileage":     strconv.Itoa(v.MileageKM),
		"vin":         v.VIN,
		"description": v.Description,
	}
	return c.Render(http.StatusOK, "vehicle-edit.html",
		page(c, "Edit Vehicle", echo.Map{"Form": form, "VehicleID": id}))
}

// Update handles POST /dealership/vehicles/:id and rewrites a listing's
// editable fields.
func (h *VehicleHandler) Update(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NotFound(c)
	}
	form := formMap(c, vehicleFormFields...)
	rerender := func(status int, msg string) error {
		return c.Render(status, "vehicle-edit.html",
			page(c, "Edit Vehicle", echo.Map{"Error": msg, "Form": form, "VehicleID": id}))
	}

	v, msg := vehicleFromForm(c)
	if msg != "" {
		return rerender(http.StatusBadRequest, msg)
	}
	v.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Vehicles.Update(ctx, v, sess.UserID); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return renderError(c, http.StatusForbidden, "Access Denied",
				"You can only manage your own vehicles.")
		}
		return serverError(c, err, "vehicle update failed")
	}
	return c.Redirect(http.StatusSeeOther, "/vehicle/"+strconv.FormatInt(id, 10))
}

// Detail renders one vehicle. The page is public; the owning dealership
// additionally sees the upload form and QR image.
func (h *VehicleHandler) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NotFound(c)
	}
	return h.renderDetail(c, id)
}

// Verify resolves a scanned QR token to the vehicle it signs.
func (h *VehicleHandler) Verify(c echo.Context) error {
	id, err := qr.ParseLinkToken(h.Cfg.QRSecret, c.QueryParam("token"))
	if err != nil {
		return renderError(c, http.StatusBadRequest, "Invalid Link",
			"This verification link is invalid or has expired.")
	}
	return h.renderDetail(c, id)
}

func (h *VehicleHandler) renderDetail(c echo.Context, id int64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		return serverError(c, err, "vehicle query failed")
	}
	if v == nil {
		return NotFound(c)
	}
	docs, err := h.Documents.ListByVehicle(ctx, id)
	if err != nil {
		return serverError(c, err, "document query failed")
	}

	sess := middleware.CurrentSession(c)
	owner := sess != nil && sess.Role == model.RoleDealership && sess.UserID == v.DealershipID
	return c.Render(http.StatusOK, "vehicle-detail.html",
		page(c, v.Make+" "+v.Model, echo.Map{
			"Vehicle":   v,
			"Documents": docs,
			"Owner":     owner,
		}))
}

// MarkSold handles POST /dealership/vehicles/:id/sold.
func (h *VehicleHandler) MarkSold(c echo.Context) error {
	return h.setStatus(c, model.VehicleSold)
}

// Delist handles POST /dealership/vehicles/:id/delist.
func (h *VehicleHandler) Delist(c echo.Context) error {
	return h.setStatus(c, model.VehicleDelisted)
}

func (h *VehicleHandler) setStatus(c echo.Context, status model.VehicleStatus) error {
	sess := middleware.CurrentSession(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NotFound(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Vehicles.UpdateStatus(ctx, id, sess.UserID, status); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return renderError(c, http.StatusForbidden, "Access Denied",
				"You can only manage your own vehicles.")
		}
		return serverError(c, err, "vehicle status update failed")
	}
	return c.Redirect(http.StatusSeeOther, "/dealership/dashboard")
}

// UploadDocuments handles the multipart document form on the detail page.
// Per-file size and per-vehicle count limits apply.
func (h *VehicleHandler) UploadDocuments(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NotFound(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		return serverError(c, err, "vehicle query failed")
	}
	if v == nil {
		return NotFound(c)
	}
	if v.DealershipID != sess.UserID {
		return renderError(c, http.StatusForbidden, "Access Denied",
			"You can only attach documents to your own vehicles.")
	}

	mf, err := c.MultipartForm()
	if err != nil {
		return renderError(c, http.StatusBadRequest, "Upload Error", "Invalid upload request.")
	}
	files := mf.File["documents"]
	if len(files) == 0 {
		return c.Redirect(http.StatusSeeOther, "/vehicle/"+strconv.FormatInt(id, 10))
	}
	if len(files) > h.Cfg.MaxDocsPerVehicle {
		return renderError(c, http.StatusBadRequest, "Upload Error",
			"Too many files. Maximum is "+strconv.Itoa(h.Cfg.MaxDocsPerVehicle)+" files.")
	}

	for _, fh := range files {
		stored, err := upload.SaveDocument(h.Cfg.UploadDir, fh, h.Cfg.MaxUploadSize)
		if err != nil {
			if errors.Is(err, upload.ErrFileTooLarge) {
				return renderError(c, http.StatusBadRequest, "Upload Error",
					"File size exceeds the maximum limit of 5MB.")
			}
			return serverError(c, err, "document save failed")
		}
		doc := &model.VehicleDocument{
			VehicleID:   id,
			FileName:    fh.Filename,
			StoredName:  stored,
			SizeBytes:   fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		}
		if err := h.Documents.Create(ctx, doc); err != nil {
			if errors.Is(err, repository.ErrTooManyDocuments) {
				return renderError(c, http.StatusBadRequest, "Upload Error",
					"This vehicle already has the maximum number of documents.")
			}
			return serverError(c, err, "document record failed")
		}
	}
	return c.Redirect(http.StatusSeeOther, "/vehicle/"+strconv.FormatInt(id, 10))
}

// QR serves the PNG QR code for a vehicle's verification link.
func (h *VehicleHandler) QR(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NotFound(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if err != nil {
		return serverError(c, err, "vehicle query failed")
	}
	if v == nil {
		return NotFound(c)
	}
	png, err := qr.PNG(h.Cfg.QRSecret, h.Cfg.BaseURL, id, h.Cfg.QRTokenTTL, 256)
	if err != nil {
		return serverError(c, err, "qr render failed")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// parsePriceCents accepts "12345", "12345.50" or "12,345.50" and returns
// the amount in cents.
func parsePriceCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	whole, frac, _ := strings.Cut(s, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, strconv.ErrSyntax
	}
	cents := w * 100
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, strconv.ErrSyntax
		}
		cents += f
	}
	return cents, nil
}

// publishListed emits the listing event in the background.
func (h *VehicleHandler) publishListed(v *model.Vehicle) {
	if h.Cfg.AMQPURL == "" {
		return
	}
	ev := queue.VehicleListedEvent{
		VehicleID:    v.ID,
		DealershipID: v.DealershipID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		PriceCents:   v.PriceCents,
		ListedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepub.PublishVehicleListed(ctx, h.Cfg.AMQPURL, ev)
	}()
}
