package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/luhambo/before-you-sign/internal/model"
)

type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleCols = "id, dealership_id, make, model, year, price_cents, mileage_km, vin, status, description, created_at, updated_at"

// Create inserts a new listing for the given dealership user and populates
// the generated ID and timestamps on the provided record.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	if v.Status == "" {
		v.Status = model.VehicleListed
	}
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO vehicles (dealership_id, make, model, year, price_cents, mileage_km, vin, status, description)
        VALUES (?,?,?,?,?,?,?,?,?)`,
		v.DealershipID, v.Make, v.Model, v.Year, v.PriceCents, v.MileageKM, v.VIN, string(v.Status), v.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = id
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM vehicles WHERE id=?", id).
		Scan(&v.CreatedAt, &v.UpdatedAt)
}

// GetByID fetches one vehicle. Returns nil with no error when it does not exist.
func (r *VehicleRepo) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+vehicleCols+" FROM vehicles WHERE id=? LIMIT 1", id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListByDealership returns every vehicle owned by one dealership user,
// newest first.
func (r *VehicleRepo) ListByDealership(ctx context.Context, dealershipID int64) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE dealership_id=? ORDER BY created_at DESC, id DESC", dealershipID)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}

// ListAvailable returns listed vehicles for customer browsing, newest first.
func (r *VehicleRepo) ListAvailable(ctx context.Context, limit int) ([]model.Vehicle, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+vehicleCols+" FROM vehicles WHERE status='listed' ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return collectVehicles(rows)
}

// Update rewrites the editable fields of a listing. Ownership is enforced
// the same way as UpdateStatus: a mismatching dealership id yields
// ErrForbidden.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle, dealershipID int64) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE vehicles
        SET make=?, model=?, year=?, price_cents=?, mileage_km=?, vin=?, description=?,
            updated_at=CURRENT_TIMESTAMP
        WHERE id=? AND dealership_id=?`,
		v.Make, v.Model, v.Year, v.PriceCents, v.MileageKM, v.VIN, v.Description,
		v.ID, dealershipID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}

// UpdateStatus moves a listing between listed/sold/delisted. Ownership is
// enforced here: a mismatching dealership id yields ErrForbidden.
func (r *VehicleRepo) UpdateStatus(ctx context.Context, id, dealershipID int64, status model.VehicleStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=? AND dealership_id=?",
		string(status), id, dealershipID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}

// Delete removes a listing owned by the given dealership. A mismatching
// owner yields ErrForbidden.
func (r *VehicleRepo) Delete(ctx context.Context, id, dealershipID int64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM vehicles WHERE id=? AND dealership_id=?", id, dealershipID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanVehicle(row rowScanner) (*model.Vehicle, error) {
	var v model.Vehicle
	var status string
	err := row.Scan(&v.ID, &v.DealershipID, &v.Make, &v.Model, &v.Year, &v.PriceCents,
		&v.MileageKM, &v.VIN, &status, &v.Description, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Status = model.VehicleStatus(status)
	return &v, nil
}

func collectVehicles(rows *sql.Rows) ([]model.Vehicle, error) {
	defer rows.Close()
	var out []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
