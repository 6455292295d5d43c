package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/luhambo/before-you-sign/internal/model"
)

// ErrTooManyDocuments is returned when a vehicle already carries the
// maximum number of attached documents.
var ErrTooManyDocuments = errors.New("too many documents for vehicle")

type DocumentRepo struct {
	DB      *sql.DB
	MaxDocs int // per-vehicle cap; 0 means unlimited
}

func NewDocumentRepo(db *sql.DB, maxDocs int) *DocumentRepo {
	return &DocumentRepo{DB: db, MaxDocs: maxDocs}
}

// Create records an uploaded document. The per-vehicle cap is checked and
// the insert performed inside one transaction so concurrent uploads cannot
// overshoot the limit.
func (r *DocumentRepo) Create(ctx context.Context, d *model.VehicleDocument) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if r.MaxDocs > 0 {
		var n int
		if err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM vehicle_documents WHERE vehicle_id=?", d.VehicleID).Scan(&n); err != nil {
			return err
		}
		if n >= r.MaxDocs {
			return ErrTooManyDocuments
		}
	}
	res, err := tx.ExecContext(ctx, `
        INSERT INTO vehicle_documents (vehicle_id, file_name, stored_name, size_bytes, content_type)
        VALUES (?,?,?,?,?)`,
		d.VehicleID, d.FileName, d.StoredName, d.SizeBytes, d.ContentType)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return tx.QueryRowContext(ctx,
		"SELECT uploaded_at FROM vehicle_documents WHERE id=?", id).Scan(&d.UploadedAt)
}

// ListByVehicle returns the documents attached to a vehicle, oldest first.
func (r *DocumentRepo) ListByVehicle(ctx context.Context, vehicleID int64) ([]model.VehicleDocument, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, vehicle_id, file_name, stored_name, size_bytes, content_type, uploaded_at
        FROM vehicle_documents WHERE vehicle_id=? ORDER BY id`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VehicleDocument
	for rows.Next() {
		var d model.VehicleDocument
		if err := rows.Scan(&d.ID, &d.VehicleID, &d.FileName, &d.StoredName,
			&d.SizeBytes, &d.ContentType, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
