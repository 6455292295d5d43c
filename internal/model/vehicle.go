package model

import "time"

// VehicleStatus tracks where a listing is in its lifecycle.
type VehicleStatus string

const (
    VehicleListed   VehicleStatus = "listed"
    VehicleSold     VehicleStatus = "sold"
    VehicleDelisted VehicleStatus = "delisted"
)

// Vehicle mirrors the `vehicles` table. DealershipID references the owning
// dealership user, not the profile row, so ownership checks go straight
// against the session's user id.
type Vehicle struct {
    ID           int64         // vehicles.id
    DealershipID int64         // vehicles.dealership_id (FK -> users.id)
    Make         string        // vehicles.make
    Model        string        // vehicles.model
    Year         int           // vehicles.year
    PriceCents   int64         // vehicles.price_cents
    MileageKM    int           // vehicles.mileage_km
    VIN          string        // vehicles.vin (unique when set)
    Status       VehicleStatus // vehicles.status
    Description  string        // vehicles.description
    CreatedAt    time.Time     // vehicles.created_at
    UpdatedAt    time.Time     // vehicles.updated_at
}

// VehicleDocument mirrors the `vehicle_documents` table and records one
// uploaded file attached to a vehicle. The bytes live on disk under the
// uploads directory; StoredName is the sanitized on-disk file name.
type VehicleDocument struct {
    ID          int64     // vehicle_documents.id
    VehicleID   int64     // vehicle_documents.vehicle_id (FK -> vehicles.id)
    FileName    string    // vehicle_documents.file_name (original client name)
    StoredName  string    // vehicle_documents.stored_name
    SizeBytes   int64     // vehicle_documents.size_bytes
    ContentType string    // vehicle_documents.content_type
    UploadedAt  time.Time // vehicle_documents.uploaded_at
}
