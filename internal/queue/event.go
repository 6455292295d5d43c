// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published when a registration commits. Downstream
// consumers use it for audit logging and welcome notifications without
// querying the primary database.
type UserRegisteredEvent struct {
    UserID       int64  `json:"user_id"`
    Username     string `json:"username"`
    Role         string `json:"role"`
    RegisteredAt string `json:"registered_at"`
}

// VehicleListedEvent is published when a dealership creates a listing.
type VehicleListedEvent struct {
    VehicleID    int64  `json:"vehicle_id"`
    DealershipID int64  `json:"dealership_id"`
    Make         string `json:"make"`
    Model        string `json:"model"`
    Year         int    `json:"year"`
    PriceCents   int64  `json:"price_cents"`
    ListedAt     string `json:"listed_at"`
}

// Queue names. One durable queue per event type.
const (
    UserRegisteredQueue = "user.registered"
    VehicleListedQueue  = "vehicle.listed"
)
