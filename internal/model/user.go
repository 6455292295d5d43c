package model

import (
    "fmt"
    "time"
)

// Role is the closed set of account categories. It is stored as a string
// column but only the three constants below are valid; ParseRole is the
// single place where raw storage/form values become a Role.
type Role string

const (
    RoleAdmin      Role = "admin"      // platform operators
    RoleDealership Role = "dealership" // businesses listing vehicles
    RoleCustomer   Role = "customer"   // buyers browsing listings
)

// ParseRole validates a raw role string read from storage or a form.
// Anything outside the closed set is rejected so an unexpected column
// value can never drive a redirect or a guard decision.
func ParseRole(s string) (Role, error) {
    switch Role(s) {
    case RoleAdmin, RoleDealership, RoleCustomer:
        return Role(s), nil
    }
    return "", fmt.Errorf("unknown role %q", s)
}

// DashboardPath returns the landing page for a role after login.
func (r Role) DashboardPath() string {
    switch r {
    case RoleAdmin:
        return "/admin/dashboard"
    case RoleDealership:
        return "/dealership/dashboard"
    default:
        return "/customer/dashboard"
    }
}

func (r Role) String() string { return string(r) }

// User mirrors the `users` table. PasswordHash holds a bcrypt digest;
// the plaintext password never reaches this struct.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – account category, fixed at registration.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           int64     // users.id
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password
    Role         Role      // users.role
    CreatedAt    time.Time // users.created_at
}

// DealershipProfile mirrors the `dealerships` table. Exactly one row may
// exist per user of role=dealership; it is created in the same transaction
// as its owning user row.
type DealershipProfile struct {
    ID                 int64  // dealerships.id
    UserID             int64  // dealerships.user_id (unique FK -> users.id)
    BusinessName       string // dealerships.business_name
    RegistrationNumber string // dealerships.registration_number
    LicenseNumber      string // dealerships.license_number
    YearEstablished    int    // dealerships.year_established
    Email              string // dealerships.email
    Phone              string // dealerships.phone
    Address            string // dealerships.address
    City               string // dealerships.city
    PostalCode         string // dealerships.postal_code
    Website            string // dealerships.website
    OperatingHours     string // dealerships.operating_hours
    Description        string // dealerships.description
}

// CustomerProfile mirrors the `customers` table, linked 1:1 to a user of
// role=customer with the same transactional creation rule as dealerships.
type CustomerProfile struct {
    ID         int64  // customers.id
    UserID     int64  // customers.user_id (unique FK -> users.id)
    FullName   string // customers.full_name
    Phone      string // customers.phone
    Address    string // customers.address
    City       string // customers.city
    PostalCode string // customers.postal_code
}
