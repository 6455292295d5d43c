package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/luhambo/before-you-sign/internal/model"
	"github.com/luhambo/before-you-sign/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// RegisterDealership creates a user row with role=dealership and its
// dealership profile row in a single transaction. If the profile insert
// fails for any reason the user insert is rolled back, so no orphaned
// user can remain. Returns ErrUserExists on a username/email collision.
func (r *UserRepo) RegisterDealership(ctx context.Context, username, email, password string, cost int, p *model.DealershipProfile) (int64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	return r.registerTx(ctx, username, email, hash, model.RoleDealership, func(tx *sql.Tx, userID int64) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO dealerships
                (user_id, business_name, registration_number, license_number, year_established,
                 email, phone, address, city, postal_code, website, operating_hours, description)
            VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			userID, p.BusinessName, p.RegistrationNumber, p.LicenseNumber, p.YearEstablished,
			p.Email, p.Phone, p.Address, p.City, p.PostalCode, p.Website, p.OperatingHours, p.Description)
		return err
	})
}

// RegisterCustomer is the customer variant of RegisterDealership with the
// same transactional guarantee.
func (r *UserRepo) RegisterCustomer(ctx context.Context, username, email, password string, cost int, p *model.CustomerProfile) (int64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	return r.registerTx(ctx, username, email, hash, model.RoleCustomer, func(tx *sql.Tx, userID int64) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO customers (user_id, full_name, phone, address, city, postal_code)
            VALUES (?,?,?,?,?,?)`,
			userID, p.FullName, p.Phone, p.Address, p.City, p.PostalCode)
		return err
	})
}

// registerTx runs the paired user+profile insert inside one transaction.
// insertProfile receives the generated user id and must perform the second
// write on the same tx.
func (r *UserRepo) registerTx(ctx context.Context, username, email, hash string, role model.Role, insertProfile func(tx *sql.Tx, userID int64) error) (userID int64, err error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, password, role) VALUES (?,?,?,?)",
		username, email, hash, role.String())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	userID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err = insertProfile(tx, userID); err != nil {
		if isUniqueViolation(err) {
			err = ErrUserExists
		}
		return 0, err
	}
	return userID, nil
}

// GetByUsername fetches a user by exact username match. Returns
// sql.ErrNoRows when no such user exists; the role column is validated
// before the record leaves the storage boundary.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getWhere(ctx, "username=?", strings.TrimSpace(username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.getWhere(ctx, "id=?", id)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password,role,created_at FROM users WHERE "+where+" LIMIT 1",
		arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role, err = model.ParseRole(role)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// CountByRole returns the number of users per role for the admin dashboard.
func (r *UserRepo) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		r, err := model.ParseRole(role)
		if err != nil {
			return nil, err
		}
		counts[r] = n
	}
	return counts, rows.Err()
}

// DealershipProfileByUserID loads the dealership profile owned by a user.
// Returns nil with no error when the user has no dealership profile.
func (r *UserRepo) DealershipProfileByUserID(ctx context.Context, userID int64) (*model.DealershipProfile, error) {
	var p model.DealershipProfile
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, user_id, business_name, registration_number, license_number, year_established,
               email, phone, address, city, postal_code, website, operating_hours, description
        FROM dealerships WHERE user_id=? LIMIT 1`, userID).Scan(
		&p.ID, &p.UserID, &p.BusinessName, &p.RegistrationNumber, &p.LicenseNumber, &p.YearEstablished,
		&p.Email, &p.Phone, &p.Address, &p.City, &p.PostalCode, &p.Website, &p.OperatingHours, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CustomerProfileByUserID loads the customer profile owned by a user.
// Returns nil with no error when the user has no customer profile.
func (r *UserRepo) CustomerProfileByUserID(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	var p model.CustomerProfile
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, user_id, full_name, phone, address, city, postal_code
        FROM customers WHERE user_id=? LIMIT 1`, userID).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.Address, &p.City, &p.PostalCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
