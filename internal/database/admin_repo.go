package database

import (
	"database/sql"
	"errors"
	"time"

	"skportal-backend/internal/models"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// AdminRepo handles admin account database operations
type AdminRepo struct{}

// NewAdminRepo creates a new admin repository
func NewAdminRepo() *AdminRepo {
	return &AdminRepo{}
}

const adminColumns = `id, username, password_hash, email, full_name, is_active, created_at, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row rowScanner) (*models.AdminAccount, error) {
	admin := &models.AdminAccount{}
	var email, fullName sql.NullString
	var lastLogin sql.NullTime

	err := row.Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &email, &fullName,
		&admin.IsActive, &admin.CreatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	admin.Email = email.String
	admin.FullName = fullName.String
	if lastLogin.Valid {
		t := lastLogin.Time
		admin.LastLogin = &t
	}
	return admin, nil
}

// Create inserts a new admin account. Username uniqueness is enforced by the store.
func (r *AdminRepo) Create(admin *models.AdminAccount) error {
	db, err := conn(false)
	if err != nil {
		return err
	}

	admin.CreatedAt = time.Now().UTC()
	result, err := db.Exec(`
		INSERT INTO admins (username, password_hash, email, full_name, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, admin.Username, admin.PasswordHash, nullString(admin.Email), nullString(admin.FullName), admin.IsActive, admin.CreatedAt)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	admin.ID = id
	return nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepo) GetByID(id int64) (*models.AdminAccount, error) {
	db, err := conn(false)
	if err != nil {
		return nil, err
	}

	admin, err := scanAdmin(db.QueryRow("SELECT "+adminColumns+" FROM admins WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	return admin, err
}

// GetByUsername retrieves an admin by exact (case-sensitive) username
func (r *AdminRepo) GetByUsername(username string) (*models.AdminAccount, error) {
	db, err := conn(false)
	if err != nil {
		return nil, err
	}

	admin, err := scanAdmin(db.QueryRow("SELECT "+adminColumns+" FROM admins WHERE username = ?", username))
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	return admin, err
}

// SetActive enables or disables an account
func (r *AdminRepo) SetActive(id int64, active bool) error {
	db, err := conn(false)
	if err != nil {
		return err
	}

	result, err := db.Exec("UPDATE admins SET is_active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// UpdateLastLogin updates the admin's last login timestamp
func (r *AdminRepo) UpdateLastLogin(id int64, at time.Time) error {
	db, err := conn(false)
	if err != nil {
		return err
	}
	_, err = db.Exec("UPDATE admins SET last_login = ? WHERE id = ?", at.UTC(), id)
	return err
}

// Count returns the total number of admin accounts
func (r *AdminRepo) Count() (int, error) {
	db, err := conn(false)
	if err != nil {
		return 0, err
	}
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count)
	return count, err
}

// ExistsByUsername checks if an admin with the given username exists
func (r *AdminRepo) ExistsByUsername(username string) (bool, error) {
	db, err := conn(false)
	if err != nil {
		return false, err
	}
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM admins WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
