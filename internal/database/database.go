package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB is the privileged read-write connection used by admin operations
var DB *sql.DB

// ReadDB is the anonymous connection used by public pages. Every connection in
// the pool runs with query_only, so it cannot modify the store.
var ReadDB *sql.DB

var (
	// ErrNotConfigured is returned when the store has not been opened
	ErrNotConfigured = errors.New("database is not configured")
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("record not found")
)

// Config holds database configuration
type Config struct {
	Path string
}

// Open initializes both connection pools and runs migrations
func Open(cfg Config) error {
	if cfg.Path == "" {
		return ErrNotConfigured
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	var err error
	DB, err = sql.Open("sqlite", cfg.Path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; serialize on our side instead of retrying SQLITE_BUSY
	DB.SetMaxOpenConns(1)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ReadDB, err = sql.Open("sqlite", cfg.Path+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return fmt.Errorf("failed to open read-only database: %w", err)
	}
	if err := ReadDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping read-only database: %w", err)
	}

	return nil
}

// Close closes both connection pools
func Close() error {
	var errs []error
	if ReadDB != nil {
		errs = append(errs, ReadDB.Close())
		ReadDB = nil
	}
	if DB != nil {
		errs = append(errs, DB.Close())
		DB = nil
	}
	return errors.Join(errs...)
}

// conn picks the pool for a repo, failing cleanly when Open was never called
func conn(readOnly bool) (*sql.DB, error) {
	db := DB
	if readOnly {
		db = ReadDB
	}
	if db == nil {
		return nil, ErrNotConfigured
	}
	return db, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// migrate runs all database migrations
func migrate() error {
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if err := runMigration(m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

type migration struct {
	name string
	up   string
}

func runMigration(m migration) error {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already applied
	}

	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.up); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", m.name); err != nil {
		return err
	}
	return tx.Commit()
}

var migrations = []migration{
	{
		name: "001_create_admins",
		up: `
			CREATE TABLE admins (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				email TEXT,
				full_name TEXT,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				last_login DATETIME
			);
		`,
	},
	{
		name: "002_create_sessions",
		up: `
			CREATE TABLE sessions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				admin_id INTEGER NOT NULL,
				token_hash TEXT NOT NULL UNIQUE,
				created_at DATETIME NOT NULL,
				expires_at DATETIME NOT NULL,
				ip_address TEXT,
				user_agent TEXT,
				FOREIGN KEY (admin_id) REFERENCES admins(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_sessions_admin_id ON sessions(admin_id);
			CREATE INDEX idx_sessions_expires_at ON sessions(expires_at);
		`,
	},
	{
		name: "003_create_audit_logs",
		up: `
			CREATE TABLE audit_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME NOT NULL,
				admin_id INTEGER,
				username TEXT,
				action TEXT NOT NULL,
				target TEXT,
				details TEXT,
				ip_address TEXT,
				FOREIGN KEY (admin_id) REFERENCES admins(id) ON DELETE SET NULL
			);
			CREATE INDEX idx_audit_logs_timestamp ON audit_logs(timestamp);
			CREATE INDEX idx_audit_logs_action ON audit_logs(action);
		`,
	},
	{
		name: "004_create_settings",
		up: `
			CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			INSERT INTO settings (key, value) VALUES
				('site.hero_title', 'Welcome to the Sangguniang Kabataan Official Website'),
				('site.hero_subtitle', 'Serving our community with dedication and excellence'),
				('site.about_text', 'The Sangguniang Kabataan is committed to youth development, public service, and a safe, progressive community for all residents.'),
				('site.contact_address', 'Barangay Hall, Metro Manila, Philippines'),
				('site.contact_phone', ''),
				('site.contact_email', ''),
				('site.contact_hours', 'Monday - Friday: 8:00 AM - 5:00 PM');
		`,
	},
	{
		name: "005_create_announcements",
		up: `
			CREATE TABLE announcements (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				category TEXT NOT NULL,
				date TEXT NOT NULL,
				images TEXT NOT NULL DEFAULT '[]',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX idx_announcements_date ON announcements(date);
		`,
	},
	{
		name: "006_create_gallery",
		up: `
			CREATE TABLE gallery (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				image TEXT NOT NULL,
				date TEXT NOT NULL,
				category TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX idx_gallery_date ON gallery(date);
		`,
	},
	{
		name: "007_create_grievances",
		up: `
			CREATE TABLE grievances (
				id TEXT PRIMARY KEY,
				full_name TEXT NOT NULL,
				address TEXT NOT NULL,
				contact TEXT NOT NULL,
				email TEXT,
				category TEXT NOT NULL,
				subject TEXT NOT NULL,
				details TEXT NOT NULL,
				preferred_contact TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'new',
				submitted_at DATETIME NOT NULL
			);
			CREATE INDEX idx_grievances_submitted_at ON grievances(submitted_at);
			CREATE INDEX idx_grievances_status ON grievances(status);
		`,
	},
	{
		name: "008_create_projects",
		up: `
			CREATE TABLE projects (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				status TEXT NOT NULL,
				image TEXT NOT NULL DEFAULT '',
				period TEXT NOT NULL DEFAULT '',
				budget TEXT NOT NULL DEFAULT '',
				beneficiaries TEXT NOT NULL DEFAULT '',
				impact TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX idx_projects_created_at ON projects(created_at);
		`,
	},
}
