package database

import (
	"time"
)

// SettingsRepo handles key/value settings
type SettingsRepo struct {
	readOnly bool
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{}
}

// NewPublicSettingsRepo creates a settings repository on the read-only connection
func NewPublicSettingsRepo() *SettingsRepo {
	return &SettingsRepo{readOnly: true}
}

// Get retrieves a setting value
func (r *SettingsRepo) Get(key string) (string, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return "", err
	}
	var value string
	err = db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	return value, err
}

// SetMany upserts all values in one transaction
func (r *SettingsRepo) SetMany(values map[string]string) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for key, value := range values {
		_, err := tx.Exec(`
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetPrefix retrieves all settings whose key starts with prefix
func (r *SettingsRepo) GetPrefix(prefix string) (map[string]string, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT key, value FROM settings WHERE key LIKE ?", prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
