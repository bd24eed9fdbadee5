package database

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"skportal-backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionRepo handles session database operations
type SessionRepo struct{}

// NewSessionRepo creates a new session repository
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

const sessionColumns = `id, admin_id, token_hash, created_at, expires_at, ip_address, user_agent`

func scanSession(row rowScanner) (*models.Session, error) {
	session := &models.Session{}
	var ip, ua sql.NullString
	err := row.Scan(
		&session.ID, &session.AdminID, &session.TokenHash,
		&session.CreatedAt, &session.ExpiresAt, &ip, &ua,
	)
	if err != nil {
		return nil, err
	}
	session.IPAddress = ip.String
	session.UserAgent = ua.String
	return session, nil
}

// Create creates a new session and returns the plain token. Only the token's
// hash is stored.
func (r *SessionRepo) Create(adminID int64, ipAddress, userAgent string, duration time.Duration) (string, *models.Session, error) {
	db, err := conn(false)
	if err != nil {
		return "", nil, err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, err
	}
	token := hex.EncodeToString(tokenBytes)

	now := time.Now().UTC()
	session := &models.Session{
		AdminID:   adminID,
		TokenHash: HashToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	result, err := db.Exec(`
		INSERT INTO sessions (admin_id, token_hash, created_at, expires_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?)
	`, session.AdminID, session.TokenHash, session.CreatedAt, session.ExpiresAt, session.IPAddress, session.UserAgent)
	if err != nil {
		return "", nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", nil, err
	}
	session.ID = id

	return token, session, nil
}

// GetByToken retrieves a live session by its plain token
func (r *SessionRepo) GetByToken(token string) (*models.Session, error) {
	return r.GetByTokenHash(HashToken(token))
}

// GetByTokenHash retrieves a live session by its hashed token. An expired
// session is deleted and reported as ErrSessionExpired.
func (r *SessionRepo) GetByTokenHash(tokenHash string) (*models.Session, error) {
	db, err := conn(false)
	if err != nil {
		return nil, err
	}

	session, err := scanSession(db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE token_hash = ?", tokenHash))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if !time.Now().Before(session.ExpiresAt) {
		r.Delete(session.ID)
		return nil, ErrSessionExpired
	}

	return session, nil
}

// GetByAdminID retrieves all unexpired sessions for an admin, newest first
func (r *SessionRepo) GetByAdminID(adminID int64) ([]*models.Session, error) {
	db, err := conn(false)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT "+sessionColumns+" FROM sessions WHERE admin_id = ? AND expires_at > ? ORDER BY created_at DESC",
		adminID, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Delete deletes a session by ID
func (r *SessionRepo) Delete(id int64) error {
	db, err := conn(false)
	if err != nil {
		return err
	}
	_, err = db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// DeleteForAdmin deletes a session only if it belongs to adminID
func (r *SessionRepo) DeleteForAdmin(adminID, id int64) error {
	db, err := conn(false)
	if err != nil {
		return err
	}

	result, err := db.Exec("DELETE FROM sessions WHERE id = ? AND admin_id = ?", id, adminID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteByToken deletes a session by its plain token
func (r *SessionRepo) DeleteByToken(token string) error {
	db, err := conn(false)
	if err != nil {
		return err
	}

	result, err := db.Exec("DELETE FROM sessions WHERE token_hash = ?", HashToken(token))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteAllForAdmin deletes all sessions for an admin
func (r *SessionRepo) DeleteAllForAdmin(adminID int64) error {
	db, err := conn(false)
	if err != nil {
		return err
	}
	_, err = db.Exec("DELETE FROM sessions WHERE admin_id = ?", adminID)
	return err
}

// DeleteExpired removes all expired sessions
func (r *SessionRepo) DeleteExpired() (int64, error) {
	db, err := conn(false)
	if err != nil {
		return 0, err
	}
	result, err := db.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// HashToken creates a SHA-256 hash of the token
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
