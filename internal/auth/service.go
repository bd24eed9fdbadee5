package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"skportal-backend/internal/database"
	"skportal-backend/internal/models"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("admin account is disabled")
	ErrBootstrapForbidden = errors.New("secret key required")
	ErrBootstrapClosed    = errors.New("admin bootstrap is closed")
)

// DefaultSessionTTL is how long a login stays valid; there is no renewal
const DefaultSessionTTL = 24 * time.Hour

// Options configures the auth service
type Options struct {
	SessionTTL time.Duration
	// AdminCreateSecret guards the bootstrap endpoint. When empty, bootstrap
	// is only possible while no admin accounts exist.
	AdminCreateSecret string
}

// Service handles authentication logic
type Service struct {
	adminRepo   *database.AdminRepo
	sessionRepo *database.SessionRepo
	opts        Options
}

// NewService creates a new auth service
func NewService(opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &Service{
		adminRepo:   database.NewAdminRepo(),
		sessionRepo: database.NewSessionRepo(),
		opts:        opts,
	}
}

// SessionTTL returns the lifetime of newly issued sessions
func (s *Service) SessionTTL() time.Duration {
	return s.opts.SessionTTL
}

// LoginResult represents a successful login
type LoginResult struct {
	Admin     models.AdminProfile
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and opens a session. Unknown usernames, inactive
// accounts and wrong passwords all return ErrInvalidCredentials.
func (s *Service) Login(req models.LoginRequest, ipAddress, userAgent string) (*LoginResult, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	admin, err := s.adminRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			burnCompare(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		burnCompare(req.Password)
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(req.Password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, session, err := s.sessionRepo.Create(admin.ID, ipAddress, userAgent, s.opts.SessionTTL)
	if err != nil {
		return nil, err
	}

	if err := s.adminRepo.UpdateLastLogin(admin.ID, session.CreatedAt); err != nil {
		if derr := s.sessionRepo.DeleteByToken(token); derr != nil {
			return nil, errors.Join(err, derr)
		}
		return nil, err
	}

	return &LoginResult{
		Admin:     admin.Profile(),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout invalidates a session. Logging out an unknown or already cleared
// session succeeds.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	err := s.sessionRepo.DeleteByToken(token)
	if errors.Is(err, database.ErrSessionNotFound) {
		return nil
	}
	return err
}

// ValidateToken validates a session token and returns its admin
func (s *Service) ValidateToken(token string) (*models.AdminAccount, *models.Session, error) {
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, nil, err
	}

	admin, err := s.adminRepo.GetByID(session.AdminID)
	if err != nil {
		return nil, nil, err
	}

	if !admin.IsActive {
		if err := s.sessionRepo.DeleteAllForAdmin(admin.ID); err != nil {
			return nil, nil, errors.Join(ErrAccountDisabled, err)
		}
		return nil, nil, ErrAccountDisabled
	}

	return admin, session, nil
}

// ListSessions returns the live sessions of an admin
func (s *Service) ListSessions(adminID int64) ([]*models.Session, error) {
	return s.sessionRepo.GetByAdminID(adminID)
}

// RevokeSession ends one of the admin's own sessions
func (s *Service) RevokeSession(adminID, sessionID int64) error {
	return s.sessionRepo.DeleteForAdmin(adminID, sessionID)
}

// RevokeAllSessions ends every session of an admin
func (s *Service) RevokeAllSessions(adminID int64) error {
	return s.sessionRepo.DeleteAllForAdmin(adminID)
}

// SetAdminActive enables or disables an account by username. Disabling ends
// every session the account holds.
func (s *Service) SetAdminActive(username string, active bool) (*models.AdminAccount, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if err := s.adminRepo.SetActive(admin.ID, active); err != nil {
		return nil, err
	}
	if !active {
		if err := s.sessionRepo.DeleteAllForAdmin(admin.ID); err != nil {
			return nil, err
		}
	}
	admin.IsActive = active
	return admin, nil
}

// PurgeExpiredSessions deletes sessions past their expiry
func (s *Service) PurgeExpiredSessions() (int64, error) {
	return s.sessionRepo.DeleteExpired()
}

// CheckBootstrap decides whether an out-of-band admin creation may proceed
func (s *Service) CheckBootstrap(secretKey string) error {
	if s.opts.AdminCreateSecret != "" {
		if subtle.ConstantTimeCompare([]byte(secretKey), []byte(s.opts.AdminCreateSecret)) != 1 {
			return ErrBootstrapForbidden
		}
		return nil
	}

	count, err := s.adminRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrBootstrapClosed
	}
	return nil
}

// CreateAdmin provisions a new active admin account
func (s *Service) CreateAdmin(req models.CreateAdminRequest) (*models.AdminAccount, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	if err := CheckPasswordStrength(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.adminRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, database.ErrUsernameTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.AdminAccount{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		IsActive:     true,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}
