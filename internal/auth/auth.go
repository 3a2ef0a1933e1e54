// Package auth implements the login state machine:
//
//	LoggedOut → Authenticating → AwaitingSecurityCode → Authenticated
//
// A successful password check issues a one-time 4-digit code that is
// handed to an out-of-band CodeSender; only verifying that code
// completes the login. The current session is an explicit object, not
// package state, and survives restarts via a token persisted in the
// settings store.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/mkravets/shopcore/internal/config"
	"github.com/mkravets/shopcore/internal/hash"
	"github.com/mkravets/shopcore/internal/logging"
	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/repo"
	"github.com/mkravets/shopcore/internal/settings"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// wrong security code alike, so a caller cannot tell which field
	// failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrCodeExpired        = errors.New("security code expired")
	ErrTooManyAttempts    = errors.New("too many security code attempts")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

const minPasswordLength = 8

type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateAwaitingSecurityCode
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAwaitingSecurityCode:
		return "awaiting_security_code"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "logged_out"
	}
}

// CodeSender delivers the plaintext security code out of band (SMS,
// email). The code never travels back through the auth API itself.
type CodeSender interface {
	SendSecurityCode(ctx context.Context, email, code string) error
}

// CodeSenderFunc adapts a function to CodeSender.
type CodeSenderFunc func(ctx context.Context, email, code string) error

func (f CodeSenderFunc) SendSecurityCode(ctx context.Context, email, code string) error {
	return f(ctx, email, code)
}

// Session is a snapshot of the current login state.
type Session struct {
	State  State
	UserID string
	Email  string
	Role   string
	Token  string
}

type Service struct {
	repo     *repo.GormRepo
	settings *settings.Store
	sender   CodeSender

	secret      []byte
	tokenTTL    time.Duration
	codeTTL     time.Duration
	maxAttempts int

	mu      sync.Mutex
	session Session
}

func New(r *repo.GormRepo, st *settings.Store, sender CodeSender, cfg *config.Config) *Service {
	return &Service{
		repo:        r,
		settings:    st,
		sender:      sender,
		secret:      cfg.SessionSecret,
		tokenTTL:    cfg.SessionTTL,
		codeTTL:     cfg.SecurityCodeTTL,
		maxAttempts: cfg.SecurityCodeMaxAttempts,
	}
}

// Session returns a copy of the current session.
func (s *Service) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Service) State() State {
	return s.Session().State
}

func (s *Service) setSession(sess Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

// Register creates a new account and logs it in directly, skipping the
// code challenge: registration already proves control of the session
// that chose the password.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if email == "" {
		return nil, fmt.Errorf("email required: %w", repo.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password shorter than %d: %w", minPasswordLength, repo.ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register failed", "reason", "email taken")
			return nil, ErrUserAlreadyExist
		}
		l.Error("register failed", "error", err)
		return nil, err
	}

	if err := s.establish(ctx, user); err != nil {
		return nil, err
	}
	l.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the password and, on success, issues the second
// factor: a uniform random 4-digit code, stored hashed on the user and
// delivered through the CodeSender. The session moves to
// AwaitingSecurityCode; only VerifySecurityCode completes it.
func (s *Service) Login(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return fmt.Errorf("email and password required: %w", repo.ErrValidation)
	}

	s.setSession(Session{State: StateAuthenticating, Email: email})

	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		s.setSession(Session{State: StateLoggedOut})
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login failed", "reason", "invalid email or password")
			return ErrInvalidCredentials
		}
		l.Error("login failed", "error", err)
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		s.setSession(Session{State: StateLoggedOut})
		l.Warn("login failed", "reason", "invalid email or password")
		return ErrInvalidCredentials
	}

	code, err := generateSecurityCode()
	if err != nil {
		s.setSession(Session{State: StateLoggedOut})
		return err
	}
	codeHash, err := hash.HashCode(code)
	if err != nil {
		s.setSession(Session{State: StateLoggedOut})
		return err
	}
	if err := s.repo.SetSecurityCode(ctx, user.ID, codeHash, time.Now().UTC()); err != nil {
		s.setSession(Session{State: StateLoggedOut})
		return err
	}
	if err := s.sender.SendSecurityCode(ctx, user.Email, code); err != nil {
		// Undeliverable code would strand the user mid-challenge.
		_ = s.repo.ClearSecurityCode(ctx, user.ID)
		s.setSession(Session{State: StateLoggedOut})
		l.Error("login failed", "reason", "code delivery failed", "error", err)
		return fmt.Errorf("deliver security code: %w", err)
	}

	s.setSession(Session{
		State:  StateAwaitingSecurityCode,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	l.Info("security code issued", "user_id", user.ID)
	return nil
}

// VerifySecurityCode checks the submitted code against the pending
// challenge. Codes expire after the configured TTL and allow a bounded
// number of attempts; both limits clear the challenge so a new login
// is required.
func (s *Service) VerifySecurityCode(ctx context.Context, userID, code string) error {
	l := logging.FromContext(ctx).With("svc", "auth.verify_code", "user_id", userID)

	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if user.SecurityCodeHash == nil || user.CodeIssuedAt == nil {
		l.Warn("verify failed", "reason", "no pending code")
		return ErrInvalidCredentials
	}

	if time.Since(*user.CodeIssuedAt) > s.codeTTL {
		_ = s.repo.ClearSecurityCode(ctx, userID)
		s.setSession(Session{State: StateLoggedOut})
		l.Warn("verify failed", "reason", "code expired")
		return ErrCodeExpired
	}
	if user.CodeAttempts >= s.maxAttempts {
		_ = s.repo.ClearSecurityCode(ctx, userID)
		s.setSession(Session{State: StateLoggedOut})
		l.Warn("verify failed", "reason", "attempt cap reached")
		return ErrTooManyAttempts
	}

	if !hash.CheckCode(*user.SecurityCodeHash, code) {
		if err := s.repo.IncrementCodeAttempts(ctx, userID); err != nil {
			return err
		}
		l.Warn("verify failed", "reason", "wrong code", "attempt", user.CodeAttempts+1)
		return ErrInvalidCredentials
	}

	if err := s.repo.ClearSecurityCode(ctx, userID); err != nil {
		return err
	}
	if err := s.establish(ctx, user); err != nil {
		return err
	}
	l.Info("user authenticated")
	return nil
}

// Logout drops the session, the persisted token and the user's cart
// scope. Stored credentials stay untouched.
func (s *Service) Logout(ctx context.Context) error {
	sess := s.Session()
	s.setSession(Session{State: StateLoggedOut})

	if err := s.settings.ClearSession(ctx); err != nil {
		return err
	}
	if sess.UserID != "" {
		if err := s.repo.ClearCart(ctx, sess.UserID); err != nil {
			return err
		}
	}
	logging.FromContext(ctx).Info("logged out", "svc", "auth.logout", "user_id", sess.UserID)
	return nil
}

// Restore rebuilds the session from the persisted token, typically at
// startup. A missing, expired or orphaned token leaves the service
// logged out without error.
func (s *Service) Restore(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "auth.restore")

	token := s.settings.SessionToken(ctx)
	if token == "" {
		s.setSession(Session{State: StateLoggedOut})
		return nil
	}

	claims, err := SessionClaimsFromToken(token, s.secret)
	if err != nil {
		l.Warn("stale session token discarded", "error", err)
		_ = s.settings.ClearSession(ctx)
		s.setSession(Session{State: StateLoggedOut})
		return nil
	}

	user, err := s.repo.UserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			_ = s.settings.ClearSession(ctx)
			s.setSession(Session{State: StateLoggedOut})
			return nil
		}
		return err
	}

	s.setSession(Session{
		State:  StateAuthenticated,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Token:  token,
	})
	l.Info("session restored", "user_id", user.ID)
	return nil
}

// CurrentUser loads the authenticated user's record.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	sess := s.Session()
	if sess.State != StateAuthenticated {
		return nil, ErrNotAuthenticated
	}
	return s.repo.UserByID(ctx, sess.UserID)
}

func (s *Service) establish(ctx context.Context, user *models.User) error {
	token, err := mintSessionToken(user.ID, user.Role, s.secret, s.tokenTTL)
	if err != nil {
		return err
	}
	if err := s.settings.SetSession(ctx, user.ID, token); err != nil {
		return err
	}
	s.setSession(Session{
		State:  StateAuthenticated,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Token:  token,
	})
	return nil
}

// generateSecurityCode draws a uniform code in [1000, 9999].
func generateSecurityCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}
