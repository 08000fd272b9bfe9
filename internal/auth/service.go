// Package auth implements the authentication service: account lifecycle,
// the verification and reset workflows, and the error taxonomy the HTTP
// boundary maps to status codes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/altonlabs/authd/internal/account"
	"github.com/altonlabs/authd/internal/metrics"
	"github.com/altonlabs/authd/internal/notify"
	"github.com/altonlabs/authd/internal/token"
)

// AccountStore is the persistence contract the service needs. The lookup
// methods return account.ErrNotFound for absent or expired matches; Insert
// returns account.ErrDuplicateEmail when the unique-email constraint fires.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	FindByVerificationCode(ctx context.Context, code string) (*account.Account, error)
	FindByResetToken(ctx context.Context, tok string) (*account.Account, error)
	Insert(ctx context.Context, acct *account.Account) error
	Save(ctx context.Context, acct *account.Account) error
}

// Config carries the workflow parameters.
type Config struct {
	// ClientURL is the frontend base URL embedded in reset links.
	ClientURL string
	// VerifyTTL is the verification-code lifetime (24h per contract).
	VerifyTTL time.Duration
	// ResetTTL is the reset-token lifetime (1h per contract).
	ResetTTL time.Duration
}

// Service orchestrates the seven auth operations. It is transport-free: the
// HTTP layer owns cookies, the Service owns state transitions.
//
// Ordering guarantee: within an operation, the state transition is persisted
// before the corresponding notification is dispatched. A notification
// failure surfaces as ErrNotify (one attempt, no retry) and does not undo
// the transition.
type Service struct {
	store   AccountStore
	hasher  Hasher
	codec   *token.Codec
	mailer  notify.Mailer
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// Hasher is the credential-hashing contract.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// NewService wires the service. metrics may be nil.
func NewService(
	store AccountStore,
	hasher Hasher,
	codec *token.Codec,
	mailer notify.Mailer,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.VerifyTTL <= 0 {
		cfg.VerifyTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &Service{
		store:   store,
		hasher:  hasher,
		codec:   codec,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SignUpInput is the signup request payload.
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// SignUp creates an unverified account, persists it, and dispatches the
// verification email. The caller issues the session on success.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (account.Profile, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return account.Profile{}, s.fail("signup", ErrMissingFields)
	}
	if !validEmail(in.Email) {
		return account.Profile{}, s.fail("signup", ErrInvalidEmail)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return account.Profile{}, s.internal("signup", fmt.Errorf("hash password: %w", err))
	}

	code, err := newVerificationCode()
	if err != nil {
		return account.Profile{}, s.internal("signup", fmt.Errorf("generate verification code: %w", err))
	}

	now := s.now()
	expiry := now.Add(s.cfg.VerifyTTL)
	acct := &account.Account{
		ID:                    uuid.NewString(),
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		Email:                 in.Email,
		PasswordHash:          hash,
		Verified:              false,
		VerificationCode:      code,
		VerificationExpiresAt: &expiry,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.Insert(ctx, acct); err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return account.Profile{}, s.fail("signup", ErrDuplicateEmail)
		}
		return account.Profile{}, s.internal("signup", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, acct.Email, code); err != nil {
		// Account is already persisted with a valid code; see DESIGN.md on
		// the notification-failure policy.
		return account.Profile{}, s.notifyFailed("signup", "verification", acct.Email, err)
	}

	s.metrics.ObserveEmail("verification", metrics.OutcomeSuccess)
	s.metrics.Observe("signup", metrics.OutcomeSuccess)
	s.logger.Info("account created", slog.String("email", acct.Email))
	return acct.Profile(), nil
}

// VerifyEmail consumes an unexpired verification code, marks the account
// verified, and dispatches the welcome email. A consumed code cannot be
// consumed again: the store lookup fails once the fields are cleared.
func (s *Service) VerifyEmail(ctx context.Context, code string) (account.Profile, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return account.Profile{}, s.fail("verify_email", ErrInvalidOrExpiredCode)
	}

	acct, err := s.store.FindByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Profile{}, s.fail("verify_email", ErrInvalidOrExpiredCode)
		}
		return account.Profile{}, s.internal("verify_email", err)
	}

	acct.ClearVerification()
	acct.UpdatedAt = s.now()
	if err := s.store.Save(ctx, acct); err != nil {
		return account.Profile{}, s.internal("verify_email", err)
	}

	if err := s.mailer.SendWelcomeEmail(ctx, acct.Email, acct.FirstName); err != nil {
		return account.Profile{}, s.notifyFailed("verify_email", "welcome", acct.Email, err)
	}

	s.metrics.ObserveEmail("welcome", metrics.OutcomeSuccess)
	s.metrics.Observe("verify_email", metrics.OutcomeSuccess)
	s.logger.Info("email verified", slog.String("email", acct.Email))
	return acct.Profile(), nil
}

// Login checks the credentials and stamps lastLogin. The caller issues the
// session on success.
func (s *Service) Login(ctx context.Context, email, pass string) (account.Profile, error) {
	email = strings.TrimSpace(email)

	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Profile{}, s.fail("login", ErrAccountNotFound)
		}
		return account.Profile{}, s.internal("login", err)
	}

	if !s.hasher.Verify(pass, acct.PasswordHash) {
		return account.Profile{}, s.fail("login", ErrWrongPassword)
	}

	now := s.now()
	acct.LastLoginAt = &now
	acct.UpdatedAt = now
	if err := s.store.Save(ctx, acct); err != nil {
		return account.Profile{}, s.internal("login", err)
	}

	s.metrics.Observe("login", metrics.OutcomeSuccess)
	s.logger.Info("login", slog.String("email", acct.Email))
	return acct.Profile(), nil
}

// ForgotPassword starts the reset workflow, overwriting any pending reset,
// and dispatches the reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return s.fail("forgot_password", ErrAccountNotFound)
		}
		return s.internal("forgot_password", err)
	}

	tok, err := newResetToken()
	if err != nil {
		return s.internal("forgot_password", fmt.Errorf("generate reset token: %w", err))
	}

	now := s.now()
	acct.StartReset(tok, now.Add(s.cfg.ResetTTL))
	acct.UpdatedAt = now
	if err := s.store.Save(ctx, acct); err != nil {
		return s.internal("forgot_password", err)
	}

	resetURL := strings.TrimRight(s.cfg.ClientURL, "/") + "/reset-password/" + tok
	if err := s.mailer.SendResetPasswordEmail(ctx, acct.Email, resetURL); err != nil {
		return s.notifyFailed("forgot_password", "reset_request", acct.Email, err)
	}

	s.metrics.ObserveEmail("reset_request", metrics.OutcomeSuccess)
	s.metrics.Observe("forgot_password", metrics.OutcomeSuccess)
	s.logger.Info("password reset requested", slog.String("email", acct.Email))
	return nil
}

// ResetPassword consumes an unexpired reset token, replaces the password
// hash, and dispatches the confirmation email.
func (s *Service) ResetPassword(ctx context.Context, tok, newPass string) error {
	if newPass == "" {
		return s.fail("reset_password", ErrMissingFields)
	}

	acct, err := s.store.FindByResetToken(ctx, strings.TrimSpace(tok))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return s.fail("reset_password", ErrInvalidOrExpiredToken)
		}
		return s.internal("reset_password", err)
	}

	hash, err := s.hasher.Hash(newPass)
	if err != nil {
		return s.internal("reset_password", fmt.Errorf("hash password: %w", err))
	}

	acct.CompleteReset(hash)
	acct.UpdatedAt = s.now()
	if err := s.store.Save(ctx, acct); err != nil {
		return s.internal("reset_password", err)
	}

	if err := s.mailer.SendResetSuccessEmail(ctx, acct.Email); err != nil {
		return s.notifyFailed("reset_password", "reset_success", acct.Email, err)
	}

	s.metrics.ObserveEmail("reset_success", metrics.OutcomeSuccess)
	s.metrics.Observe("reset_password", metrics.OutcomeSuccess)
	s.logger.Info("password reset completed", slog.String("email", acct.Email))
	return nil
}

// CheckAuth validates a raw session token and returns the authenticated
// account ID. Every token failure (missing, tampered, expired) collapses
// into ErrUnauthenticated.
func (s *Service) CheckAuth(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrUnauthenticated
	}

	accountID, err := s.codec.Verify(tokenStr)
	if err != nil {
		s.metrics.Observe("check_auth", metrics.OutcomeFailure)
		return "", ErrUnauthenticated
	}

	s.metrics.Observe("check_auth", metrics.OutcomeSuccess)
	return accountID, nil
}

// IssueSession signs a session token for accountID without touching the
// transport; the HTTP layer sets the cookie.
func (s *Service) IssueSession(accountID string) (string, error) {
	return s.codec.Issue(accountID)
}

func (s *Service) fail(op string, err error) error {
	s.metrics.Observe(op, metrics.OutcomeFailure)
	return err
}

func (s *Service) internal(op string, err error) error {
	s.metrics.Observe(op, metrics.OutcomeInternal)
	s.logger.Error(op+" failed", slog.String("error", err.Error()))
	return err
}

func (s *Service) notifyFailed(op, kind, email string, err error) error {
	s.metrics.ObserveEmail(kind, metrics.OutcomeFailure)
	s.metrics.Observe(op, metrics.OutcomeInternal)
	s.logger.Error("notification send failed",
		slog.String("operation", op),
		slog.String("email", email),
		slog.String("error", err.Error()))
	return fmt.Errorf("%w: %v", ErrNotify, err)
}
