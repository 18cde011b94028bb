package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/config"
	"github.com/campusconnect/campus-connect-api/internal/domain"
	"github.com/campusconnect/campus-connect-api/internal/notification"
	"github.com/campusconnect/campus-connect-api/internal/observability"
	"github.com/campusconnect/campus-connect-api/internal/repository"
	"github.com/campusconnect/campus-connect-api/internal/security"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxDisplayNameLen = 120
	maxEmailLen       = 255
	minPasswordLen    = 8
	maxPasswordLen    = 128
)

type AuthService struct {
	cfg        *config.Config
	accounts   repository.AccountRepository
	hasher     PasswordHasher
	codes      CodeGenerator
	tokens     TokenIssuer
	dispatcher NotificationDispatcher
	logger     *slog.Logger
	now        func() time.Time
	decoyHash  func() string
}

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

type LoginResult struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expires_at"`
	Account   *domain.AccountProfile `json:"account"`
}

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
	specialRe   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func NewAuthService(
	cfg *config.Config,
	accounts repository.AccountRepository,
	hasher PasswordHasher,
	codes CodeGenerator,
	tokens TokenIssuer,
	dispatcher NotificationDispatcher,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		cfg:        cfg,
		accounts:   accounts,
		hasher:     hasher,
		codes:      codes,
		tokens:     tokens,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		decoyHash: sync.OnceValue(func() string {
			h, err := hasher.Hash(uuid.NewString())
			if err != nil {
				return ""
			}
			return h
		}),
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.register")
	defer func() { endSpan(span, err) }()

	name := strings.TrimSpace(in.DisplayName)
	email := normalizeEmail(in.Email)
	verr := &ValidationError{}
	validateDisplayName(verr, name)
	validateEmail(verr, "email", email)
	validatePassword(verr, "password", in.Password)
	if err := verr.orNil(); err != nil {
		observability.RecordAuthFlowEvent(ctx, "register", "invalid")
		return err
	}

	// Advisory only; the unique index on email decides races.
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		observability.RecordAuthFlowEvent(ctx, "register", "duplicate")
		return ErrAccountAlreadyExists
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return fmt.Errorf("lookup account: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code, err := s.codes.VerificationCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	expiresAt := s.now().Add(s.cfg.AuthVerificationCodeTTL)
	account := &domain.Account{
		ID:                        uuid.NewString(),
		DisplayName:               name,
		Email:                     email,
		PasswordHash:              hash,
		VerificationCode:          &code,
		VerificationCodeExpiresAt: &expiresAt,
		Role:                      domain.RoleStudent,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			observability.RecordAuthFlowEvent(ctx, "register", "duplicate")
			return ErrAccountAlreadyExists
		}
		return fmt.Errorf("create account: %w", err)
	}
	span.SetAttributes(attribute.String("account.id", account.ID))

	s.dispatchVerification(ctx, account.ID, email, code)
	observability.RecordAuthFlowEvent(ctx, "register", "success")
	return nil
}

func (s *AuthService) VerifyAccount(ctx context.Context, email, code string) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.verify")
	defer func() { endSpan(span, err) }()

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	verr := &ValidationError{}
	if email == "" {
		verr.add("email", "is required")
	}
	if code == "" {
		verr.add("code", "is required")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			observability.RecordAuthFlowEvent(ctx, "verify", "not_found")
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}
	if account.IsVerified {
		// The code was cleared on verification, so nothing can match it.
		observability.RecordAuthFlowEvent(ctx, "verify", "already_verified")
		return ErrCodeMismatch
	}
	now := s.now()
	if !account.VerificationCodeMatches(code, now) {
		observability.RecordAuthFlowEvent(ctx, "verify", "mismatch")
		return ErrCodeMismatch
	}

	rows, err := s.accounts.MarkVerified(ctx, account.ID, code, now)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if rows == 0 {
		// Lost a race with a caller holding the same code: fine as long as
		// that caller verified it.
		current, err := s.accounts.FindByID(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("reload account: %w", err)
		}
		if !current.IsVerified {
			observability.RecordAuthFlowEvent(ctx, "verify", "mismatch")
			return ErrCodeMismatch
		}
	}
	observability.RecordAuthFlowEvent(ctx, "verify", "success")
	s.logger.InfoContext(ctx, "account verified", "account_id", account.ID)
	return nil
}

func (s *AuthService) ResendVerificationCode(ctx context.Context, email string) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.verify.resend")
	defer func() { endSpan(span, err) }()

	email = normalizeEmail(email)
	verr := &ValidationError{}
	validateEmail(verr, "email", email)
	if err := verr.orNil(); err != nil {
		return err
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			observability.RecordAuthFlowEvent(ctx, "resend", "not_found")
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}
	if account.IsVerified {
		observability.RecordAuthFlowEvent(ctx, "resend", "already_verified")
		return nil
	}

	code, err := s.codes.VerificationCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	if err := s.accounts.ReplaceVerificationCode(ctx, account.ID, code, s.now().Add(s.cfg.AuthVerificationCodeTTL)); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Verified between the read and the write.
			return nil
		}
		return fmt.Errorf("replace verification code: %w", err)
	}
	s.dispatchVerification(ctx, account.ID, email, code)
	observability.RecordAuthFlowEvent(ctx, "resend", "success")
	return nil
}

// equalizeLoginCost spends one password verification on rejected lookups so
// response time does not reveal which emails hold verified accounts.
func (s *AuthService) equalizeLoginCost(account *domain.Account, password string) {
	encoded := s.decoyHash()
	if account != nil {
		encoded = account.PasswordHash
	}
	_, _ = s.hasher.Verify(encoded, password)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (_ *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.login")
	defer func() { endSpan(span, err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		observability.RecordAuthLogin(ctx, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.equalizeLoginCost(nil, password)
			observability.RecordAuthLogin(ctx, "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !account.IsVerified {
		s.equalizeLoginCost(account, password)
		observability.RecordAuthLogin(ctx, "unverified")
		return nil, ErrInvalidCredentials
	}
	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		observability.RecordAuthLogin(ctx, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.SignAccessToken(account.ID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	observability.RecordAuthLogin(ctx, "success")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account.Profile()}, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.password.forgot")
	defer func() { endSpan(span, err) }()

	email = normalizeEmail(email)
	verr := &ValidationError{}
	validateEmail(verr, "email", email)
	if err := verr.orNil(); err != nil {
		return err
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			observability.RecordAuthFlowEvent(ctx, "forgot", "not_found")
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	raw, err := s.codes.ResetSecret()
	if err != nil {
		return fmt.Errorf("generate reset secret: %w", err)
	}
	expiresAt := s.now().Add(s.cfg.AuthPasswordResetTokenTTL)
	if err := s.accounts.SetResetToken(ctx, account.ID, security.HashResetSecret(raw), expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	details := notification.ResetDetails{DisplayName: account.DisplayName}
	if err := s.dispatcher.SendPasswordResetEmail(ctx, email, raw, details); err != nil {
		s.logger.ErrorContext(ctx, "password reset email not dispatched",
			"account_id", account.ID,
			"error", err,
		)
		observability.RecordAuthFlowEvent(ctx, "forgot", "dispatch_failed")
		return nil
	}
	observability.RecordAuthFlowEvent(ctx, "forgot", "success")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.password.reset")
	defer func() { endSpan(span, err) }()

	rawToken = strings.TrimSpace(rawToken)
	verr := &ValidationError{}
	if rawToken == "" {
		verr.add("token", "is required")
	}
	validatePassword(verr, "new_password", newPassword)
	if err := verr.orNil(); err != nil {
		return err
	}

	tokenHash := security.HashResetSecret(rawToken)
	now := s.now()
	if _, err := s.accounts.FindByActiveResetToken(ctx, tokenHash, now); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			observability.RecordAuthFlowEvent(ctx, "reset", "invalid_token")
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.ConsumeResetToken(ctx, tokenHash, hash, now); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			observability.RecordAuthFlowEvent(ctx, "reset", "invalid_token")
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	observability.RecordAuthFlowEvent(ctx, "reset", "success")
	return nil
}

func (s *AuthService) CurrentAccount(ctx context.Context, accountID string) (*domain.AccountProfile, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account.Profile(), nil
}

// dispatchVerification hands the code to the dispatcher. The account already
// exists at this point, so a refusal is reported to operators only.
func (s *AuthService) dispatchVerification(ctx context.Context, accountID, email, code string) {
	if err := s.dispatcher.SendVerificationEmail(ctx, email, code); err != nil {
		s.logger.ErrorContext(ctx, "verification email not dispatched",
			"account_id", accountID,
			"error", err,
		)
		observability.RecordAuthFlowEvent(ctx, "verification_email", "dispatch_failed")
	}
}

func endSpan(span trace.Span, err error) {
	observability.EndSpan(span, err, IsClientError(err))
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validateDisplayName(verr *ValidationError, name string) {
	switch {
	case name == "":
		verr.add("display_name", "is required")
	case len(name) > maxDisplayNameLen:
		verr.add("display_name", fmt.Sprintf("must be at most %d characters", maxDisplayNameLen))
	}
}

func validateEmail(verr *ValidationError, field, email string) {
	if email == "" {
		verr.add(field, "is required")
		return
	}
	if len(email) > maxEmailLen {
		verr.add(field, "is too long")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		verr.add(field, "is not a valid email address")
	}
}

func validatePassword(verr *ValidationError, field, password string) {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		verr.add(field, fmt.Sprintf("must be between %d and %d characters", minPasswordLen, maxPasswordLen))
		return
	}
	if !uppercaseRe.MatchString(password) || !lowercaseRe.MatchString(password) ||
		!digitRe.MatchString(password) || !specialRe.MatchString(password) {
		verr.add(field, "must contain upper and lower case letters, a digit and a symbol")
	}
}
