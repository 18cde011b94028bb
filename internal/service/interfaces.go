package service

//go:generate mockgen -destination=gomock/mock_service.go -package=gomock . AuthServiceInterface,AccountAdminInterface,AuthAbuseGuard
//go:generate mockgen -destination=mock_collaborators_test.go -package=service -self_package=github.com/campusconnect/campus-connect-api/internal/service . NotificationDispatcher,CodeGenerator

import (
	"context"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/domain"
	"github.com/campusconnect/campus-connect-api/internal/notification"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) error
	VerifyAccount(ctx context.Context, email, code string) error
	ResendVerificationCode(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	CurrentAccount(ctx context.Context, accountID string) (*domain.AccountProfile, error)
}

type AccountAdminInterface interface {
	PromoteToAdmin(ctx context.Context, email string) (*domain.AccountProfile, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
}

type CodeGenerator interface {
	VerificationCode() (string, error)
	ResetSecret() (string, error)
}

type TokenIssuer interface {
	SignAccessToken(accountID, role string) (string, time.Time, error)
}

// NotificationDispatcher accepts outbound emails. A returned error means the
// message was not accepted for delivery.
type NotificationDispatcher interface {
	SendVerificationEmail(ctx context.Context, email, code string) error
	SendPasswordResetEmail(ctx context.Context, email, rawToken string, details notification.ResetDetails) error
}
