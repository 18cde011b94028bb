package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrInvalidRole        = errors.New("invalid role")
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByActiveResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error)
	MarkVerified(ctx context.Context, id, code string, now time.Time) (int64, error)
	ReplaceVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error
	SetRole(ctx context.Context, email string, role domain.Role) error
}

type GormAccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &GormAccountRepository{db: db} }

func (r *GormAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (r *GormAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormAccountRepository) FindByActiveResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error) {
	a, err := r.first(ctx, "reset_token = ? AND reset_token_expires_at > ?", tokenHash, now)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrResetTokenNotFound
	}
	return a, err
}

func (r *GormAccountRepository) first(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).Where(query, args...).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// MarkVerified flips is_verified only while the stored code still matches,
// so concurrent verifications of the same account write once.
func (r *GormAccountRepository) MarkVerified(ctx context.Context, id, code string, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ? AND verification_code = ? AND is_verified = ?", id, code, false).
		Where("(verification_code_expires_at IS NULL OR verification_code_expires_at > ?)", now).
		Updates(map[string]any{
			"is_verified":                  true,
			"verification_code":            nil,
			"verification_code_expires_at": nil,
			"updated_at":                   now,
		})
	return res.RowsAffected, res.Error
}

func (r *GormAccountRepository) ReplaceVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ? AND is_verified = ?", id, false).
		Updates(map[string]any{
			"verification_code":            code,
			"verification_code_expires_at": expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *GormAccountRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reset_token":            tokenHash,
			"reset_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ConsumeResetToken swaps the password and clears both reset fields in one
// statement. Zero affected rows means the token was already used or expired.
func (r *GormAccountRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("reset_token = ? AND reset_token_expires_at > ?", tokenHash, now).
		Updates(map[string]any{
			"password_hash":          newPasswordHash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
			"updated_at":             now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResetTokenNotFound
	}
	return nil
}

func (r *GormAccountRepository) SetRole(ctx context.Context, email string, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ?", email).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
