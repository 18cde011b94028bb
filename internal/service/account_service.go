package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusconnect/campus-connect-api/internal/domain"
	"github.com/campusconnect/campus-connect-api/internal/repository"
)

// AccountAdminService holds operator-only account changes. Roles are never
// changed through the public API.
type AccountAdminService struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
}

func NewAccountAdminService(accounts repository.AccountRepository, logger *slog.Logger) *AccountAdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountAdminService{accounts: accounts, logger: logger}
}

func (s *AccountAdminService) PromoteToAdmin(ctx context.Context, email string) (*domain.AccountProfile, error) {
	email = normalizeEmail(email)
	verr := &ValidationError{}
	validateEmail(verr, "email", email)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	if err := s.accounts.SetRole(ctx, email, domain.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("set role: %w", err)
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("reload account: %w", err)
	}
	s.logger.InfoContext(ctx, "account promoted", "account_id", account.ID, "role", account.Role)
	return account.Profile(), nil
}
