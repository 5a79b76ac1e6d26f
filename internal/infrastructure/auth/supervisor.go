package auth

import (
	"context"
	"fmt"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/identity"
	"go.uber.org/zap"
)

// SupervisorCodeAuthorizer verifies supervisor codes against the active
// managers' stored hashes. The code itself carries no identity, so every
// active manager's hash is checked until one matches.
type SupervisorCodeAuthorizer struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewSupervisorCodeAuthorizer creates a new SupervisorCodeAuthorizer
func NewSupervisorCodeAuthorizer(users identity.UserRepository, logger *zap.Logger) *SupervisorCodeAuthorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupervisorCodeAuthorizer{users: users, logger: logger}
}

// VerifyCode implements cashdrawer.SupervisorAuthorizer
func (a *SupervisorCodeAuthorizer) VerifyCode(ctx context.Context, code string) (cashdrawer.SupervisorAuthorization, error) {
	if code == "" {
		return cashdrawer.SupervisorAuthorization{}, nil
	}

	managers, err := a.users.FindActiveByRole(ctx, cashdrawer.RoleManager)
	if err != nil {
		return cashdrawer.SupervisorAuthorization{}, fmt.Errorf("failed to load managers: %w", err)
	}

	for i := range managers {
		if managers[i].VerifySupervisorCode(code) {
			return cashdrawer.SupervisorAuthorization{
				Authorized:       true,
				AuthorizedUserID: managers[i].ID,
			}, nil
		}
	}

	a.logger.Warn("supervisor code rejected")
	return cashdrawer.SupervisorAuthorization{}, nil
}

var _ cashdrawer.SupervisorAuthorizer = (*SupervisorCodeAuthorizer)(nil)
