// Package user implements the self-service account operations.
package user

import (
	"context"
	"fmt"

	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

type SetPublicUsernameCommand struct {
	UserID   uint
	Username string
}

// SetPublicUsernameUseCase registers the display name shown with posts.
// The name can only be set while empty: launches that arrived with one,
// or privileged defaults, are final.
type SetPublicUsernameUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewSetPublicUsernameUseCase(userRepo user.Repository, log logger.Interface) *SetPublicUsernameUseCase {
	return &SetPublicUsernameUseCase{userRepo: userRepo, logger: log}
}

func (uc *SetPublicUsernameUseCase) Execute(ctx context.Context, cmd SetPublicUsernameCommand) (*user.User, error) {
	u, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	name := utils.SanitizeText(cmd.Username)
	if err := u.SetPublicUsername(name); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	uc.logger.Infow("public username set", "user_id", u.ID())
	return u, nil
}
