package repository

import (
	"context"

	"panchayat-docstore/internal/auth/domain/model"
)

// AccountRepository looks up accounts by username.
type AccountRepository interface {
	// FindByUsername returns errors.ErrInvalidCredentials when no account matches.
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
}
