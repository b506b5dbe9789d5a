// Package static serves accounts fixed at startup from configuration.
package static

import (
	"context"
	"crypto/subtle"

	"panchayat-docstore/internal/auth/domain/model"
	"panchayat-docstore/internal/auth/domain/repository"
	"panchayat-docstore/internal/shared/errors"
)

// AccountRepository holds a fixed set of accounts.
type AccountRepository struct {
	accounts []model.Account
}

// NewAccountRepository creates a repository over accounts. Accounts without a
// username or password hash are skipped.
func NewAccountRepository(accounts ...model.Account) *AccountRepository {
	repo := &AccountRepository{}
	for _, a := range accounts {
		if a.Username == "" || a.PasswordHash == "" {
			continue
		}
		repo.accounts = append(repo.accounts, a)
	}
	return repo
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range r.accounts {
		if subtle.ConstantTimeCompare([]byte(a.Username), []byte(username)) == 1 {
			account := a
			return &account, nil
		}
	}
	return nil, errors.ErrInvalidCredentials
}
