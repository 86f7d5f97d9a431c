package service

import (
	"bitwise74/auth-api/internal/model"
	"context"
)

func (m *CredentialManager) Account(ctx context.Context, id uint) (acct *model.PublicAccount, err error) {
	defer func() { m.metrics.Event("get_user", err) }()

	if id == 0 {
		return nil, Validation(errUserIDRequired)
	}

	found, err := m.findAccount(m.db.WithContext(ctx), "id = ?", id)
	if err != nil {
		return nil, err
	}

	pub := found.Sanitize()
	return &pub, nil
}
