package identity

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

// Provider превращает учетные данные в пользователя
type Provider interface {
	Authenticate(ctx context.Context, credential string) (model.User, error)
}

type tokenEntry struct {
	token string
	user  model.User
}

// TokenProvider - статический список токенов из конфига для HTTP API
type TokenProvider struct {
	entries []tokenEntry
}

// NewTokenProvider разбирает записи вида "token:user_id" или "token:user_id:Display Name"
func NewTokenProvider(entries []string) (*TokenProvider, error) {
	p := &TokenProvider{}

	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		parts := strings.SplitN(raw, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid api token entry %q: expected token:user_id[:name]", raw)
		}

		user := model.User{ID: parts[1], DisplayName: parts[1]}
		if len(parts) == 3 && parts[2] != "" {
			user.DisplayName = parts[2]
		}

		p.entries = append(p.entries, tokenEntry{token: parts[0], user: user})
	}

	return p, nil
}

func (p *TokenProvider) Authenticate(_ context.Context, credential string) (model.User, error) {
	if credential == "" {
		return model.User{}, model.ErrUnauthenticated
	}

	for _, e := range p.entries {
		if subtle.ConstantTimeCompare([]byte(e.token), []byte(credential)) == 1 {
			return e.user, nil
		}
	}

	return model.User{}, model.ErrUnauthenticated
}

// Empty сообщает, что токенов нет и API поднимать не нужно
func (p *TokenProvider) Empty() bool {
	return len(p.entries) == 0
}
