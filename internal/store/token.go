package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cnc-telemetry-backend/internal/model"
)

// ResolveToken maps an opaque bearer token to a user name. Unknown and
// expired tokens both resolve to ErrInvalidToken; the broadcaster does not
// distinguish the two cases to the client.
func (s *gormStore) ResolveToken(ctx context.Context, token string) (string, error) {
	var row model.AccessToken
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}

	if !row.ExpiresAt.IsZero() && row.ExpiresAt.Before(time.Now().UTC()) {
		return "", ErrInvalidToken
	}
	return row.UserName, nil
}
