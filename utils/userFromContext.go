package utils

import (
	"context"

	"potluck/globals"
	"potluck/models"
)

func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, globals.SessionKey, s)
}

func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(globals.SessionKey).(*models.Session)
	if !ok || s == nil || s.UserID == "" {
		return nil, false
	}
	return s, true
}

func GetUserIDFromContext(ctx context.Context) string {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return ""
	}
	return s.UserID
}
