// Package db persists recipes and users.
package db

import (
	"context"
	"errors"

	"potluck/apperr"
	"potluck/models"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("document was modified concurrently")
	ErrDuplicate       = errors.New("duplicate key")
)

// RecipeStore persists whole Recipe documents.
//
// Save is a compare-and-swap on Recipe.Version: it succeeds only when the
// stored version still equals the one the caller loaded, and bumps the
// version on success. A lost race yields ErrVersionConflict.
type RecipeStore interface {
	FindByID(ctx context.Context, id string) (*models.Recipe, error)
	// FindVisibleTo lists recipes userID owns, collaborates on, or that are
	// public, newest first. limit <= 0 means no limit.
	FindVisibleTo(ctx context.Context, userID string, offset, limit int64) ([]models.Recipe, error)
	Insert(ctx context.Context, r *models.Recipe) error
	Save(ctx context.Context, r *models.Recipe) error
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	// Insert fails with ErrDuplicate when the email is taken.
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// AppError translates store sentinels into classified errors. what names the
// document kind in messages, e.g. "recipe".
func AppError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.Newf(apperr.NotFound, "%s not found", what)
	case errors.Is(err, ErrVersionConflict):
		return apperr.Wrap(apperr.Conflict, what+" was changed by another request, reload and try again", err)
	case errors.Is(err, ErrDuplicate):
		return apperr.Wrap(apperr.Conflict, what+" already exists", err)
	default:
		return apperr.Wrap(apperr.Internal, "saving "+what, err)
	}
}
