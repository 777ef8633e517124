package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"potluck/apperr"
	"potluck/db"
	"potluck/models"
	"potluck/utils"
)

const minPasswordLength = 8

type Service struct {
	users  db.UserStore
	tokens *TokenService
	clock  utils.Clock
	ids    utils.IDGenerator
	logger *slog.Logger
	cost   int
}

func NewService(users db.UserStore, tokens *TokenService, clock utils.Clock, ids utils.IDGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		clock:  clock,
		ids:    ids,
		logger: logger,
		cost:   bcrypt.DefaultCost,
	}
}

// Result is returned by Register and Login.
type Result struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, apperr.New(apperr.Invalid, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.New(apperr.Invalid, "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Newf(apperr.Invalid, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hashing password", err)
	}
	user := &models.User{
		ID:           s.ids.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "email is already registered")
		}
		return nil, apperr.Wrap(apperr.Internal, "creating user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "invalid email or password")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "looking up user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.New(apperr.Unauthenticated, "invalid email or password")
	}
	return s.issue(user)
}

// Me returns the user behind an authenticated session.
func (s *Service) Me(ctx context.Context, session *models.Session) (*models.User, error) {
	user, err := s.users.FindByID(ctx, session.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.New(apperr.Unauthenticated, "user no longer exists")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "looking up user", err)
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*Result, error) {
	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "issuing token", err)
	}
	return &Result{Token: token, User: user}, nil
}
