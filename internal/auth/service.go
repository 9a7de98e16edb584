// Package auth signs users in and out. It is the only store with a
// durable side effect: a successful login or registration saves the
// token and user through the session manager, and logout clears them.
package auth

import (
	"context"
	"log/slog"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
	"github.com/ashraf950/timesheet-client/internal/core/state"
	"github.com/ashraf950/timesheet-client/internal/normalize"
)

const (
	MsgLoginFailed     = "Login failed"
	MsgRegisterFailed  = "Registration failed"
	MsgSessionNotSaved = "Signed in, but the session could not be saved. Sign in again."
)

type Backend interface {
	Post(ctx context.Context, path string, body any) ([]byte, error)
}

// SessionStore persists the signed-in user.
type SessionStore interface {
	Save(ctx context.Context, token string, u user.User) error
	Clear(ctx context.Context) error
	User() (user.User, bool)
}

type Service struct {
	api      Backend
	sessions SessionStore
	logger   *slog.Logger
	current  *state.Record[*user.User]
}

// NewService starts from whatever session the store already holds.
func NewService(api Backend, sessions SessionStore, logger *slog.Logger) *Service {
	var current *user.User
	if u, ok := sessions.User(); ok {
		current = &u
	}
	return &Service{
		api:      api,
		sessions: sessions,
		logger:   logger,
		current:  state.NewRecord(current),
	}
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (user.User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return user.User{}, appErr
	}
	return s.authenticate(ctx, "/auth/login", dto, MsgLoginFailed)
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (user.User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return user.User{}, appErr
	}
	return s.authenticate(ctx, "/auth/register", dto, MsgRegisterFailed)
}

func (s *Service) authenticate(ctx context.Context, path string, body any, fallback string) (user.User, error) {
	s.current.Begin()

	raw, err := s.api.Post(ctx, path, body)
	if err != nil {
		s.logger.Warn("authentication failed", "path", path, "error", err)
		s.current.Fail(state.FailureFrom(err, fallback))
		return user.User{}, err
	}

	resp, _ := normalize.Record[authResponse](raw)
	if resp.Token == "" {
		resp.Token, _ = normalize.Field[string](raw, "token")
	}
	if resp.User == nil {
		if u, ok := normalize.Field[user.User](raw, "user"); ok {
			resp.User = &u
		}
	}
	if resp.Token == "" || resp.User == nil {
		appErr := &internal.AppError{
			Type:    internal.ErrorTypeExternal,
			Code:    internal.ErrCodeBadResponse,
			Message: fallback,
			Path:    path,
		}
		s.logger.Warn("authentication response missing token or user", "path", path)
		s.current.Fail(state.FailureFrom(appErr, fallback))
		return user.User{}, appErr
	}

	u := *resp.User
	s.current.Set(&u)

	if err := s.sessions.Save(ctx, resp.Token, u); err != nil {
		s.logger.Warn("failed to persist session", "user_id", u.Key(), "error", err)
		appErr := internal.NewSessionError(MsgSessionNotSaved).WithCause(err)
		s.current.Fail(state.FailureFrom(appErr, fallback))
		return user.User{}, appErr
	}

	s.logger.Info("signed in", "user_id", u.Key(), "role", u.Role)
	return u, nil
}

// Logout forgets the current user, in memory and on disk.
func (s *Service) Logout(ctx context.Context) error {
	s.current.Set(nil)
	s.current.ClearErrors()
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear session", "error", err)
		return internal.NewSessionError("failed to clear session").WithCause(err)
	}
	return nil
}

func (s *Service) ClearError() {
	s.current.ClearErrors()
}

// CurrentUser returns the signed-in user, if any.
func (s *Service) CurrentUser() (user.User, bool) {
	u := s.current.Value()
	if u == nil {
		return user.User{}, false
	}
	return *u, true
}

func (s *Service) Snapshot() state.RecordSnapshot[*user.User] {
	return s.current.Snapshot()
}
