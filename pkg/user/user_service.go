package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserDataInvalid = errors.New("user data invalid")
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetUserById(ctx context.Context, id int) (User, error)
	// FindOrCreate returns the user with the given email, creating the
	// account on first sign-in.
	FindOrCreate(ctx context.Context, email string, displayName string) (User, error)
	UpdateSettings(ctx context.Context, settings Settings) (Settings, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewUserService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	// Re-read so settings changed in this session are reflected.
	stored, err := s.repo.FindById(ctx, current.Id)
	if err != nil {
		return User{}, err
	}
	if stored == nil {
		return User{}, ErrUserNotFound
	}
	return *stored, nil
}

func (s *ServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	user, err := s.repo.FindByUid(ctx, uid)
	if err != nil {
		return User{}, err
	}
	if user == nil {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

func (s *ServiceImpl) GetUserById(ctx context.Context, id int) (User, error) {
	user, err := s.repo.FindById(ctx, id)
	if err != nil {
		return User{}, err
	}
	if user == nil {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

func (s *ServiceImpl) FindOrCreate(ctx context.Context, email string, displayName string) (User, error) {
	if email == "" {
		return User{}, ErrUserDataInvalid
	}
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	if displayName == "" {
		displayName = email
	}
	created, err := s.repo.Store(ctx, User{
		Uid:         uuid.New().String(),
		Email:       email,
		DisplayName: displayName,
		Settings: Settings{
			IncludeUnsortedInTotal: true,
			FilterMode:             FilterByMonth,
		},
	})
	if err != nil {
		return User{}, err
	}
	log.Infof("created new user %s", created.Uid)
	return created, nil
}

func (s *ServiceImpl) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if settings.FilterMode != FilterByMonth && settings.FilterMode != FilterByPeriod {
		return Settings{}, fmt.Errorf("%w: unknown filter mode %q", ErrUserDataInvalid, settings.FilterMode)
	}

	updated, err := s.repo.UpdateSettings(ctx, userId, settings)
	if err != nil {
		return Settings{}, err
	}
	if !updated {
		log.Warnf("settings not updated for user %d", userId)
		return Settings{}, fmt.Errorf("settings not updated")
	}
	return settings, nil
}
