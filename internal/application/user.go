package app

import (
	"context"

	"birdseye/internal/domain/entity"
	"birdseye/internal/domain/port"
)

type UserService struct {
	repo     port.UserRepository
	defaults entity.CameraParameters
}

func NewUserService(repo port.UserRepository, defaults entity.CameraParameters) *UserService {
	return &UserService{repo: repo, defaults: defaults}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetParams меняет параметры камеры пользователя; некорректные отвергаются с ErrParameter.
func (s *UserService) SetParams(ctx context.Context, userID, chatID int64, params entity.CameraParameters) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := user.SetParams(params); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateParams применяет fn к текущим параметрам пользователя.
func (s *UserService) UpdateParams(ctx context.Context, userID, chatID int64, fn func(*entity.CameraParameters)) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	params := user.Params
	fn(&params)
	return s.SetParams(ctx, userID, chatID, params)
}

func (s *UserService) ResetParams(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetParams(ctx, userID, chatID, s.defaults)
}

func (s *UserService) BeginTransform(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
