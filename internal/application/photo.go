package app

import (
	"bytes"
	"context"

	"github.com/pkg/errors"

	"birdseye/internal/domain/entity"
)

// PhotoService проводит фото пользователя через конвейер с его параметрами камеры.
type PhotoService struct {
	users     *UserService
	transform *TransformService
	maxWidth  int
	maxHeight int
}

// PhotoOutput содержит результат преобразования и PNG для отправки.
type PhotoOutput struct {
	Result *entity.TransformResult
	PNG    []byte
}

// NewPhotoService создаёт сервис обработки фото.
func NewPhotoService(users *UserService, transform *TransformService, maxWidth, maxHeight int) *PhotoService {
	return &PhotoService{
		users:     users,
		transform: transform,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}
}

// ProcessPhoto преобразует фото с параметрами пользователя и возвращает его в главное меню.
func (s *PhotoService) ProcessPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*PhotoOutput, error) {
	if s.transform == nil {
		return nil, errors.New("transform service is not configured")
	}

	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	// Возвращаем в главное меню при любом исходе.
	defer func() {
		_, _ = s.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
	}()

	data, result, err := s.transform.TransformEncoded(ctx, bytes.NewReader(photo), user.Params, s.maxWidth, s.maxHeight)
	if err != nil {
		return nil, err
	}
	return &PhotoOutput{Result: result, PNG: data}, nil
}
