package storage

import (
	"context"
	"sync"

	"birdseye/internal/domain/entity"
	"birdseye/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей и их параметров камеры
type MemoryUserRepository struct {
	mu       sync.RWMutex
	users    map[int64]*entity.User
	defaults entity.CameraParameters
}

// NewMemoryUserRepository создаёт новое in-memory хранилище.
// defaults получают все новые пользователи.
func NewMemoryUserRepository(defaults entity.CameraParameters) *MemoryUserRepository {
	return &MemoryUserRepository{
		users:    make(map[int64]*entity.User),
		defaults: defaults,
	}
}

// Get возвращает копию пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		user = entity.NewUser(userID, chatID, r.defaults)
		r.users[userID] = user
	}

	u := *user
	return &u, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	u := *user

	r.mu.Lock()
	r.users[user.ID] = &u
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние пользователя
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.SetState(state)
	}

	return nil
}

// UpdateParams обновляет параметры камеры пользователя
func (r *MemoryUserRepository) UpdateParams(ctx context.Context, userID int64, params entity.CameraParameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return nil
	}
	return user.SetParams(params)
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
