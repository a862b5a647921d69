package container

import (
	"go.uber.org/zap"

	"birdseye/config"
	app "birdseye/internal/application"
	"birdseye/internal/domain/port"
	"birdseye/internal/infrastructure/imageio"
	"birdseye/internal/infrastructure/storage"
	"birdseye/internal/infrastructure/vision"
)

type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	UserRepository   port.UserRepository
	UserService      *app.UserService
	TransformService *app.TransformService
	PhotoService     *app.PhotoService
}

// New собирает сервисы приложения по конфигурации.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	warper, fitter, err := vision.NewBackend(cfg.WarpBackend)
	if err != nil {
		return nil, err
	}

	userRepo := storage.NewMemoryUserRepository(cfg.Camera)
	userService := app.NewUserService(userRepo, cfg.Camera)
	transformService := app.NewTransformService(
		warper,
		fitter,
		imageio.NewCodec(cfg.MaxUploadBytes),
		logger.Named("transform"),
		cfg.MaxCanvasSide,
	)
	photoService := app.NewPhotoService(userService, transformService, cfg.MaxWidth, cfg.MaxHeight)

	logger.Info("container ready",
		zap.String("backend", cfg.WarpBackend),
		zap.Int("max_width", cfg.MaxWidth),
		zap.Int("max_height", cfg.MaxHeight),
		zap.Stringer("default_camera", cfg.Camera),
	)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		UserRepository:   userRepo,
		UserService:      userService,
		TransformService: transformService,
		PhotoService:     photoService,
	}, nil
}
