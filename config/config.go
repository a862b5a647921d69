package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"birdseye/internal/domain/entity"
)

const (
	backendNative = "native"
	backendGoCV   = "gocv"
)

type Config struct {
	TelegramToken  string
	HTTPAddr       string
	WarpBackend    string
	MaxWidth       int
	MaxHeight      int
	MaxCanvasSide  int
	MaxUploadBytes int64
	LogLevel       string
	OutputPath     string
	Camera         entity.CameraParameters
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	var errs []string
	getInt := func(key string, def int) int {
		v, err := cast.ToIntE(getEnv(key, cast.ToString(def)))
		if err != nil {
			errs = append(errs, key)
		}
		return v
	}
	getFloat := func(key string, def float64) float64 {
		v, err := cast.ToFloat64E(getEnv(key, cast.ToString(def)))
		if err != nil {
			errs = append(errs, key)
		}
		return v
	}

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		WarpBackend:    strings.ToLower(getEnv("WARP_BACKEND", backendNative)),
		MaxWidth:       getInt("MAX_WIDTH", 1080),
		MaxHeight:      getInt("MAX_HEIGHT", 720),
		MaxCanvasSide:  getInt("MAX_CANVAS_SIDE", 16384),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 20<<20)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OutputPath:     getEnv("OUTPUT_PATH", "temp/output.png"),
		Camera: entity.NewEulerParameters(
			getFloat("CAMERA_HEIGHT", 15.5),
			getFloat("PITCH", 30),
			getFloat("YAW", 10),
			getFloat("ROLL", 10),
			getFloat("FOCAL_LENGTH", 400),
		),
	}
	if len(errs) > 0 {
		return nil, errors.Errorf("invalid numeric values for %s", strings.Join(errs, ", "))
	}

	return cfg, cfg.Validate()
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if c.WarpBackend != backendNative && c.WarpBackend != backendGoCV {
		return errors.Errorf("WARP_BACKEND must be %q or %q, got %q", backendNative, backendGoCV, c.WarpBackend)
	}
	if c.MaxWidth <= 0 || c.MaxHeight <= 0 {
		return errors.Errorf("MAX_WIDTH and MAX_HEIGHT must be positive, got %dx%d", c.MaxWidth, c.MaxHeight)
	}
	if c.MaxCanvasSide <= 0 {
		return errors.Errorf("MAX_CANVAS_SIDE must be positive, got %d", c.MaxCanvasSide)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.Camera.FocalLength == 0 {
		return errors.New("FOCAL_LENGTH must not be zero")
	}
	return errors.Wrap(c.Camera.Validate(), "default camera")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
