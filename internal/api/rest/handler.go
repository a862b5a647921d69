// Package rest — HTTP-адаптер конвейера вида сверху.
package rest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"

	app "birdseye/internal/application"
	"birdseye/internal/container"
	"birdseye/internal/domain/entity"
)

// TransformRequest — тело POST /api/transform.
type TransformRequest struct {
	Image     string          `json:"image"` // base64, допускается data URL
	Params    json.RawMessage `json:"params"`
	MaxWidth  int             `json:"max_width,omitempty"`
	MaxHeight int             `json:"max_height,omitempty"`
}

// TransformResponse — результат преобразования.
type TransformResponse struct {
	TransformedImage string `json:"transformed_image"` // base64 PNG
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	WarpedWidth      int    `json:"warped_width"`
	WarpedHeight     int    `json:"warped_height"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	transform *app.TransformService
	defaults  entity.CameraParameters
	maxWidth  int
	maxHeight int
	maxBody   int64
	logger    *zap.Logger
}

func New(c *container.Container) *Handler {
	return &Handler{
		transform: c.TransformService,
		defaults:  c.Config.Camera,
		maxWidth:  c.Config.MaxWidth,
		maxHeight: c.Config.MaxHeight,
		// base64 раздувает данные на треть, плюс запас на JSON
		maxBody: c.Config.MaxUploadBytes/3*4 + 64<<10,
		logger:  c.Logger.Named("http"),
	}
}

// Router собирает chi-роутер с middleware и CORS.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return cors.AllowAll().Handler(r)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	})

	r.Get("/health", h.HealthCheck)
	r.Post("/api/transform", h.Transform)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// Transform принимает изображение в base64 и параметры камеры, возвращает PNG в base64.
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, entity.NewInputError("malformed request body: %v", err))
		return
	}

	params := h.defaults
	if len(req.Params) > 0 && string(req.Params) != "null" {
		var err error
		if params, err = entity.ParseParameters(req.Params); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	data, err := decodeImage(req.Image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	maxWidth, maxHeight := h.maxWidth, h.maxHeight
	if req.MaxWidth > 0 {
		maxWidth = req.MaxWidth
	}
	if req.MaxHeight > 0 {
		maxHeight = req.MaxHeight
	}

	png, result, err := h.transform.TransformEncoded(r.Context(), bytes.NewReader(data), params, maxWidth, maxHeight)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TransformResponse{
		TransformedImage: base64.StdEncoding.EncodeToString(png),
		Width:            result.Width,
		Height:           result.Height,
		WarpedWidth:      result.WarpedWidth,
		WarpedHeight:     result.WarpedHeight,
	})
}

// decodeImage снимает префикс data URL и декодирует base64.
func decodeImage(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	if s == "" {
		return nil, entity.NewInputError("image is required")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, entity.NewInputError("image is not valid base64: %v", err)
	}
	return data, nil
}

// statusFor сопоставляет ошибку конвейера HTTP-статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInput), errors.Is(err, entity.ErrParameter):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrComputation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("transform failed", fields...)
		writeJSON(w, status, ErrorResponse{Error: "internal error"})
		return
	}
	h.logger.Info("transform rejected", fields...)
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
