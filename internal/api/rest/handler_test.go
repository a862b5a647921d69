package rest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"birdseye/config"
	"birdseye/internal/container"
	"birdseye/internal/domain/entity"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	c, err := container.New(&config.Config{
		WarpBackend:    "native",
		MaxWidth:       1080,
		MaxHeight:      720,
		MaxCanvasSide:  16384,
		MaxUploadBytes: 1 << 20,
		Camera:         entity.NewEulerParameters(15.5, 30, 10, 10, 400),
	}, nil)
	require.NoError(t, err)
	return New(c).Router()
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func post(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/transform", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTransform_OK(t *testing.T) {
	r := setupRouter(t)

	w := post(t, r, map[string]any{
		"image":  pngBase64(t, 100, 100),
		"params": map[string]any{"tilt_angle": 30, "focal_length": 400, "principal_point": []float64{50, 50}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp TransformResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 125, resp.Width)
	require.Equal(t, 135, resp.Height)
	require.Equal(t, 125, resp.WarpedWidth)

	data, err := base64.StdEncoding.DecodeString(resp.TransformedImage)
	require.NoError(t, err)
	out, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 125, 135), out.Bounds())
}

func TestTransform_DataURLAndDefaults(t *testing.T) {
	r := setupRouter(t)

	w := post(t, r, map[string]any{
		"image":      "data:image/png;base64," + pngBase64(t, 64, 48),
		"max_width":  40,
		"max_height": 40,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TransformResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.LessOrEqual(t, resp.Width, 40)
	require.LessOrEqual(t, resp.Height, 40)
}

func TestTransform_BadRequests(t *testing.T) {
	r := setupRouter(t)
	img := pngBase64(t, 10, 10)

	cases := map[string]any{
		"missing image":   map[string]any{"params": map[string]any{"tilt_angle": 30, "focal_length": 400}},
		"invalid base64":  map[string]any{"image": "%%%"},
		"not an image":    map[string]any{"image": base64.StdEncoding.EncodeToString([]byte("hello"))},
		"missing focal":   map[string]any{"image": img, "params": map[string]any{"tilt_angle": 30}},
		"negative focal":  map[string]any{"image": img, "params": map[string]any{"pitch": 30, "focal_length": -1}},
		"bad principal":   map[string]any{"image": img, "params": map[string]any{"tilt_angle": 30, "focal_length": 400, "principal_point": []float64{1}}},
		"params as array": map[string]any{"image": img, "params": []int{1, 2}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := post(t, r, body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Error)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/transform", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransform_ComputationError(t *testing.T) {
	r := setupRouter(t)

	w := post(t, r, map[string]any{
		"image":  pngBase64(t, 10, 10),
		"params": map[string]any{"tilt_angle": 30, "focal_length": 0},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestTransform_MethodNotAllowed(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transform", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, statusFor(entity.NewInputError("x")))
	require.Equal(t, http.StatusBadRequest, statusFor(entity.NewParameterError("x")))
	require.Equal(t, http.StatusUnprocessableEntity, statusFor(entity.NewComputationError("x")))
	require.Equal(t, http.StatusInternalServerError, statusFor(http.ErrHandlerTimeout))
}
