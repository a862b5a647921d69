package vision

import (
	"github.com/pkg/errors"

	"birdseye/internal/domain/port"
)

// Имена бэкендов варпа.
const (
	BackendNative = "native"
	BackendGoCV   = "gocv"
)

// NewBackend возвращает пару Warper/Fitter для выбранного бэкенда.
func NewBackend(name string) (port.Warper, port.Fitter, error) {
	switch name {
	case "", BackendNative:
		return NewPerspectiveWarper(), NewAreaFitter(), nil
	case BackendGoCV:
		if !GoCVEnabled {
			return nil, nil, errors.Errorf("backend %q requires a build with -tags gocv", name)
		}
		w := NewGoCVWarper()
		return w, w, nil
	default:
		return nil, nil, errors.Errorf("unknown warp backend %q", name)
	}
}
