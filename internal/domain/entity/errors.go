package entity

import "github.com/pkg/errors"

var (
	// ErrInput — изображение отсутствует, не читается или не декодируется.
	ErrInput = errors.New("input error")

	// ErrComputation — вырожденная математика: K сингулярна, однородная координата равна нулю и т.п.
	ErrComputation = errors.New("computation error")

	// ErrParameter — некорректный набор параметров камеры или границ вывода.
	ErrParameter = errors.New("parameter error")
)

// NewParameterError оборачивает ErrParameter сообщением.
func NewParameterError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrParameter, format, args...)
}

// NewComputationError оборачивает ErrComputation сообщением.
func NewComputationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrComputation, format, args...)
}

// NewInputError оборачивает ErrInput сообщением.
func NewInputError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInput, format, args...)
}
