package port

import (
	"image"
	"io"
)

// ImageCodec интерфейс чтения и записи изображений
type ImageCodec interface {
	// Decode читает изображение из потока
	Decode(r io.Reader) (image.Image, error)

	// Encode пишет изображение в поток в формате PNG
	Encode(w io.Writer, img image.Image) error
}
