// Package imageio читает и пишет изображения для адаптеров.
package imageio

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // регистрирует декодер WebP

	"birdseye/internal/domain/entity"
	"birdseye/internal/domain/port"
)

// MaxDimension ограничивает сторону входного изображения.
const MaxDimension = 12000

// Codec декодирует любые зарегистрированные форматы и пишет PNG.
type Codec struct {
	MaxBytes int64 // 0 — без ограничения
}

// NewCodec создаёт кодек с ограничением на размер входа.
func NewCodec(maxBytes int64) *Codec {
	return &Codec{MaxBytes: maxBytes}
}

// Decode читает изображение; ошибки формата и размера — ErrInput.
func (c *Codec) Decode(r io.Reader) (image.Image, error) {
	if c.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, c.MaxBytes+1))
		if err != nil {
			return nil, entity.NewInputError("read image: %v", err)
		}
		if int64(len(data)) > c.MaxBytes {
			return nil, entity.NewInputError("image exceeds %d bytes", c.MaxBytes)
		}
		r = bytes.NewReader(data)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, entity.NewInputError("decode image: %v", err)
	}
	return img, validate(img)
}

// Encode пишет изображение в PNG.
func (c *Codec) Encode(w io.Writer, img image.Image) error {
	if img == nil {
		return entity.NewInputError("nil image")
	}
	return imaging.Encode(w, img, imaging.PNG)
}

// Load открывает файл изображения. Отсутствующий или нечитаемый файл — ErrInput.
func Load(path string) (image.Image, error) {
	if path == "" {
		return nil, entity.NewInputError("image path is empty")
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, entity.NewInputError("open image %s: %v", path, err)
	}
	return img, validate(img)
}

// Save пишет изображение, создавая каталог; формат берётся из расширения.
func Save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return imaging.Save(img, path)
}

func validate(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		return entity.NewInputError("image dimensions out of range (%dx%d)", b.Dx(), b.Dy())
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.ImageCodec = (*Codec)(nil)
