package entity

import "image"

// TransformResult — итог преобразования в вид сверху.
type TransformResult struct {
	Image        image.Image // итоговое изображение после вписывания
	WarpedWidth  int         // размер холста после варпа
	WarpedHeight int
	Width        int // фактический размер Image
	Height       int
	Scaled       bool // было ли уменьшение при вписывании
}

// Scale возвращает коэффициент вписывания по ширине.
func (r TransformResult) Scale() float64 {
	if r.WarpedWidth == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.WarpedWidth)
}
