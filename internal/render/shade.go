package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Luminance samples the area rect of img onto a cols x rows grid and returns
// the brightness of each cell in [0,1]. Cells that fall outside the image
// are -1.
func Luminance(img image.Image, rect image.Rectangle, cols, rows int) [][]float64 {
	out := make([][]float64, rows)
	for y := range out {
		out[y] = make([]float64, cols)
		for x := range out[y] {
			out[y][x] = -1
		}
	}
	if cols <= 0 || rows <= 0 || rect.Empty() {
		return out
	}

	src := rect.Intersect(img.Bounds())
	if src.Empty() {
		return out
	}

	// Map the visible part of the image onto the matching part of the grid.
	sx := float64(cols) / float64(rect.Dx())
	sy := float64(rows) / float64(rect.Dy())
	dst := image.Rect(
		int(float64(src.Min.X-rect.Min.X)*sx),
		int(float64(src.Min.Y-rect.Min.Y)*sy),
		ceil(float64(src.Max.X-rect.Min.X)*sx),
		ceil(float64(src.Max.Y-rect.Min.Y)*sy),
	).Intersect(image.Rect(0, 0, cols, rows))
	if dst.Empty() {
		return out
	}

	grid := image.NewRGBA(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(grid, dst, img, src, draw.Src, nil)

	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			c := grid.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			g := color.GrayModel.Convert(c).(color.Gray)
			out[y][x] = float64(g.Y) / 255
		}
	}
	return out
}

func ceil(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
