package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/stepwise/internal/analysis"
	"github.com/san-kum/stepwise/internal/integrators"
)

// CanvasToSVG converts a grid of Braille cells to SVG dots.
func CanvasToSVG(grid [][]rune, scale float64) string {
	if len(grid) == 0 {
		return ""
	}

	width := float64(len(grid[0])) * scale * 2 // 2 sub-pixels per cell
	height := float64(len(grid)) * scale * 4   // 4 sub-pixels per cell

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dots := [4][2]rune{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	radius := scale * 0.4

	for row, cells := range grid {
		for col, r := range cells {
			if r < 0x2800 {
				continue
			}
			pattern := r - 0x2800
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dots[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, radius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as one polyline scaled to the image with a 10%
// margin.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteSVG draws the phase portrait y1 against y0, or y0 against t for a
// one-dimensional state.
func WriteSVG(w io.Writer, res *integrators.Result[float64], width, height int) error {
	var points []analysis.Point
	if res.Dim() >= 2 {
		portrait, err := analysis.PhasePortrait(res, 0, 1)
		if err != nil {
			return err
		}
		points = portrait.Points
	} else if res.Dim() == 1 {
		points = make([]analysis.Point, res.Len())
		for n, t := range res.T {
			points[n] = analysis.Point{X: t, Y: res.Y[0][n]}
		}
	}

	svg := TrajectoryToSVG(points, width, height, "#00ffff")
	if svg == "" {
		return fmt.Errorf("export: need at least two samples to draw, have %d", len(points))
	}
	_, err := io.WriteString(w, svg+"\n")
	return err
}

// Realify splits each complex component into its real and imaginary parts.
func Realify(res *integrators.Result[complex128]) *integrators.Result[float64] {
	out := &integrators.Result[float64]{
		T:           res.T,
		Y:           make([][]float64, 2*res.Dim()),
		Evaluations: res.Evaluations,
	}
	for i, ys := range res.Y {
		re := make([]float64, len(ys))
		im := make([]float64, len(ys))
		for n, v := range ys {
			re[n], im[n] = real(v), imag(v)
		}
		out.Y[2*i], out.Y[2*i+1] = re, im
	}
	return out
}
