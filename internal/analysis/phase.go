package analysis

import (
	"github.com/san-kum/stepwise/internal/integrators"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds two components of a trajectory.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait projects a trajectory onto components xIdx and yIdx.
func PhasePortrait(res *integrators.Result[float64], xIdx, yIdx int) (*PhasePortrait2D, error) {
	if xIdx < 0 || yIdx < 0 || xIdx >= res.Dim() || yIdx >= res.Dim() {
		return nil, ErrComponent
	}
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, res.Len()),
	}
	for n := range res.T {
		portrait.Points[n] = Point{X: res.Y[xIdx][n], Y: res.Y[yIdx][n]}
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 1 || height <= 1 {
		return ""
	}
	return plotPoints(portrait.Points, width, height)
}

// PoincareSection records points where a trajectory crosses a threshold upwards.
type PoincareSection struct {
	Points []Point
}

// GeneratePoincareSection scans res for upward crossings of crossIdx through
// threshold and records (recordX, recordY) linearly interpolated to the crossing.
func GeneratePoincareSection(res *integrators.Result[float64], crossIdx int, threshold float64, recordX, recordY int) (*PoincareSection, error) {
	dim := res.Dim()
	if crossIdx < 0 || crossIdx >= dim || recordX < 0 || recordX >= dim || recordY < 0 || recordY >= dim {
		return nil, ErrComponent
	}

	section := &PoincareSection{}
	c := res.Y[crossIdx]
	for n := 1; n < len(c); n++ {
		prev, curr := c[n-1], c[n]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			lerp := func(i int) float64 { return res.Y[i][n-1] + frac*(res.Y[i][n]-res.Y[i][n-1]) }
			section.Points = append(section.Points, Point{X: lerp(recordX), Y: lerp(recordY)})
		}
	}
	return section, nil
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return plotPoints(section.Points, width, height)
}

func plotPoints(points []Point, width, height int) string {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	cv := newCanvas(width, height)
	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		cv.set(row, col, '•')
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if row < len(cv) && col >= 0 && col < width && cv[row][col] == ' ' {
				cv[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && cv[row][col] == ' ' {
				cv[row][col] = '─'
			}
		}
	}
	return cv.String()
}
