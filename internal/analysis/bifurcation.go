package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/integrators"
)

// BifurcationPoint holds the distinct peak values seen for one parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

type BifurcationConfig struct {
	Param     string
	Min, Max  float64
	Steps     int
	Component int
	Transient float64
	Record    float64
	// StepsPerUnit is the ABM resolution per unit of time.
	StepsPerUnit int
}

// BifurcationDiagram sweeps a parameter and records the local maxima of one
// component after the transient has died out. Each run uses bounded-memory ABM
// and reads the trajectory through the observer, so long records stay cheap.
// The parameter is restored when the sweep ends.
func BifurcationDiagram(sys dynamo.System, x0 dynamo.State, cfg BifurcationConfig) ([]BifurcationPoint, error) {
	tunable, ok := sys.(dynamo.Configurable)
	if !ok {
		return nil, ErrNotTunable
	}
	if cfg.Component < 0 || cfg.Component >= sys.StateDim() {
		return nil, ErrComponent
	}
	if cfg.Steps < 1 || cfg.Record <= 0 || cfg.Transient < 0 || cfg.StepsPerUnit < 1 {
		return nil, ErrConfig
	}
	original, ok := tunable.GetParams()[cfg.Param]
	if !ok {
		return nil, ErrConfig
	}
	defer tunable.SetParam(cfg.Param, original)

	paramStep := 0.0
	if cfg.Steps > 1 {
		paramStep = (cfg.Max - cfg.Min) / float64(cfg.Steps-1)
	}

	total := cfg.Transient + cfg.Record
	nt := max(1, int(math.Ceil(total*float64(cfg.StepsPerUnit))))
	f := dynamo.AsFunc(sys)

	results := make([]BifurcationPoint, 0, cfg.Steps)
	for i := 0; i < cfg.Steps; i++ {
		param := cfg.Min + float64(i)*paramStep
		if err := tunable.SetParam(cfg.Param, param); err != nil {
			return nil, err
		}

		seen := make(map[int]bool)
		var values []float64
		var prev [2]float64
		count := 0
		observe := func(t float64, y []float64) {
			v := y[cfg.Component]
			if count >= 2 && t > cfg.Transient && prev[1] > prev[0] && prev[1] >= v {
				// Quantize to find distinct values
				key := int(math.Round(prev[1] * 1000))
				if !seen[key] {
					seen[key] = true
					values = append(values, prev[1])
				}
			}
			prev[0], prev[1] = prev[1], v
			count++
		}

		opts := integrators.ABMOptions[float64]{SaveMemory: true, Observer: observe}
		if _, err := integrators.ABM(f, dynamo.Span{Start: 0, End: total}, x0, nt, opts); err != nil {
			return nil, err
		}
		results = append(results, BifurcationPoint{Param: param, Values: values})
	}
	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := newCanvas(width, height)
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			canvas.set(row, col, '•')
		}
	}
	return canvas.String()
}

type canvas [][]rune

func newCanvas(width, height int) canvas {
	c := make(canvas, height)
	for i := range c {
		c[i] = []rune(strings.Repeat(" ", width))
	}
	return c
}

func (c canvas) set(row, col int, r rune) {
	if row >= 0 && row < len(c) && col >= 0 && col < len(c[row]) {
		c[row][col] = r
	}
}

func (c canvas) String() string {
	var sb strings.Builder
	for _, row := range c {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
