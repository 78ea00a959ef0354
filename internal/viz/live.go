package viz

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/stepwise/internal/analysis"
	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/export"
	"github.com/san-kum/stepwise/internal/integrators"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	trailCapacity   = 4000
	historyCapacity = 600
	maxChunk        = 1 << 14
	minHistory      = 4
)

type TickMsg time.Time

// Options configures a live view.
type Options struct {
	Name        string
	Y0          dynamo.State
	T0, T1      float64
	Dt          float64
	Chunk       int // steps per frame
	StartFactor int
	X, Y        int // components drawn on the canvas
	Theme       string
	SaveDir     string
}

// Model advances a bounded-memory ABM integration a chunk per frame, resuming
// each chunk from the previous restart bundle.
type Model struct {
	opts   Options
	sys    dynamo.System
	f      dynamo.Func[float64]
	energy dynamo.Hamiltonian

	restart     *integrators.Restart[float64]
	t           float64
	seen        bool
	state       []float64
	evaluations int
	chunk       int

	trail      []analysis.Point
	energyHist []float64
	correction []float64

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	theme   int
	styles  Styles
	canvas  *Canvas
	running bool
	done    bool
	err     error
	notice  string
	saved   int
}

func NewModel(sys dynamo.System, opts Options) (*Model, error) {
	dim := sys.StateDim()
	if len(opts.Y0) != dim {
		return nil, fmt.Errorf("%w: y0 has %d entries, model needs %d", dynamo.ErrDimensionMismatch, len(opts.Y0), dim)
	}
	if !(opts.T1 > opts.T0) || opts.Dt <= 0 {
		return nil, dynamo.ErrInvalidSpan
	}
	if opts.Chunk < 1 {
		opts.Chunk = 20
	}
	if dim > 1 && (opts.X < 0 || opts.Y < 0 || opts.X >= dim || opts.Y >= dim) {
		return nil, analysis.ErrComponent
	}

	m := &Model{
		opts:    opts,
		sys:     sys,
		f:       dynamo.AsFunc(sys),
		chunk:   opts.Chunk,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		running: true,
		params:  make(map[string]float64),
	}
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		m.energy = h
	}
	if c, ok := sys.(dynamo.Configurable); ok {
		m.params = c.GetParams()
	}
	m.initialParams = make(map[string]float64, len(m.params))
	for k, v := range m.params {
		m.paramKeys = append(m.paramKeys, k)
		m.initialParams[k] = v
	}
	slices.Sort(m.paramKeys)

	m.theme = slices.Index(ThemeNames(), ThemeByName(opts.Theme).Name)
	m.styles = NewStyles(Themes[m.theme])
	m.reset()
	return m, nil
}

func (m *Model) T() float64                             { return m.t }
func (m *Model) State() []float64                       { return m.state }
func (m *Model) Evaluations() int                       { return m.evaluations }
func (m *Model) Restart() *integrators.Restart[float64] { return m.restart }
func (m *Model) Done() bool                             { return m.done }
func (m *Model) Err() error                             { return m.err }

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.resetParams()
			m.reset()
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			m.chunk = min(maxChunk, m.chunk*2)
		case "-", "_":
			m.chunk = max(1, m.chunk/2)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = NewStyles(Themes[m.theme])
		case "s":
			m.saveSnapshot()
		}
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.Advance()
		}
		return m, tick()
	}
	return m, nil
}

// Advance integrates one chunk. The first chunk bootstraps from Y0 and is at
// least four steps long so later chunks can resume from its bundle.
func (m *Model) Advance() {
	remaining := int(math.Round((m.opts.T1 - m.t) / m.opts.Dt))
	if remaining <= 0 {
		m.done = true
		return
	}

	opts := integrators.ABMOptions[float64]{
		SaveMemory:  true,
		StartFactor: m.opts.StartFactor,
		Observer:    m.observe,
	}

	var res *integrators.Result[float64]
	var err error
	steps := min(m.chunk, remaining)
	if m.restart == nil {
		steps = min(max(m.chunk, minHistory), remaining)
		span := dynamo.Span{Start: m.opts.T0, End: m.opts.T0 + float64(steps)*m.opts.Dt}
		res, err = integrators.ABM(m.f, span, m.opts.Y0, steps, opts)
	} else {
		res, err = integrators.Continue(m.f, *m.restart, steps, opts)
	}
	if err != nil {
		m.err = err
		m.running = false
		return
	}

	m.restart = res.Restart
	m.evaluations += res.Evaluations
	m.correction = appendCapped(m.correction, floats.Norm(res.Restart.Correction, 2), historyCapacity)
	if steps == remaining {
		m.done = true
	}
}

// observe records samples newer than the last one seen; a resumed chunk
// replays its history window first.
func (m *Model) observe(t float64, y []float64) {
	if m.seen && t <= m.t {
		return
	}
	m.seen = true
	m.t = t
	m.state = append(m.state[:0], y...)

	p := analysis.Point{X: t, Y: y[0]}
	if len(y) > 1 {
		p = analysis.Point{X: y[m.opts.X], Y: y[m.opts.Y]}
	}
	m.trail = appendCapped(m.trail, p, trailCapacity)
	if m.energy != nil {
		m.energyHist = appendCapped(m.energyHist, m.energy.Energy(y, t), historyCapacity)
	}
}

func appendCapped[E any](s []E, v E, capacity int) []E {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

// adjustParam scales the selected parameter. The bundle's derivatives and
// correction belong to the old parameter, so the next chunk recomputes them.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	tunable, ok := m.sys.(dynamo.Configurable)
	if !ok {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if val == 0 {
		val = 1e-3 * factor
	}
	if err := tunable.SetParam(key, val); err != nil {
		m.notice = err.Error()
		return
	}
	m.params[key] = val
	if m.restart != nil {
		m.restart.Derivatives = nil
		m.restart.Correction = nil
	}
}

func (m *Model) resetParams() {
	tunable, ok := m.sys.(dynamo.Configurable)
	if !ok {
		return
	}
	for k, v := range m.initialParams {
		if err := tunable.SetParam(k, v); err == nil {
			m.params[k] = v
		}
	}
}

func (m *Model) reset() {
	m.restart = nil
	m.t = m.opts.T0
	m.seen = false
	m.state = append(m.state[:0], m.opts.Y0...)
	m.evaluations = 0
	m.trail = m.trail[:0]
	m.energyHist = m.energyHist[:0]
	m.correction = m.correction[:0]
	m.done = false
	m.err = nil
	m.running = true
	m.notice = ""
}

func (m *Model) saveSnapshot() {
	m.draw()
	name := fmt.Sprintf("%s_%03d.svg", m.opts.Name, m.saved)
	path := filepath.Join(m.opts.SaveDir, name)
	if err := os.WriteFile(path, []byte(export.CanvasToSVG(m.canvas.Grid, 4)), 0644); err != nil {
		m.notice = err.Error()
		return
	}
	m.saved++
	m.notice = "saved " + path
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.Polyline(m.trail)
}

func (m *Model) status() string {
	switch {
	case m.err != nil:
		var stepErr *dynamo.StepError
		if errors.As(m.err, &stepErr) {
			return m.styles.Failed.Render(fmt.Sprintf("FAILED at t=%.4g", stepErr.Time))
		}
		return m.styles.Failed.Render("FAILED")
	case m.done:
		return m.styles.Running.Render("DONE")
	case !m.running:
		return m.styles.Paused.Render("PAUSED")
	}
	return m.styles.Running.Render("RUNNING")
}

func (m *Model) row(label, value string) string {
	return m.styles.Label.Render(label) + m.styles.Value.Render(value) + "\n"
}

func (m *Model) View() string {
	m.draw()
	st := m.styles

	var s strings.Builder
	s.WriteString(st.Title.Render(strings.ToUpper(m.opts.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	progress := (m.t - m.opts.T0) / (m.opts.T1 - m.opts.T0)
	s.WriteString(st.ProgressBar(progress, 30) + fmt.Sprintf(" %3.0f%%\n\n", 100*progress))
	s.WriteString(m.row("Time", fmt.Sprintf("%.4f", m.t)))
	s.WriteString(m.row("Step", fmt.Sprintf("%.3g", m.opts.Dt)))
	s.WriteString(m.row("Chunk", fmt.Sprintf("%d steps", m.chunk)))
	s.WriteString(m.row("Evals", fmt.Sprintf("%d", m.evaluations)))
	if m.restart != nil {
		s.WriteString(m.row("Window", fmt.Sprintf("n=%d..%d", m.restart.Index, m.restart.Index+len(m.restart.States)-1)))
	}
	if len(m.energyHist) > 1 {
		chart := asciigraph.Plot(m.energyHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("energy"))
		s.WriteString("\n" + st.Graph.Render(chart) + "\n")
	}
	if len(m.correction) > 0 {
		s.WriteString("\n" + m.row("|dcp|", Sparkline(m.correction, 30)))
	}
	if m.err != nil {
		s.WriteString(st.Failed.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(st.Muted.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %.4g", k, m.params[k])
		if i == m.selected {
			s.WriteString(st.Active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.Muted.Render(line) + "\n")
		}
	}
	if m.notice != "" {
		s.WriteString("\n" + st.Muted.Render(m.notice) + "\n")
	}
	s.WriteString(st.Muted.Render("\nSPC pause  r reset  q quit\ntab/↑↓ tune  +/- speed\nt theme  s save svg"))

	return lipgloss.JoinHorizontal(lipgloss.Top, st.Canvas.Render(m.canvas.String()), st.Panel.Render(s.String()))
}

// Run starts the live view on the alternate screen.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
