// Package export writes integration results as CSV, JSON, SVG or a terminal table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/cmplx"
	"strconv"

	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/integrators"
)

// Meta describes the run that produced a result.
type Meta struct {
	Model       string             `json:"model"`
	Method      string             `json:"method"`
	T0          float64            `json:"t0"`
	T1          float64            `json:"t1"`
	Steps       int                `json:"steps"`
	Evaluations int                `json:"evaluations"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Data is the JSON document for one run. States are sample-major.
type Data struct {
	Meta
	Times   []float64   `json:"times"`
	States  [][]float64 `json:"states,omitempty"`
	Complex [][]Complex `json:"complex_states,omitempty"`
	Restart *Restart    `json:"restart,omitempty"`
}

// Complex is a JSON-friendly complex number.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// Restart is the JSON view of an ABM restart bundle.
type Restart struct {
	Origin float64   `json:"origin"`
	Step   float64   `json:"step"`
	Index  int       `json:"index"`
	Times  []float64 `json:"times"`
}

func NewData[T dynamo.Scalar](meta Meta, res *integrators.Result[T]) Data {
	meta.Evaluations = res.Evaluations
	d := Data{Meta: meta, Times: res.T}

	for n := range res.T {
		row := res.Sample(n)
		switch r := any(row).(type) {
		case []float64:
			d.States = append(d.States, r)
		case []complex128:
			c := make([]Complex, len(r))
			for i, v := range r {
				c[i] = Complex{Re: real(v), Im: imag(v)}
			}
			d.Complex = append(d.Complex, c)
		}
	}

	if res.Restart != nil {
		d.Restart = &Restart{
			Origin: res.Restart.Origin,
			Step:   res.Restart.Step,
			Index:  res.Restart.Index,
			Times:  res.Restart.Times(),
		}
	}
	return d
}

func WriteJSON[T dynamo.Scalar](w io.Writer, meta Meta, res *integrators.Result[T]) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewData(meta, res))
}

// Header returns the CSV column names: t, then y0..yN, or re/im pairs for
// complex states.
func Header[T dynamo.Scalar](res *integrators.Result[T]) []string {
	header := []string{"t"}
	var zero T
	_, isComplex := any(zero).(complex128)
	for i := 0; i < res.Dim(); i++ {
		if isComplex {
			header = append(header, fmt.Sprintf("re_y%d", i), fmt.Sprintf("im_y%d", i))
		} else {
			header = append(header, fmt.Sprintf("y%d", i))
		}
	}
	return header
}

// Row formats sample n with full float64 precision.
func Row[T dynamo.Scalar](res *integrators.Result[T], n int) []string {
	row := []string{formatFloat(res.T[n])}
	for i := 0; i < res.Dim(); i++ {
		switch v := any(res.Y[i][n]).(type) {
		case float64:
			row = append(row, formatFloat(v))
		case complex128:
			row = append(row, formatFloat(real(v)), formatFloat(imag(v)))
		}
	}
	return row
}

func WriteCSV[T dynamo.Scalar](w io.Writer, res *integrators.Result[T]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(res)); err != nil {
		return err
	}
	for n := range res.T {
		if err := cw.Write(Row(res, n)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Modulus returns |y_i| per sample, used to plot complex components.
func Modulus(ys []complex128) []float64 {
	out := make([]float64, len(ys))
	for n, v := range ys {
		out[n] = cmplx.Abs(v)
	}
	return out
}
