// Package viz renders a running integration in the terminal.
//
// The live view advances a bounded-memory ABM run one chunk per frame and
// resumes every chunk from the previous restart bundle, so memory stays flat
// however long it runs. The phase portrait is drawn on a Braille [Canvas].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state and parameters
//	Tab   - Select parameter, Up/Down to tune it by 5%
//	+/-   - Double or halve the steps per frame
//	T     - Cycle color themes
//	S     - Save the canvas as SVG
package viz
