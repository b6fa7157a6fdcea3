// Package export renders a planning outcome as a text report, JSON, CSV or
// an SVG Gantt chart.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kilianp07/resplan/core/planner"
)

// ErrUnknownFormat is returned by Write for an unsupported format name.
var ErrUnknownFormat = errors.New("export: unknown format")

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "csv", "svg"}

// Write renders out in the named format.
func Write(w io.Writer, format string, out *planner.Outcome) error {
	switch strings.ToLower(format) {
	case "", "text":
		return WriteText(w, out)
	case "json":
		return WriteJSON(w, out)
	case "csv":
		return WriteCSV(w, out)
	case "svg":
		return WriteSVG(w, out)
	default:
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}
