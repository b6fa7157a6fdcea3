package export

import (
	"fmt"
	"html"
	"io"
	"time"

	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/planner"
)

const (
	svgRowHeight   = 22
	svgLabelWidth  = 140
	svgDayWidth    = 14
	svgHeaderSpace = 40
	svgLegendSpace = 90
)

var labelColors = map[planner.Label]string{
	planner.LabelSolver:      "#1f77b4",
	planner.LabelPreassigned: "#2ca02c",
	planner.LabelOnHold:      "#d62728",
}

// WriteSVG draws one bar per schedule record, grouped by resource, coloured
// by label.
func WriteSVG(w io.Writer, out *planner.Outcome) error {
	ew := &errWriter{w: w}
	lo, hi := chartRange(out)
	days := model.DaysBetween(lo, hi) + 1
	rows := out.Schedule.Total
	width := svgLabelWidth + days*svgDayWidth + 20
	height := svgHeaderSpace + rows*svgRowHeight + svgLegendSpace

	ew.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family="sans-serif" font-size="11">`+"\n", width, height)
	ew.printf(`<text x="%d" y="20" font-size="14" font-weight="bold">Project Assignment Gantt Chart</text>`+"\n", svgLabelWidth)
	if !out.Found() {
		ew.printf(`<text x="%d" y="%d">No solution found.</text>`+"\n", svgLabelWidth, svgHeaderSpace+svgRowHeight)
	}

	for d := 0; d < days; d += 7 {
		x := svgLabelWidth + d*svgDayWidth
		ew.printf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#ddd"/>`+"\n", x, svgHeaderSpace-5, x, svgHeaderSpace+rows*svgRowHeight)
		ew.printf(`<text x="%d" y="%d" fill="#555">%s</text>`+"\n", x+2, svgHeaderSpace-8, model.AddDays(lo, d).Format(model.DateLayout))
	}

	y := svgHeaderSpace
	for _, rs := range out.Schedule.Resources {
		for _, a := range rs.Assignments {
			x := svgLabelWidth + model.DaysBetween(lo, a.StartDate)*svgDayWidth
			span := model.DaysBetween(a.StartDate, a.EndDate)
			if span < 1 {
				span = 1
			}
			ew.printf(`<text x="4" y="%d">%s</text>`+"\n", y+15, html.EscapeString(rs.Resource))
			ew.printf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"><title>%s</title></rect>`+"\n",
				x, y+3, span*svgDayWidth, svgRowHeight-6, labelColors[a.Label], html.EscapeString(string(a.Label)))
			ew.printf(`<text x="%d" y="%d" fill="#fff">Proj %s</text>`+"\n", x+3, y+15, html.EscapeString(a.ProjectID))
			y += svgRowHeight
		}
	}

	y += 20
	ew.printf(`<text x="%d" y="%d" font-weight="bold">Assignment Type</text>`+"\n", svgLabelWidth, y)
	for _, l := range planner.Labels {
		y += 18
		ew.printf(`<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`+"\n", svgLabelWidth, y-10, labelColors[l])
		ew.printf(`<text x="%d" y="%d">%s</text>`+"\n", svgLabelWidth+18, y, html.EscapeString(string(l)))
	}
	ew.printf("</svg>\n")
	return ew.err
}

// chartRange spans every record, falling back to the run window.
func chartRange(out *planner.Outcome) (time.Time, time.Time) {
	lo, hi := out.Timeline.Min, out.Timeline.Max
	for _, rs := range out.Schedule.Resources {
		for _, a := range rs.Assignments {
			if lo.IsZero() || a.StartDate.Before(lo) {
				lo = a.StartDate
			}
			if a.EndDate.After(hi) {
				hi = a.EndDate
			}
		}
	}
	if hi.Before(lo) {
		hi = lo
	}
	return lo, hi
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
