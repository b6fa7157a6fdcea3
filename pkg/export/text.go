package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/planner"
)

// WriteText writes the resource → projects report.
func WriteText(w io.Writer, out *planner.Outcome) error {
	bw := bufio.NewWriter(w)
	if !out.Found() {
		fmt.Fprintln(bw, "No solution found.")
		return bw.Flush()
	}
	for _, rs := range out.Schedule.Resources {
		fmt.Fprintf(bw, "\nResource: %s (%d project(s))\n", rs.Resource, len(rs.Assignments))
		for _, a := range rs.Assignments {
			fmt.Fprintf(bw, "  [%s] Project %s → %s to %s\n", a.Label, a.ProjectID,
				a.StartDate.Format(model.DateLayout), a.EndDate.Format(model.DateLayout))
		}
	}
	fmt.Fprintf(bw, "\nTotal projects scheduled or pre-assigned: %d\n", out.Schedule.Total)
	return bw.Flush()
}
