package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/planner"
)

// WriteCSV writes one row per schedule record.
func WriteCSV(w io.Writer, out *planner.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"resource", "project_id", "label", "start_date", "end_date", "days"}); err != nil {
		return err
	}
	for _, rs := range out.Schedule.Resources {
		for _, a := range rs.Assignments {
			rec := []string{
				rs.Resource,
				a.ProjectID,
				string(a.Label),
				a.StartDate.Format(model.DateLayout),
				a.EndDate.Format(model.DateLayout),
				strconv.Itoa(a.Days),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
