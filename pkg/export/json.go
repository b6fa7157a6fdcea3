package export

import (
	"encoding/json"
	"io"

	"github.com/kilianp07/resplan/core/model"
	"github.com/kilianp07/resplan/core/planner"
)

// Document is the JSON form of an outcome. It is also the payload published
// over MQTT.
type Document struct {
	RunID      string             `json:"run_id"`
	Status     string             `json:"status"`
	Objective  int64              `json:"objective"`
	BestBound  int64              `json:"best_bound"`
	Window     Window             `json:"window"`
	Resources  []ResourceDocument `json:"resources"`
	Unassigned []string           `json:"unassigned"`
	Total      int                `json:"total"`
	Summary    SummaryDocument    `json:"summary"`
}

// Window is the span covered by the projects. Horizon counts the days from
// Start to End.
type Window struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Horizon int    `json:"horizon_days"`
}

// ResourceDocument lists the records of one resource in schedule order.
type ResourceDocument struct {
	Name        string               `json:"name"`
	Capacity    int                  `json:"capacity"`
	Assignments []AssignmentDocument `json:"assignments"`
}

// AssignmentDocument is one schedule record. StartDay is null for reinjected
// on-hold records.
type AssignmentDocument struct {
	ProjectID  string          `json:"project_id"`
	Label      string          `json:"label"`
	StartDay   *int            `json:"start_day"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Days       int             `json:"days"`
	Reinjected bool            `json:"reinjected,omitempty"`
	Phases     []PhaseDocument `json:"phases,omitempty"`
}

// PhaseDocument is a named project phase with its date range.
type PhaseDocument struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// SummaryDocument carries the run counts and per-resource utilization.
type SummaryDocument struct {
	Scheduled   int                `json:"scheduled"`
	Preassigned int                `json:"preassigned"`
	OnHold      int                `json:"on_hold"`
	Unassigned  int                `json:"unassigned"`
	Utilization map[string]float64 `json:"utilization"`
	Mean        float64            `json:"utilization_mean"`
	StdDev      float64            `json:"utilization_stddev"`
}

// NewDocument converts out. Reinjected on-hold records have a null start day.
func NewDocument(out *planner.Outcome) Document {
	doc := Document{
		RunID:     out.RunID,
		Status:    out.Status.String(),
		Objective: out.Objective,
		BestBound: out.BestBound,
		Window: Window{
			Start:   out.Timeline.Min.Format(model.DateLayout),
			End:     out.Timeline.Max.Format(model.DateLayout),
			Horizon: out.Timeline.Horizon,
		},
		Resources:  []ResourceDocument{},
		Unassigned: append([]string{}, out.Schedule.Unassigned...),
		Total:      out.Schedule.Total,
		Summary: SummaryDocument{
			Scheduled:   out.Summary.Scheduled,
			Preassigned: out.Summary.Preassigned,
			OnHold:      out.Summary.OnHold,
			Unassigned:  out.Summary.Unassigned,
			Utilization: out.Summary.Utilization,
			Mean:        out.Summary.MeanUtilization,
			StdDev:      out.Summary.StdDevUtilization,
		},
	}
	for _, rs := range out.Schedule.Resources {
		rd := ResourceDocument{Name: rs.Resource, Capacity: rs.Capacity}
		for _, a := range rs.Assignments {
			ad := AssignmentDocument{
				ProjectID:  a.ProjectID,
				Label:      string(a.Label),
				StartDate:  a.StartDate.Format(model.DateLayout),
				EndDate:    a.EndDate.Format(model.DateLayout),
				Days:       a.Days,
				Reinjected: a.Reinjected,
			}
			if !a.Reinjected {
				day := a.StartDay
				ad.StartDay = &day
			}
			for _, ph := range a.Phases {
				ad.Phases = append(ad.Phases, PhaseDocument{
					Name: ph.Name,
					From: ph.From.Format(model.DateLayout),
					To:   ph.To.Format(model.DateLayout),
				})
			}
			rd.Assignments = append(rd.Assignments, ad)
		}
		doc.Resources = append(doc.Resources, rd)
	}
	return doc
}

// WriteJSON writes the outcome as an indented JSON document.
func WriteJSON(w io.Writer, out *planner.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(out))
}

// MarshalJSON returns the compact JSON document of out.
func MarshalJSON(out *planner.Outcome) ([]byte, error) {
	return json.Marshal(NewDocument(out))
}
