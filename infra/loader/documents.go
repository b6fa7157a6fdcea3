package loader

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/resplan/core/model"
)

// projectsDoc mirrors projects.json.
type projectsDoc struct {
	Projects []projectDTO `json:"projects" yaml:"projects"`
}

type projectDTO struct {
	ID        flexID     `json:"project_id" yaml:"project_id"`
	StartDate flexDate   `json:"start_date" yaml:"start_date"`
	EndDate   flexDate   `json:"end_date" yaml:"end_date"`
	Phases    []phaseDTO `json:"phases" yaml:"phases"`
}

type phaseDTO struct {
	Name string   `json:"name" yaml:"name"`
	From flexDate `json:"from" yaml:"from"`
	To   flexDate `json:"to" yaml:"to"`
}

// resourcesDoc mirrors resources.json.
type resourcesDoc struct {
	Resources []resourceDTO `json:"resources" yaml:"resources"`
}

type resourceDTO struct {
	Name           string            `json:"name" yaml:"name"`
	Capacity       *int              `json:"project_capacity" yaml:"project_capacity"`
	ActiveProjects []activeDTO       `json:"active_projects" yaml:"active_projects"`
	Availability   map[string]string `json:"availability" yaml:"availability"`
}

type activeDTO struct {
	ProjectID flexID `json:"project_id" yaml:"project_id"`
	Status    string `json:"status" yaml:"status"`
}

// holidaysDoc mirrors holidays.json.
type holidaysDoc struct {
	Holidays []holidayDTO `json:"holidays" yaml:"holidays"`
}

type holidayDTO struct {
	Date flexDate `json:"date" yaml:"date"`
	Name string   `json:"name" yaml:"name"`
}

// flexID accepts numeric and string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("project id must be a string or a number: %s", b)
	}
	*f = flexID(n.String())
	return nil
}

func (f *flexID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: project id must be a scalar", n.Line)
	}
	*f = flexID(n.Value)
	return nil
}

var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// parseDate reads a calendar date, accepting ISO date-times truncated to the
// day.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

type flexDate time.Time

func (d *flexDate) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date must be a string: %s", b)
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	*d = flexDate(t)
	return nil
}

func (d *flexDate) UnmarshalYAML(n *yaml.Node) error {
	t, err := parseDate(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = flexDate(t)
	return nil
}

func (d flexDate) time() time.Time { return time.Time(d) }

func (p projectDTO) toModel() model.Project {
	proj := model.Project{
		ID:        string(p.ID),
		StartDate: p.StartDate.time(),
		EndDate:   p.EndDate.time(),
	}
	for _, ph := range p.Phases {
		proj.Phases = append(proj.Phases, model.Phase{Name: ph.Name, From: ph.From.time(), To: ph.To.time()})
	}
	return proj
}

func (r resourceDTO) toModel() (model.Resource, error) {
	res := model.Resource{
		Name:         r.Name,
		Capacity:     model.DefaultCapacity,
		Availability: make(map[time.Time]string, len(r.Availability)),
	}
	if r.Capacity != nil {
		res.Capacity = *r.Capacity
	}
	for _, a := range r.ActiveProjects {
		res.ActiveProjects = append(res.ActiveProjects, model.ActiveProject{ProjectID: string(a.ProjectID), Status: a.Status})
	}
	for k, status := range r.Availability {
		d, err := parseDate(k)
		if err != nil {
			return model.Resource{}, fmt.Errorf("resource %s availability: %w", r.Name, err)
		}
		res.Availability[d] = status
	}
	return res, nil
}
