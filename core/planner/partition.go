package planner

import (
	"sort"

	"github.com/kilianp07/resplan/core/logger"
	"github.com/kilianp07/resplan/core/model"
)

// Class is the scheduling category of a project in a run.
type Class int

const (
	// ClassFree projects are placed by the solver.
	ClassFree Class = iota
	// ClassFixed projects are preassigned by a non on-hold reference.
	ClassFixed
	// ClassOnHold projects are suspended and kept out of the model.
	ClassOnHold
)

func (c Class) String() string {
	switch c {
	case ClassFixed:
		return "fixed"
	case ClassOnHold:
		return "on-hold"
	default:
		return "free"
	}
}

// Reference is a resolved active-project entry of a resource.
type Reference struct {
	ProjectID string
	OnHold    bool
}

// Partition is the fixed / on-hold / free classification of every project,
// computed once per run from the resource reference lists.
type Partition struct {
	classes map[string]Class
	order   []string
	// refs holds the resolved references of each resource, in input order.
	refs [][]Reference
	// Dropped lists references to unknown projects, as "resource/project".
	Dropped []string
}

// Classify resolves every active-project reference and assigns each project to
// exactly one class. A project referenced with a non on-hold status anywhere is
// fixed, even if another resource lists it as on hold.
func Classify(ds model.Dataset, log logger.Logger) Partition {
	known := ds.ProjectIndex()
	p := Partition{
		classes: make(map[string]Class, len(ds.Projects)),
		order:   make([]string, 0, len(ds.Projects)),
		refs:    make([][]Reference, len(ds.Resources)),
	}
	for _, proj := range ds.Projects {
		p.classes[proj.ID] = ClassFree
		p.order = append(p.order, proj.ID)
	}
	onHoldOnly := make(map[string]bool)
	for r, res := range ds.Resources {
		for _, ref := range res.ActiveProjects {
			if _, ok := known[ref.ProjectID]; !ok {
				log.Warnf("resource %s references unknown project %s; reference dropped", res.Name, ref.ProjectID)
				p.Dropped = append(p.Dropped, res.Name+"/"+ref.ProjectID)
				continue
			}
			onHold := ref.OnHold()
			p.refs[r] = append(p.refs[r], Reference{ProjectID: ref.ProjectID, OnHold: onHold})
			if onHold {
				if p.classes[ref.ProjectID] == ClassFree {
					onHoldOnly[ref.ProjectID] = true
				}
				continue
			}
			p.classes[ref.ProjectID] = ClassFixed
			delete(onHoldOnly, ref.ProjectID)
		}
	}
	for id := range onHoldOnly {
		p.classes[id] = ClassOnHold
	}
	for id, c := range p.classes {
		if c == ClassFixed && p.listedOnHold(id) {
			log.Warnf("project %s is preassigned and also listed on hold; treated as preassigned", id)
		}
	}
	log.Debugw("projects classified", map[string]any{
		"fixed":   p.IDs(ClassFixed),
		"on_hold": p.IDs(ClassOnHold),
		"free":    len(p.IDs(ClassFree)),
	})
	return p
}

func (p Partition) listedOnHold(id string) bool {
	for _, refs := range p.refs {
		for _, ref := range refs {
			if ref.ProjectID == id && ref.OnHold {
				return true
			}
		}
	}
	return false
}

// Class returns the class of a project id. Unknown ids are reported as free.
func (p Partition) Class(id string) Class {
	return p.classes[id]
}

// IDs returns the project ids of class c in input order.
func (p Partition) IDs(c Class) []string {
	var ids []string
	for _, id := range p.order {
		if p.classes[id] == c {
			ids = append(ids, id)
		}
	}
	return ids
}

// Sorted returns the project ids of class c in lexical order.
func (p Partition) Sorted(c Class) []string {
	ids := p.IDs(c)
	sort.Strings(ids)
	return ids
}

// References returns the resolved references of resource r.
func (p Partition) References(r int) []Reference {
	if r < 0 || r >= len(p.refs) {
		return nil
	}
	return p.refs[r]
}

// Lookup returns the first reference of project id held by resource r.
func (p Partition) Lookup(r int, id string) (Reference, bool) {
	for _, ref := range p.References(r) {
		if ref.ProjectID == id {
			return ref, true
		}
	}
	return Reference{}, false
}
