package model

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestProjectDuration(t *testing.T) {
	p := Project{ID: "P1", StartDate: date("2025-01-10"), EndDate: date("2025-01-15")}
	if d := p.Duration(); d != 5 {
		t.Fatalf("expected 5 got %d", d)
	}
	same := Project{ID: "P2", StartDate: date("2025-03-01"), EndDate: date("2025-03-01")}
	if d := same.Duration(); d != 0 {
		t.Fatalf("expected 0 got %d", d)
	}
}

func TestProjectValidate(t *testing.T) {
	ok := Project{ID: "P1", StartDate: date("2025-01-01"), EndDate: date("2025-01-05")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inverted := Project{ID: "P2", StartDate: date("2025-01-05"), EndDate: date("2025-01-01")}
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("expected ErrInvalidProject got %v", err)
	}
	if err := (Project{StartDate: date("2025-01-01"), EndDate: date("2025-01-01")}).Validate(); !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("expected error for empty id got %v", err)
	}
	badPhase := ok
	badPhase.Phases = []Phase{{Name: "design", From: date("2025-01-03"), To: date("2025-01-02")}}
	if err := badPhase.Validate(); !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("expected phase error got %v", err)
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]bool{
		"On Hold":     true,
		"  on hold  ": true,
		"ON HOLD":     true,
		"onhold":      false,
		"":            false,
		"Active":      false,
		"on hold!":    false,
	}
	for status, want := range cases {
		if got := (ActiveProject{ProjectID: "x", Status: status}).OnHold(); got != want {
			t.Errorf("status %q: expected %v got %v", status, want, got)
		}
	}
}

func TestResourceValidate(t *testing.T) {
	if err := (Resource{Name: "R1", Capacity: 1}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Resource{Name: "R1", Capacity: 0}).Validate(); !errors.Is(err, ErrInvalidResource) {
		t.Fatalf("expected ErrInvalidResource got %v", err)
	}
	if err := (Resource{Capacity: 2}).Validate(); !errors.Is(err, ErrInvalidResource) {
		t.Fatalf("expected ErrInvalidResource got %v", err)
	}
}

func TestDatasetValidateJoinsErrors(t *testing.T) {
	ds := Dataset{
		Projects: []Project{
			{ID: "P1", StartDate: date("2025-01-01"), EndDate: date("2025-01-02")},
			{ID: "P1", StartDate: date("2025-01-01"), EndDate: date("2025-01-02")},
			{ID: "P3", StartDate: date("2025-01-05"), EndDate: date("2025-01-02")},
		},
		Resources: []Resource{{Name: "R1", Capacity: 1}, {Name: "R1", Capacity: 1}, {Name: "R2", Capacity: -1}},
	}
	err := ds.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, target := range []error{ErrDuplicateID, ErrInvalidProject, ErrInvalidResource} {
		if !errors.Is(err, target) {
			t.Errorf("expected %v in %v", target, err)
		}
	}
}

func TestDaysBetweenIgnoresClock(t *testing.T) {
	a := time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 1, 3, 1, 0, 0, 0, time.UTC)
	if d := DaysBetween(a, b); d != 2 {
		t.Fatalf("expected 2 got %d", d)
	}
	if got := AddDays(a, 3); !got.Equal(date("2025-01-04")) {
		t.Fatalf("unexpected date %v", got)
	}
}
