package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/resplan/core/model"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewComputesWindow(t *testing.T) {
	projects := []model.Project{
		{ID: "P1", StartDate: day("2025-01-01"), EndDate: day("2025-01-05")},
		{ID: "P2", StartDate: day("2025-02-01"), EndDate: day("2025-02-10")},
		{ID: "P3", StartDate: day("2025-01-10"), EndDate: day("2025-01-15")},
	}
	tl, err := New(projects)
	require.NoError(t, err)
	assert.Equal(t, day("2025-01-01"), tl.Min)
	assert.Equal(t, day("2025-02-10"), tl.Max)
	assert.Equal(t, 40, tl.Horizon)
	assert.Equal(t, 9, tl.Offset(day("2025-01-10")))
	assert.Equal(t, day("2025-01-15"), tl.Date(14))
	assert.True(t, tl.Contains(40))
	assert.False(t, tl.Contains(41))
	assert.False(t, tl.Contains(-1))
}

func TestNewEmpty(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrNoProjects) {
		t.Fatalf("expected ErrNoProjects got %v", err)
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	projects := []model.Project{
		{ID: "A", StartDate: day("2024-02-20"), EndDate: day("2024-03-05")},
		{ID: "B", StartDate: day("2024-10-25"), EndDate: day("2024-11-04")},
	}
	tl, err := New(projects)
	require.NoError(t, err)
	for off := 0; off <= tl.Horizon; off++ {
		if got := tl.Offset(tl.Date(off)); got != off {
			t.Fatalf("offset %d round-tripped to %d", off, got)
		}
	}
}
