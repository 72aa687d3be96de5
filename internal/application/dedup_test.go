package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"braindump/internal/domain/model"
)

func item(id, title string, source model.ItemSource, start time.Time) model.CalendarItem {
	return model.CalendarItem{
		ID:     id,
		Title:  title,
		Start:  start,
		End:    start.Add(time.Hour),
		Source: source,
	}
}

func TestDedupe_EventMirrorOfTaskRemoved(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	items := []model.CalendarItem{
		item("e1", "Call mom", model.SourceEvent, day.Add(9*time.Hour)),
		item("t1", "Call mom", model.SourceTask, day),
	}

	got := Dedupe(items)

	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, model.SourceTask, got[0].Source)
}

func TestDedupe_TitleNormalization(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	items := []model.CalendarItem{
		item("e1", "  CALL MOM ", model.SourceEvent, day),
		item("t1", "call mom", model.SourceTask, day),
	}

	got := Dedupe(items)

	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestDedupe_TasksNeverDedupAgainstEachOther(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	items := []model.CalendarItem{
		item("t1", "Call mom", model.SourceTask, day),
		item("t2", "Call mom", model.SourceTask, day),
	}

	got := Dedupe(items)

	assert.Len(t, got, 2)
}

func TestDedupe_DifferentDaysKept(t *testing.T) {
	items := []model.CalendarItem{
		item("e1", "Call mom", model.SourceEvent, time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)),
		item("t1", "Call mom", model.SourceTask, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
	}

	got := Dedupe(items)

	assert.Len(t, got, 2, "same title on different days is not a mirror")
}

func TestDedupe_EventsWithoutTaskTwinKept(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	items := []model.CalendarItem{
		item("e1", "Standup", model.SourceEvent, day),
		item("e2", "Standup", model.SourceEvent, day),
	}

	got := Dedupe(items)

	assert.Len(t, got, 2, "events only dedup against tasks, not each other")
}
