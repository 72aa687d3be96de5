package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CalendarClient = (*CalendarAdapter)(nil)

// primaryCalendar is the user's main calendar id.
const primaryCalendar = "primary"

// CalendarAdapter implements the CalendarClient port on the Google
// Calendar API.
type CalendarAdapter struct {
	svc *calendar.Service
}

// NewCalendarAdapter creates a CalendarAdapter.
func NewCalendarAdapter(svc *calendar.Service) *CalendarAdapter {
	return &CalendarAdapter{svc: svc}
}

// ListEvents returns events overlapping [timeMin, timeMax] from the
// primary calendar, with recurring events expanded to concrete instances,
// ordered by start time.
func (c *CalendarAdapter) ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) ([]model.CalendarItem, error) {
	call := c.svc.Events.List(primaryCalendar).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	items := make([]model.CalendarItem, 0, len(resp.Items))
	for _, ev := range resp.Items {
		item, ok := mapEvent(ev)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// mapEvent normalizes a provider event. All-day events carry an inclusive
// start date and an exclusive end date; the exclusive end converts to the
// inclusive end of the previous day, otherwise the item would vanish from
// its last calendar day.
func mapEvent(ev *calendar.Event) (model.CalendarItem, bool) {
	if ev == nil || ev.Start == nil || ev.End == nil {
		return model.CalendarItem{}, false
	}

	var start, end time.Time
	if ev.Start.Date != "" {
		var err error
		if start, err = time.ParseInLocation("2006-01-02", ev.Start.Date, time.UTC); err != nil {
			return model.CalendarItem{}, false
		}
		endDate, err := time.ParseInLocation("2006-01-02", ev.End.Date, time.UTC)
		if err != nil {
			return model.CalendarItem{}, false
		}
		end = model.EndOfDay(endDate.AddDate(0, 0, -1))
	} else {
		var err error
		if start, err = time.Parse(time.RFC3339, ev.Start.DateTime); err != nil {
			return model.CalendarItem{}, false
		}
		if end, err = time.Parse(time.RFC3339, ev.End.DateTime); err != nil {
			return model.CalendarItem{}, false
		}
	}

	return model.CalendarItem{
		ID:     ev.Id,
		Title:  ev.Summary,
		Start:  start,
		End:    end,
		Source: model.SourceEvent,
		Status: model.StatusTodo,
	}, true
}
