package application

import "braindump/internal/domain/model"

// Dedupe removes calendar events that are mere mirrors of task-list items
// already present in the combined list. The match key is (date-truncated
// start, lower-cased trimmed title); any event-sourced item whose key is
// claimed by a task-sourced item is dropped. Task-sourced items are never
// dropped, even when two of them share a key.
//
// This is a content-similarity heuristic, not an identity match: the
// provider exposes no stable cross-reference id between the two endpoints.
// False positives (distinct items wrongly merged) and false negatives
// (the same item missed after a title edit) are accepted approximations.
func Dedupe(items []model.CalendarItem) []model.CalendarItem {
	taskKeys := make(map[string]struct{})
	for _, item := range items {
		if item.Source == model.SourceTask {
			taskKeys[item.DedupKey()] = struct{}{}
		}
	}

	out := make([]model.CalendarItem, 0, len(items))
	for _, item := range items {
		if item.Source == model.SourceEvent {
			if _, shadowed := taskKeys[item.DedupKey()]; shadowed {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}
