package model

// OrganizeRequest is a brain-dump organization request. Text may come from
// typing or from a voice transcription.
type OrganizeRequest struct {
	Text     string `json:"text"`
	TodayISO string `json:"todayISO"`
	Timezone string `json:"timezone,omitempty"`
}

// OrganizeTask is a single actionable task extracted from free text.
type OrganizeTask struct {
	Title      string  `json:"title"`
	DueDateISO string  `json:"dueDateISO,omitempty"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
	SourceSpan string  `json:"sourceSpan,omitempty"`
}

// OrganizeResponse is the structured result of an organize call.
type OrganizeResponse struct {
	Tasks       []OrganizeTask `json:"tasks"`
	Notes       []string       `json:"notes"`
	FollowUps   []string       `json:"followUps"`
	Suggestions []string       `json:"suggestions"`
}
