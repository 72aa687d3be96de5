package driven

import (
	"context"

	"braindump/internal/domain/model"
)

// Organizer defines the driven port for the AI text-organization
// collaborator: one external call turning free text into structured tasks
// and notes. Consumed only via its request/response shape.
type Organizer interface {
	Organize(ctx context.Context, req model.OrganizeRequest) (model.OrganizeResponse, error)
}

// Transcriber defines the driven port for the audio transcription
// collaborator: opaque audio bytes in, text out.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
