package ports

import (
	"context"
	"encoding/json"
	"time"

	"CardioSense/internal/domain"
)

// PredictionClient is the typed gateway to the remote classifier service.
// Invoke and Deliver return raw response bodies; shapes are a normalizer
// concern and never leak past it.
type PredictionClient interface {
	Invoke(ctx context.Context, sel domain.ModelSelection, input domain.PatientInput) (json.RawMessage, error)
	Deliver(ctx context.Context, req domain.DeliveryRequest) (json.RawMessage, error)
	Health(ctx context.Context) error
}

// HistoryRepository persists prediction audit entries. Implementations must
// tolerate being absent (nil-safe wiring in the orchestrator).
type HistoryRepository interface {
	SaveEntry(ctx context.Context, entry domain.HistoryEntry) error
	RecentEntries(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// Probe drives a recurring background job, e.g. the backend keep-warm ping.
type Probe interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
