// Package usecase holds the prediction orchestrator: the single-flight state
// machine between form input, the gateway, the normalizer and the report
// surface.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"CardioSense/internal/delivery"
	"CardioSense/internal/domain"
	"CardioSense/internal/infrastructure/gateway"
	"CardioSense/internal/normalize"
	"CardioSense/internal/ports"
	"CardioSense/internal/report"
)

// State is the orchestrator lifecycle position.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

var (
	// ErrSubmissionInFlight rejects a submit issued while one is running.
	// Concurrent submissions are ignored, never queued.
	ErrSubmissionInFlight = errors.New("a prediction request is already in flight")
	// ErrDeliveryInFlight rejects a second concurrent delivery attempt.
	ErrDeliveryInFlight = errors.New("a delivery request is already in flight")
	// ErrNoResult is returned when an export or delivery is requested
	// without a successful prediction to derive it from.
	ErrNoResult = errors.New("no prediction result available")
)

// User-facing failure messages. Raw transport errors never reach the caller
// unclassified.
const (
	timeoutMessage = "The prediction server may be waking up. Please retry in a moment."
	genericFailure = "Failed to get predictions. Please try again."
	shapeFailure   = "Received an unexpected response from the prediction service. Please try again."
)

// Deps wires the orchestrator's collaborators. History may be nil.
type Deps struct {
	Client      ports.PredictionClient
	Normalizer  *normalize.Normalizer
	Coordinator *delivery.Coordinator
	History     ports.HistoryRepository
	Logger      *slog.Logger
	Now         func() time.Time
}

// Orchestrator owns the single-flight request lifecycle
// Idle -> Submitting -> Succeeded/Failed -> Idle. It is the single writer of
// result and error state.
type Orchestrator struct {
	client      ports.PredictionClient
	normalizer  *normalize.Normalizer
	coordinator *delivery.Coordinator
	history     ports.HistoryRepository
	logger      *slog.Logger
	now         func() time.Time

	pdf  report.PDFRenderer
	xlsx report.XLSXRenderer

	mu            sync.Mutex
	state         State
	activeAttempt string
	deliveryBusy  bool

	patient   domain.PatientInput
	selection domain.ModelSelection
	personal  domain.PersonalDetails
	result    domain.PredictionResult
	failure   string
}

// NewOrchestrator builds an orchestrator in the Idle state.
func NewOrchestrator(deps Deps) *Orchestrator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = normalize.New(domain.DefaultRiskThresholds)
	}
	return &Orchestrator{
		client:      deps.Client,
		normalizer:  normalizer,
		coordinator: deps.Coordinator,
		history:     deps.History,
		logger:      deps.Logger,
		now:         now,
	}
}

// State returns the current lifecycle position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the Succeeded payload, if any.
func (o *Orchestrator) Result() (domain.PredictionResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateSucceeded {
		return domain.PredictionResult{}, false
	}
	return o.result, true
}

// FailureMessage returns the classified message of the last failure.
func (o *Orchestrator) FailureMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failure
}

// Submit runs one prediction request end to end: validate, dispatch the
// selected gateway operation, normalize, and settle into Succeeded or Failed.
// It blocks for the duration of the network call; a concurrent Submit while
// one is in flight returns ErrSubmissionInFlight without touching the
// gateway. A Reset issued mid-flight discards the eventual response.
func (o *Orchestrator) Submit(ctx context.Context, input domain.PatientInput, sel domain.ModelSelection, personal domain.PersonalDetails) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if !sel.Valid() {
		return fmt.Errorf("unknown model selection %q", sel)
	}

	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return ErrSubmissionInFlight
	}
	attemptID := uuid.NewString()
	o.state = StateSubmitting
	o.activeAttempt = attemptID
	o.patient = input
	o.selection = sel
	o.personal = personal
	o.result = domain.PredictionResult{}
	o.failure = ""
	o.mu.Unlock()

	o.debug("submitting prediction", "attempt", attemptID, "selection", string(sel))

	raw, err := o.client.Invoke(ctx, sel, input)

	var result domain.PredictionResult
	if err == nil {
		result, err = o.normalizer.Normalize(raw, sel)
	}

	o.mu.Lock()
	if o.activeAttempt != attemptID {
		// A reset or newer submission superseded this attempt; its
		// response must not overwrite the current state.
		o.mu.Unlock()
		o.debug("discarding stale prediction response", "attempt", attemptID)
		return nil
	}

	if err != nil {
		o.state = StateFailed
		o.failure = classifyFailure(err)
		o.mu.Unlock()
		o.debug("prediction failed", "attempt", attemptID, "error", err)
		return nil
	}

	o.state = StateSucceeded
	o.result = result
	o.mu.Unlock()
	o.debug("prediction succeeded", "attempt", attemptID, "records", len(result.Records))

	o.recordHistory(ctx, attemptID, result, false)
	return nil
}

// classifyFailure converts any gateway or normalization error into the one
// user-facing message for it. This is the only place that branching lives.
func classifyFailure(err error) string {
	var timeoutErr *gateway.TimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutMessage
	}

	var serverErr *gateway.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.Detail != "" {
			return serverErr.Detail
		}
		return genericFailure
	}

	var shapeErr *normalize.MalformedResponseError
	if errors.As(err, &shapeErr) {
		return shapeFailure
	}

	return genericFailure
}

// Reset clears all result and error state back to Idle. Safe at any time;
// an in-flight request keeps running but its response is discarded.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.activeAttempt = ""
	o.result = domain.PredictionResult{}
	o.failure = ""
	o.patient = domain.PatientInput{}
	o.personal = domain.PersonalDetails{}
	o.selection = ""
}

// Artifact is one rendered export: content plus its conventional file name.
type Artifact struct {
	Name    string
	Content []byte
}

// ExportPDF re-derives the report document from the current result state and
// renders it. Nothing is cached: the artifact always reflects what is shown.
func (o *Orchestrator) ExportPDF() (Artifact, error) {
	return o.export("pdf", o.pdf.Render)
}

// ExportXLSX renders the same document as a workbook.
func (o *Orchestrator) ExportXLSX() (Artifact, error) {
	return o.export("xlsx", o.xlsx.Render)
}

func (o *Orchestrator) export(ext string, render func(domain.ReportDocument) ([]byte, error)) (Artifact, error) {
	o.mu.Lock()
	if o.state != StateSucceeded {
		o.mu.Unlock()
		return Artifact{}, ErrNoResult
	}
	result := o.result
	personal := o.personal
	o.mu.Unlock()

	now := o.now()
	doc, err := report.Compose(result, personal, now)
	if err != nil {
		return Artifact{}, err
	}
	content, err := render(doc)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: report.ArtifactName(doc.Kind, ext, now), Content: content}, nil
}

// Deliver emails the current result through the coordinator. Delivery is
// single-flight on its own lock, independent of the prediction lock.
func (o *Orchestrator) Deliver(ctx context.Context) (domain.DeliveryOutcome, error) {
	o.mu.Lock()
	if o.state != StateSucceeded {
		o.mu.Unlock()
		return domain.DeliveryOutcome{}, ErrNoResult
	}
	if o.deliveryBusy {
		o.mu.Unlock()
		return domain.DeliveryOutcome{}, ErrDeliveryInFlight
	}
	o.deliveryBusy = true

	primary := o.result.Primary()
	req := domain.DeliveryRequest{
		RecipientEmail: o.personal.Email,
		RecipientName:  recipientName(o.personal),
		ModelKind:      o.selection,
		Patient:        o.patient,
		Summary: domain.DeliverySummary{
			RiskTier:    primary.RiskTier,
			Probability: primary.Probability,
		},
	}
	attemptID := o.activeAttempt
	result := o.result
	o.mu.Unlock()

	outcome := o.coordinator.Send(ctx, req)

	o.mu.Lock()
	o.deliveryBusy = false
	o.mu.Unlock()

	if outcome.Status == domain.DeliverySuccess {
		o.recordHistory(ctx, attemptID, result, true)
	}
	return outcome, nil
}

func recipientName(personal domain.PersonalDetails) string {
	if personal.Name == "" {
		return "Patient"
	}
	return personal.Name
}

// recordHistory is best-effort bookkeeping; failures are logged, never
// propagated into the lifecycle.
func (o *Orchestrator) recordHistory(ctx context.Context, attemptID string, result domain.PredictionResult, delivered bool) {
	if o.history == nil {
		return
	}
	primary := result.Primary()
	err := o.history.SaveEntry(ctx, domain.HistoryEntry{
		AttemptID:   attemptID,
		Selection:   result.Selection,
		RiskTier:    primary.RiskTier,
		Probability: primary.Probability,
		Delivered:   delivered,
		CreatedAt:   o.now(),
	})
	if err != nil {
		o.debug("history save failed", "attempt", attemptID, "error", err)
	}
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}
