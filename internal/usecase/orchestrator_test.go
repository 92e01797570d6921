package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"CardioSense/internal/delivery"
	"CardioSense/internal/domain"
	"CardioSense/internal/infrastructure/gateway"
)

var fixedNow = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)

const compareBody = `{
	"logistic_regression": {"model_type": "Logistic Regression", "prediction": 0, "probability": 0.12, "risk_level": "Low Risk"},
	"random_forest": {"model_type": "Random Forest", "prediction": 1, "probability": 0.71, "risk_level": "High Risk"},
	"recommendation": "Models disagree - consult a medical professional."
}`

// fakeClient scripts gateway behavior. An optional gate blocks Invoke until
// released, which lets tests hold a submission in flight.
type fakeClient struct {
	mu           sync.Mutex
	invokeCalls  int
	deliverCalls int

	invokeBody json.RawMessage
	invokeErr  error
	deliverErr error
	gate       chan struct{}
}

func (f *fakeClient) Invoke(context.Context, domain.ModelSelection, domain.PatientInput) (json.RawMessage, error) {
	f.mu.Lock()
	f.invokeCalls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.invokeErr != nil {
		return nil, f.invokeErr
	}
	return f.invokeBody, nil
}

func (f *fakeClient) Deliver(context.Context, domain.DeliveryRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.deliverCalls++
	f.mu.Unlock()
	if f.deliverErr != nil {
		return nil, f.deliverErr
	}
	return json.RawMessage(`{"message":"sent"}`), nil
}

func (f *fakeClient) Health(context.Context) error { return nil }

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invokeCalls
}

type memoryHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (m *memoryHistory) SaveEntry(_ context.Context, entry domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryHistory) RecentEntries(context.Context, int) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HistoryEntry(nil), m.entries...), nil
}

func newOrchestrator(client *fakeClient, history *memoryHistory) *Orchestrator {
	deps := Deps{
		Client: client,
		Now:    func() time.Time { return fixedNow },
	}
	deps.Coordinator = delivery.New(client, nil, nil)
	if history != nil {
		deps.History = history
	}
	return NewOrchestrator(deps)
}

func validInput() domain.PatientInput {
	return domain.PatientInput{
		Age:              35,
		Sex:              domain.Male,
		HeightCm:         175,
		WeightKg:         70,
		SystolicBP:       120,
		DiastolicBP:      80,
		Cholesterol:      domain.LevelNormal,
		Glucose:          domain.LevelNormal,
		PhysicallyActive: true,
	}
}

func submit(t *testing.T, o *Orchestrator, personal domain.PersonalDetails) {
	t.Helper()
	if err := o.Submit(context.Background(), validInput(), domain.SelectBoth, personal); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
}

func TestSubmitSucceedsWithComparison(t *testing.T) {
	t.Parallel()

	history := &memoryHistory{}
	o := newOrchestrator(&fakeClient{invokeBody: json.RawMessage(compareBody)}, history)

	if o.State() != StateIdle {
		t.Fatalf("expected Idle before submit")
	}
	submit(t, o, domain.PersonalDetails{Name: "Jordan Reyes"})

	if o.State() != StateSucceeded {
		t.Fatalf("expected Succeeded, got %v (failure: %q)", o.State(), o.FailureMessage())
	}
	result, ok := o.Result()
	if !ok {
		t.Fatalf("expected a result after success")
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if result.Primary().RiskTier != domain.TierHigh {
		t.Fatalf("primary record must carry the random forest tier")
	}

	entries, _ := history.RecentEntries(context.Background(), 10)
	if len(entries) != 1 || entries[0].Delivered {
		t.Fatalf("expected one undelivered history entry, got %+v", entries)
	}
}

func TestSubmitRejectsInvalidInputWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	client := &fakeClient{invokeBody: json.RawMessage(compareBody)}
	o := newOrchestrator(client, nil)

	input := validInput()
	input.Age = 200
	err := o.Submit(context.Background(), input, domain.SelectBoth, domain.PersonalDetails{})

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if client.calls() != 0 {
		t.Fatalf("invalid input must not reach the gateway")
	}
	if o.State() != StateIdle {
		t.Fatalf("state must stay Idle, got %v", o.State())
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	client := &fakeClient{invokeBody: json.RawMessage(compareBody), gate: gate}
	o := newOrchestrator(client, nil)

	done := make(chan error, 1)
	go func() {
		done <- o.Submit(context.Background(), validInput(), domain.SelectBoth, domain.PersonalDetails{})
	}()

	// Wait until the first submission holds the in-flight slot.
	for o.State() != StateSubmitting {
		time.Sleep(time.Millisecond)
	}

	if err := o.Submit(context.Background(), validInput(), domain.SelectBoth, domain.PersonalDetails{}); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first Submit error: %v", err)
	}

	if client.calls() != 1 {
		t.Fatalf("rejected submission must not reach the gateway, got %d calls", client.calls())
	}
	if o.State() != StateSucceeded {
		t.Fatalf("expected Succeeded, got %v", o.State())
	}
}

func TestSubmitTimeoutProducesRetryableFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{invokeErr: &gateway.TimeoutError{Op: "predict"}}
	o := newOrchestrator(client, nil)

	submit(t, o, domain.PersonalDetails{})

	if o.State() != StateFailed {
		t.Fatalf("expected Failed, got %v", o.State())
	}
	if o.FailureMessage() != "The prediction server may be waking up. Please retry in a moment." {
		t.Fatalf("unexpected failure message: %q", o.FailureMessage())
	}

	// The failure does not wedge the machine: reset and resubmit succeed.
	o.Reset()
	if o.State() != StateIdle {
		t.Fatalf("expected Idle after reset, got %v", o.State())
	}
	client.invokeErr = nil
	client.invokeBody = json.RawMessage(compareBody)
	submit(t, o, domain.PersonalDetails{})
	if o.State() != StateSucceeded {
		t.Fatalf("expected Succeeded after retry, got %v", o.State())
	}
}

func TestSubmitClassifiesFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		body json.RawMessage
		want string
	}{
		{"server detail", &gateway.ServerError{StatusCode: 500, Detail: "model not loaded"}, nil, "model not loaded"},
		{"server blank", &gateway.ServerError{StatusCode: 500}, nil, "Failed to get predictions. Please try again."},
		{"transport", &gateway.TransportError{Op: "predict", Err: errors.New("refused")}, nil, "Failed to get predictions. Please try again."},
		{"malformed", nil, json.RawMessage(`{"prediction": 1}`), "Received an unexpected response from the prediction service. Please try again."},
	}

	for _, tc := range cases {
		o := newOrchestrator(&fakeClient{invokeErr: tc.err, invokeBody: tc.body}, nil)
		submit(t, o, domain.PersonalDetails{})

		if o.State() != StateFailed {
			t.Fatalf("%s: expected Failed, got %v", tc.name, o.State())
		}
		if o.FailureMessage() != tc.want {
			t.Fatalf("%s: unexpected message: %q", tc.name, o.FailureMessage())
		}
	}
}

func TestResetDiscardsInFlightResponse(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	client := &fakeClient{invokeBody: json.RawMessage(compareBody), gate: gate}
	o := newOrchestrator(client, nil)

	done := make(chan error, 1)
	go func() {
		done <- o.Submit(context.Background(), validInput(), domain.SelectBoth, domain.PersonalDetails{})
	}()

	for o.State() != StateSubmitting {
		time.Sleep(time.Millisecond)
	}
	o.Reset()
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	if o.State() != StateIdle {
		t.Fatalf("stale response must not overwrite the reset state, got %v", o.State())
	}
	if _, ok := o.Result(); ok {
		t.Fatalf("no result must survive a mid-flight reset")
	}
}

func TestExportRequiresResult(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(&fakeClient{}, nil)
	if _, err := o.ExportPDF(); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if _, err := o.ExportXLSX(); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestExportArtifacts(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(&fakeClient{invokeBody: json.RawMessage(compareBody)}, nil)
	submit(t, o, domain.PersonalDetails{Name: "Jordan Reyes"})

	pdf, err := o.ExportPDF()
	if err != nil {
		t.Fatalf("ExportPDF error: %v", err)
	}
	if pdf.Name != "CardioSense_Comparison_Report_2026-03-14.pdf" {
		t.Fatalf("unexpected PDF name: %s", pdf.Name)
	}
	if len(pdf.Content) == 0 {
		t.Fatalf("empty PDF content")
	}

	xlsx, err := o.ExportXLSX()
	if err != nil {
		t.Fatalf("ExportXLSX error: %v", err)
	}
	if xlsx.Name != "CardioSense_Comparison_Report_2026-03-14.xlsx" {
		t.Fatalf("unexpected XLSX name: %s", xlsx.Name)
	}
}

func TestDeliverRequiresResult(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(&fakeClient{}, nil)
	if _, err := o.Deliver(context.Background()); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestDeliverMarksHistoryOnSuccess(t *testing.T) {
	t.Parallel()

	history := &memoryHistory{}
	client := &fakeClient{invokeBody: json.RawMessage(compareBody)}
	o := newOrchestrator(client, history)

	submit(t, o, domain.PersonalDetails{Name: "Jordan Reyes", Email: "jordan@example.com"})

	outcome, err := o.Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if outcome.Status != domain.DeliverySuccess {
		t.Fatalf("expected success, got %v: %s", outcome.Status, outcome.Message)
	}

	entries, _ := history.RecentEntries(context.Background(), 10)
	if len(entries) != 2 {
		t.Fatalf("expected submit + delivery entries, got %d", len(entries))
	}
	if !entries[1].Delivered {
		t.Fatalf("delivery entry must be marked delivered")
	}
	if entries[0].AttemptID != entries[1].AttemptID {
		t.Fatalf("delivery must reuse the submission attempt id")
	}
}

func TestDeliverWithoutEmailFails(t *testing.T) {
	t.Parallel()

	client := &fakeClient{invokeBody: json.RawMessage(compareBody)}
	o := newOrchestrator(client, nil)
	submit(t, o, domain.PersonalDetails{Name: "Jordan Reyes"})

	outcome, err := o.Deliver(context.Background())
	if err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if outcome.Status != domain.DeliveryFailure {
		t.Fatalf("expected failure without an email, got %v", outcome.Status)
	}
	if client.deliverCalls != 0 {
		t.Fatalf("missing email must not reach the gateway")
	}
}
