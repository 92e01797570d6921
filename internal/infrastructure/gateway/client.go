package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/go-resty/resty/v2"

	"CardioSense/internal/domain"
	"CardioSense/internal/ports"
)

const (
	defaultInferenceTimeout = 120 * time.Second
	defaultDeliveryTimeout  = 30 * time.Second
)

// Endpoint paths, fixed per model. The selection enum resolves statically;
// there is no runtime endpoint registry.
var predictPaths = map[domain.ModelSelection]string{
	domain.SelectLogistic:     "/predict/logistic",
	domain.SelectRandomForest: "/predict/randomforest",
	domain.SelectBoth:         "/predict/compare",
}

// Client is the typed gateway over the remote classifier service. It only
// serializes and classifies errors; inputs are validated before they get here
// and retries are a caller decision.
type Client struct {
	http             *resty.Client
	inferenceTimeout time.Duration
	deliveryTimeout  time.Duration
}

var _ ports.PredictionClient = (*Client)(nil)

// NewClient builds a gateway for the given base URL. Non-positive timeouts
// fall back to defaults sized for a cold-started backend.
func NewClient(baseURL string, inferenceTimeout, deliveryTimeout time.Duration) *Client {
	if inferenceTimeout <= 0 {
		inferenceTimeout = defaultInferenceTimeout
	}
	if deliveryTimeout <= 0 {
		deliveryTimeout = defaultDeliveryTimeout
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:             http,
		inferenceTimeout: inferenceTimeout,
		deliveryTimeout:  deliveryTimeout,
	}
}

// patientPayload is the wire form of PatientInput.
type patientPayload struct {
	Age         float64 `json:"age"`
	Gender      int     `json:"gender"`
	Height      float64 `json:"height"`
	Weight      float64 `json:"weight"`
	ApHi        float64 `json:"ap_hi"`
	ApLo        float64 `json:"ap_lo"`
	Cholesterol int     `json:"cholesterol"`
	Gluc        int     `json:"gluc"`
	Smoke       int     `json:"smoke"`
	Alco        int     `json:"alco"`
	Active      int     `json:"active"`
}

func toPayload(input domain.PatientInput) patientPayload {
	return patientPayload{
		Age:         float64(input.Age),
		Gender:      int(input.Sex),
		Height:      input.HeightCm,
		Weight:      input.WeightKg,
		ApHi:        float64(input.SystolicBP),
		ApLo:        float64(input.DiastolicBP),
		Cholesterol: int(input.Cholesterol),
		Gluc:        int(input.Glucose),
		Smoke:       boolToInt(input.Smokes),
		Alco:        boolToInt(input.DrinksAlcohol),
		Active:      boolToInt(input.PhysicallyActive),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Invoke posts the patient data to the endpoint matching the selection and
// returns the raw response body for the normalizer.
func (c *Client) Invoke(ctx context.Context, sel domain.ModelSelection, input domain.PatientInput) (json.RawMessage, error) {
	path, ok := predictPaths[sel]
	if !ok {
		return nil, &TransportError{Op: "predict", Err: errors.New("unknown model selection")}
	}
	return c.post(ctx, "predict "+string(sel), path, toPayload(input), c.inferenceTimeout)
}

// deliveryPayload is the wire form of DeliveryRequest.
type deliveryPayload struct {
	ToEmail          string          `json:"to_email"`
	PatientName      string          `json:"patient_name"`
	ModelType        string          `json:"model_type"`
	PatientData      patientPayload  `json:"patient_data"`
	PredictionResult deliverySummary `json:"prediction_result"`
}

type deliverySummary struct {
	RiskLevel   string  `json:"risk_level"`
	Probability float64 `json:"probability"`
}

// Deliver submits one send-report request. Exactly one attempt; the shorter
// delivery timeout applies.
func (c *Client) Deliver(ctx context.Context, req domain.DeliveryRequest) (json.RawMessage, error) {
	body := deliveryPayload{
		ToEmail:     req.RecipientEmail,
		PatientName: req.RecipientName,
		ModelType:   string(req.ModelKind),
		PatientData: toPayload(req.Patient),
		PredictionResult: deliverySummary{
			RiskLevel:   req.Summary.RiskTier.String(),
			Probability: req.Summary.Probability,
		},
	}
	return c.post(ctx, "send report", "/send-report", body, c.deliveryTimeout)
}

// Health probes the liveness endpoint. Any 2xx counts as alive.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.deliveryTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return classifyTransport("health check", err)
	}
	if resp.IsError() {
		return &ServerError{StatusCode: resp.StatusCode(), Detail: extractDetail(resp.Body())}
	}
	return nil
}

func (c *Client) post(ctx context.Context, op, path string, body any, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, classifyTransport(op, err)
	}

	if resp.IsError() {
		return nil, &ServerError{StatusCode: resp.StatusCode(), Detail: extractDetail(resp.Body())}
	}

	raw := make(json.RawMessage, len(resp.Body()))
	copy(raw, resp.Body())
	return raw, nil
}

func classifyTransport(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op}
	}
	return &TransportError{Op: op, Err: err}
}

// extractDetail pulls the backend's detail string out of an error body.
func extractDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}
