// File path: internal/portal/client.go
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmcardoso/fieldops/internal/common"
	"github.com/jmcardoso/fieldops/internal/common/telemetry"
)

// Credentials is the portal credential pair, supplied by the auth/profile
// service and passed through verbatim.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Allocation is the raw work-order payload returned by the allocation
// endpoint. Field names follow the upstream wire format.
type Allocation struct {
	Descricao       string  `json:"descricao"`
	Endereco        string  `json:"endereco"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	CorFibra        string  `json:"cor_fibra"`
	TipoServico     string  `json:"tipo_servico"`
	DataAgendamento string  `json:"data_agendamento"`
	Horario         string  `json:"horario"`
	Estado          string  `json:"estado"`
	Observacoes     string  `json:"observacoes"`
	SLID            string  `json:"slid,omitempty"`
}

// UpstreamError carries the portal's failure message through unmodified.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Client fetches work-order allocations from the upstream portal.
type Client interface {
	Allocate(ctx context.Context, workOrderID string, creds Credentials) (*Allocation, error)
}

// HTTPClient is the production Client talking to the allocation endpoint.
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewFromEnv constructs a client from environment configuration.
func NewFromEnv() (*HTTPClient, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// New constructs a client using the provided configuration.
func New(cfg Config) *HTTPClient {
	cfg.applyDefaults()
	logger := common.Logger()
	logger.Info("portal: initializing allocation client", "endpoint", cfg.Endpoint, "timeout", cfg.Timeout)

	transport := &http.Transport{
		MaxIdleConns:        cfg.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTPMaxIdlePerHost,
		IdleConnTimeout:     cfg.HTTPIdleConnTimeout,
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
	}
}

type allocateRequest struct {
	WorkOrderID string      `json:"work_order_id"`
	Credentials Credentials `json:"credentials"`
}

type allocateEnvelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    *Allocation `json:"data"`
}

// Allocate performs exactly one POST against the allocation endpoint. A
// non-success HTTP status or an application-level failure flag yields an
// UpstreamError carrying the upstream message verbatim.
func (c *HTTPClient) Allocate(ctx context.Context, workOrderID string, creds Credentials) (*Allocation, error) {
	payload, err := json.Marshal(allocateRequest{WorkOrderID: workOrderID, Credentials: creds})
	if err != nil {
		return nil, fmt.Errorf("encode allocation request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build allocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call allocation endpoint: %w", err)
	}
	defer resp.Body.Close()
	telemetry.RecordUpstreamCall(time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read allocation response: %w", err)
	}

	var envelope allocateEnvelope
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(envelope.Message)
		if decodeErr != nil || message == "" {
			message = fmt.Sprintf("allocation endpoint returned %s", resp.Status)
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode allocation response: %w", decodeErr)
	}
	if envelope.Status != "success" {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}
	if envelope.Data == nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: "allocation response missing data"}
	}
	return envelope.Data, nil
}
