package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"casetrail/internal/domain"
	"casetrail/internal/semantic"
)

// requiredOutputSchema is sent with every request so the reasoning service
// knows the exact shape we can validate. Anything else routes into the
// validator's rejection path.
var requiredOutputSchema = map[string]string{
	"risk_level":         "HIGH | MEDIUM | LOW",
	"confidence":         "number in [0.0, 1.0]",
	"reason":             "2-3 sentence explanation",
	"recommended_action": "suggested next step for the recovery team",
}

// RemoteConfig holds the knobs for the remote reasoning client.
type RemoteConfig struct {
	Endpoint    string
	APIKey      string
	Timeout     time.Duration // bounds the whole call, default 8s
	MaxFailures uint32        // consecutive failures before the breaker opens
	Cooldown    time.Duration // how long the breaker stays open
}

// Remote sends the semantic context to an external reasoning service. Every
// failure mode (timeout, network, auth, 5xx, open breaker) surfaces as a
// *TransportError so the pipeline can fall back without inspecting causes.
type Remote struct {
	cfg     RemoteConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewRemote(cfg RemoteConfig, logger *slog.Logger) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "reasoning-oracle",
		Timeout: cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("oracle breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Remote{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

type remoteRequest struct {
	ContextText          string            `json:"context_text"`
	RequiredOutputSchema map[string]string `json:"required_output_schema"`
}

// Classify performs one bounded call to the reasoning service. It never
// retries: retry policy belongs to the pipeline, which is bounded by design.
func (r *Remote) Classify(ctx context.Context, sc semantic.Context) (RawVerdict, error) {
	body, err := json.Marshal(remoteRequest{
		ContextText:          sc.PromptBody(),
		RequiredOutputSchema: requiredOutputSchema,
	})
	if err != nil {
		return RawVerdict{}, fmt.Errorf("marshal oracle request: %w", err)
	}

	payload, err := r.breaker.Execute(func() (any, error) {
		return r.call(ctx, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return RawVerdict{}, &TransportError{Op: "breaker", Err: err}
		}
		var te *TransportError
		if errors.As(err, &te) {
			return RawVerdict{}, err
		}
		return RawVerdict{}, &TransportError{Op: "call", Err: err}
	}

	return RawVerdict{
		Source:  domain.SourceOracle,
		Payload: stripFences(payload.([]byte)),
	}, nil
}

func (r *Remote) call(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &TransportError{Op: "auth", Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &TransportError{Op: "status", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{Op: "read body", Err: err}
	}
	return payload, nil
}

// stripFences removes markdown code fences some reasoning services wrap
// around their JSON, so fenced-but-valid output still validates.
func stripFences(payload []byte) []byte {
	s := strings.TrimSpace(string(payload))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
