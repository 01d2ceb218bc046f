package imagemod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/rutaviva/contentgate/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	analyzePath = "/analyze"
	healthPath  = "/health"

	// DefaultTimeout bounds a single analyze call.
	DefaultTimeout = 15 * time.Second

	DefaultReadyMaxAttempts = 30
	DefaultReadyInterval    = 2 * time.Second

	// degradedRiskScore is on the service's danger scale: maximum risk when
	// the service could not be reached.
	degradedRiskScore = 1.0
)

var ErrServiceCallFailed = errors.New("image moderation service call failed")

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=imagemod_client_mock.go --case=underscore --with-expecter
type Client interface {
	Analyze(ctx context.Context, imagePath string) Result
	WaitForServiceReady(ctx context.Context, maxAttempts int, interval time.Duration) bool
}

// HTTPClient talks to the remote image scoring service. Every failure path
// terminates in a fully-formed degraded Result; Analyze never returns an
// error across its boundary and never retries on its own.
type HTTPClient struct {
	client   httpx.Client
	breaker  httpx.CircuitBreaker
	logger   *logrus.Logger
	baseURL  string
	workRoot string
	timeout  time.Duration
}

type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP transport.
func WithHTTPClient(client httpx.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithCircuitBreaker guards service calls with the given breaker.
func WithCircuitBreaker(breaker httpx.CircuitBreaker) HTTPClientOption {
	return func(c *HTTPClient) {
		if breaker != nil {
			c.breaker = breaker
		}
	}
}

// WithWorkRoot sets the directory relative paths resolve against before
// dispatch, so the service never receives a path it cannot open.
func WithWorkRoot(root string) HTTPClientOption {
	return func(c *HTTPClient) {
		c.workRoot = root
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) HTTPClientOption {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewHTTPClient(logger *logrus.Logger, baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		client:  &http.Client{},
		breaker: httpx.NoopBreaker{},
		logger:  logger,
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze submits one image path for scoring. The call is bound by the
// fixed timeout through a cancellable context; timeout, network failure and
// non-200 responses all collapse into the degraded rejected Result with the
// raw error text embedded. Retries, if desired, are the caller's concern.
func (c *HTTPClient) Analyze(ctx context.Context, imagePath string) Result {
	start := time.Now()

	resolved := c.resolvePath(imagePath)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var response analysisResponse
	err := c.breaker.Execute(func() error {
		var execErr error
		response, execErr = c.executeAnalyzeRequest(ctx, resolved)
		return execErr
	})

	elapsed := time.Since(start).Seconds()
	c.logger.WithFields(logrus.Fields{
		"image_path":      resolved,
		"elapsed_seconds": elapsed,
	}).Info("image analysis finished")

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).Error("image moderation service call failed")
		}
		return degradedResult(elapsed, err)
	}

	return c.mapResponse(response, elapsed)
}

func (c *HTTPClient) executeAnalyzeRequest(ctx context.Context, imagePath string) (analysisResponse, error) {
	var response analysisResponse

	body, err := json.Marshal(analyzeRequest{ImagePath: imagePath})
	if err != nil {
		return response, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(body))
	if err != nil {
		return response, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return response, moderation.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return response, moderation.NewTransportError(
			fmt.Errorf("%w: status %d", ErrServiceCallFailed, resp.StatusCode),
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return response, moderation.NewTransportError(fmt.Errorf("analyze response read error: %w", err))
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return response, fmt.Errorf("invalid analyze response: %w", err)
	}

	return response, nil
}

func (c *HTTPClient) mapResponse(response analysisResponse, elapsed float64) Result {
	verdict := moderation.Verdict{
		IsApproved: response.EsApto,
		RiskScore:  response.PuntuacionRiesgo,
	}
	if !response.EsApto {
		verdict.RejectionReason = fmt.Sprintf(
			"image rejected by moderation service (risk score %.2f)", response.PuntuacionRiesgo,
		)
	}
	return Result{
		Verdict:          verdict,
		ViolenceAnalysis: response.AnalisisViolencia,
		WeaponsAnalysis:  response.AnalisisArmas,
		ElapsedSeconds:   elapsed,
	}
}

// WaitForServiceReady polls the health endpoint until the service reports
// its models loaded. Exhausting the attempts returns false, never an error;
// the caller decides whether to proceed degraded or block.
func (c *HTTPClient) WaitForServiceReady(ctx context.Context, maxAttempts int, interval time.Duration) bool {
	if maxAttempts <= 0 {
		maxAttempts = DefaultReadyMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultReadyInterval
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.checkHealth(ctx) {
			c.logger.WithField("attempt", attempt).Info("image moderation service ready")
			return true
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}

	c.logger.WithField("attempts", maxAttempts).Warn("image moderation service never became ready")
	return false
}

func (c *HTTPClient) checkHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Debug("health check failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		c.logger.WithError(err).Debug("invalid health response")
		return false
	}

	return health.ModelosListos
}

func (c *HTTPClient) resolvePath(imagePath string) string {
	if filepath.IsAbs(imagePath) || c.workRoot == "" {
		return imagePath
	}
	return filepath.Join(c.workRoot, imagePath)
}

func degradedResult(elapsed float64, err error) Result {
	placeholder := map[string]interface{}{"estado": "no_disponible"}
	return Result{
		Verdict: moderation.Verdict{
			IsApproved:      false,
			RiskScore:       degradedRiskScore,
			RejectionReason: "image analysis unavailable",
		},
		ViolenceAnalysis: placeholder,
		WeaponsAnalysis:  placeholder,
		ElapsedSeconds:   elapsed,
		Err:              err.Error(),
	}
}
