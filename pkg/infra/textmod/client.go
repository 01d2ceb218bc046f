package textmod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/rutaviva/contentgate/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	moderatePath   = "/v1/text/moderate"
	defaultTimeout = 10 * time.Second

	unreachableMessage = "moderation service unreachable"
)

var ErrServiceCallFailed = errors.New("text moderation service call failed")

// Verdict is the normalized outcome of a description analysis.
type Verdict struct {
	IsApproved bool               `json:"is_approved"`
	Message    string             `json:"message,omitempty"`
	Details    map[string]float64 `json:"details,omitempty"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=textmod_client_mock.go --case=underscore --with-expecter
type Client interface {
	AnalyzeText(ctx context.Context, text string) Verdict
}

type moderateRequest struct {
	Input []string `json:"input"`
}

type moderateResponse struct {
	Flagged        bool               `json:"flagged"`
	Message        string             `json:"message,omitempty"`
	CategoryScores map[string]float64 `json:"category_scores,omitempty"`
}

// HTTPClient submits free-text descriptions to the remote moderation
// endpoint. Unlike the image path, this client is fail-closed: any
// transport failure rejects the text. Descriptions are cheap to re-prompt
// for; images are not.
type HTTPClient struct {
	client  httpx.Client
	logger  *logrus.Logger
	baseURL string
	token   string
}

type HTTPClientOption func(*HTTPClient)

func WithHTTPClient(client httpx.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

func NewHTTPClient(logger *logrus.Logger, baseURL, token string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger,
		baseURL: baseURL,
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeText normalizes the remote verdict for the save gate. Empty or
// whitespace-only text short-circuits to approved without a network call.
func (c *HTTPClient) AnalyzeText(ctx context.Context, text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return Verdict{IsApproved: true}
	}

	response, err := c.executeModerateRequest(ctx, text)
	if err != nil {
		c.logger.WithError(err).Error("text moderation call failed, rejecting")
		return Verdict{IsApproved: false, Message: unreachableMessage}
	}

	if response.Flagged {
		message := response.Message
		if message == "" {
			message = "description contains inappropriate content"
		}
		return Verdict{
			IsApproved: false,
			Message:    message,
			Details:    response.CategoryScores,
		}
	}

	return Verdict{IsApproved: true, Details: response.CategoryScores}
}

func (c *HTTPClient) executeModerateRequest(ctx context.Context, text string) (moderateResponse, error) {
	var response moderateResponse

	body, err := json.Marshal(moderateRequest{Input: []string{text}})
	if err != nil {
		return response, fmt.Errorf("failed to marshal moderate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+moderatePath, bytes.NewReader(body))
	if err != nil {
		return response, fmt.Errorf("failed to create moderate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Token", c.token)
	}

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
		return response, moderation.NewTransportError(fmt.Errorf("moderate response read error: %w", err))
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return response, fmt.Errorf("invalid moderate response: %w", err)
	}

	return response, nil
}
