package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/rolld/sales-assistant/internal/errors"
)

// Client implements the Service interface against an Azure-hosted
// OpenAI-compatible chat completions deployment.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new completion client with the given configuration
func NewClient(config Config) (*Client, error) {
	var missing []string

	if config.Endpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}

	if config.APIKey == "" {
		missing = append(missing, "AZURE_OPENAI_KEY")
	}

	if len(missing) > 0 {
		return nil, apperrors.NewCompletionUnavailable(strings.Join(missing, ", ") + " not set")
	}

	if config.DeploymentName == "" {
		return nil, apperrors.NewCompletionUnavailable("AZURE_OPENAI_DEPLOYMENT_NAME not set")
	}

	if config.APIVersion == "" {
		config.APIVersion = DefaultAPIVersion
	}

	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Chat completions API structures
type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends the prompts to the deployment and returns the completion
// text. Temperature is pinned to zero so identical prompts complete the same
// way across runs.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
		MaxTokens:   c.config.MaxTokens,
	}

	respBody, err := c.makeRequest(ctx, reqBody)
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrTypeCompletion, "failed to parse completion response")
	}

	if response.Error != nil {
		return "", apperrors.Newf(apperrors.ErrTypeCompletion,
			"completion service error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrTypeCompletion, "completion returned no choices")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// makeRequest performs the HTTP round-trip to the deployment endpoint
func (c *Client) makeRequest(ctx context.Context, reqBody interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimSuffix(c.config.Endpoint, "/"),
		url.PathEscape(c.config.DeploymentName),
		url.QueryEscape(c.config.APIVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTypeCompletion, "completion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTypeCompletion, "failed to read completion response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ErrTypeCompletion,
			"completion request failed with status %d", resp.StatusCode).
			WithDetail(string(body))
	}

	return body, nil
}
