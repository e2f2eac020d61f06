package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/zenith/internal/telemetry/metrics"
	"github.com/2beens/zenith/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNoCandidates      = errors.New("model returned no candidates")
	ErrMalformedResponse = errors.New("malformed model response")
)

// APIError is a non-200 answer from the Gemini API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api: status %d: %s", e.StatusCode, e.Body)
}

const maxErrorBody = 2048

type ClientParams struct {
	BaseURL    string
	APIKey     string
	TextModel  string
	ImageModel string
	// Timeout bounds unary calls end to end. Streamed replies are bounded by
	// the caller context, Timeout only applies to their response headers.
	Timeout    time.Duration
	// CacheSize is the freecache size in bytes for analysis and image results.
	CacheSize  int
	HTTPClient *http.Client
	Metrics    *metrics.Manager
}

// Client talks to the Gemini generateContent REST API.
type Client struct {
	baseURL      string
	apiKey       string
	textModel    string
	imageModel   string
	httpClient   *http.Client
	// streamClient has no overall timeout, the body of a long reply may take a while
	streamClient *http.Client
	cache        *freecache.Cache
	metrics      *metrics.Manager
}

func NewClient(params ClientParams) (*Client, error) {
	if params.APIKey == "" {
		return nil, errors.New("gemini api key not set")
	}
	if _, err := url.Parse(params.BaseURL); err != nil || params.BaseURL == "" {
		return nil, fmt.Errorf("invalid gemini base url [%s]", params.BaseURL)
	}
	if params.Metrics == nil {
		return nil, errors.New("metrics manager is nil")
	}

	httpClient, streamClient := params.HTTPClient, params.HTTPClient
	if httpClient == nil {
		streamTransport := http.DefaultTransport.(*http.Transport).Clone()
		streamTransport.ResponseHeaderTimeout = params.Timeout
		httpClient = &http.Client{
			Timeout:   params.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		streamClient = &http.Client{
			Transport: otelhttp.NewTransport(streamTransport),
		}
	} else if httpClient.Timeout > 0 {
		withoutTimeout := *httpClient
		withoutTimeout.Timeout = 0
		streamClient = &withoutTimeout
	}
	cacheSize := params.CacheSize
	if cacheSize <= 0 {
		cacheSize = 50 * 1024 * 1024
	}

	return &Client{
		baseURL:      strings.TrimRight(params.BaseURL, "/"),
		apiKey:       params.APIKey,
		textModel:    params.TextModel,
		imageModel:   params.ImageModel,
		httpClient:   httpClient,
		streamClient: streamClient,
		cache:        freecache.NewCache(cacheSize),
		metrics:      params.Metrics,
	}, nil
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

type generationConfig struct {
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     *schema  `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// text joins the text parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func userText(text string) content {
	return content{Role: "user", Parts: []part{{Text: text}}}
}

func (c *Client) endpoint(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", c.baseURL, url.PathEscape(model), method)
}

func (c *Client) newRequest(ctx context.Context, endpoint string, body generateRequest) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	return req, nil
}

func (c *Client) do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// generate runs a unary generateContent call against model.
func (c *Client) generate(ctx context.Context, operation, model string, body generateRequest) (_ generateResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ai.gemini."+operation)
	span.SetAttributes(attribute.String("model", model))
	start := time.Now()
	defer func() {
		c.metrics.HistogramAICallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.CounterAIErrors.WithLabelValues(operation).Inc()
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	req, err := c.newRequest(ctx, c.endpoint(model, "generateContent"), body)
	if err != nil {
		return generateResponse{}, err
	}
	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return generateResponse{}, err
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return generateResponse{}, fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}
	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return generateResponse{}, fmt.Errorf("%w: blocked: %s", ErrNoCandidates, out.PromptFeedback.BlockReason)
		}
		return generateResponse{}, ErrNoCandidates
	}
	return out, nil
}

// cleanJSON strips markdown fences the model sometimes wraps JSON answers in.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
