package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"go.uber.org/zap"
)

const anthropicVersion = "2023-06-01"

// reservedFields are request fields an Options entry may not override.
var reservedFields = map[string]bool{
	"model":       true,
	"messages":    true,
	"system":      true,
	"temperature": true,
	"max_tokens":  true,
	"stream":      true,
}

// AnthropicClient streams completions from the Anthropic Messages API.
// The system message is sent as a separate field rather than as part of
// the conversation. It holds no per-call state and may be shared between
// goroutines.
type AnthropicClient struct {
	apiKey string
	api    anthropic.Client
	policy SystemPolicy
	logger *zap.Logger
}

// NewAnthropicClient creates a new Anthropic client. An empty apiKey is
// reported when the first completion is requested.
func NewAnthropicClient(apiKey string, opts ...Option) *AnthropicClient {
	o := buildOptions(opts)
	sdkOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(o.httpClient),
		option.WithHeader("anthropic-version", anthropicVersion),
		// Retrying is left to the caller; see StreamError.Retryable.
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(o.baseURL))
	}
	return &AnthropicClient{
		apiKey: apiKey,
		api:    anthropic.NewClient(sdkOpts...),
		policy: o.policy,
		logger: o.logger,
	}
}

func (c *AnthropicClient) Name() string {
	return "anthropic"
}

type anthropicErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type anthropicErrorResponse struct {
	Error *anthropicErrorBody `json:"error"`
}

type anthropicStream = ssestream.Stream[anthropic.MessageStreamEventUnion]

func (c *AnthropicClient) StreamCompletion(ctx context.Context, req StreamRequest) (*TextStream, error) {
	if c.apiKey == "" {
		return nil, &StreamError{
			Provider: c.Name(),
			Kind:     KindConfig,
			Message:  "ANTHROPIC_API_KEY is not set",
			Err:      ErrMissingAPIKey,
		}
	}

	system, conversation, err := SplitSystem(req.Messages, c.policy)
	if err != nil {
		return nil, inputError(c.Name(), err)
	}

	var rc responseCapture
	reqOpts := []option.RequestOption{option.WithMiddleware(rc.middleware)}
	for k, v := range req.Options {
		if reservedFields[k] {
			continue
		}
		reqOpts = append(reqOpts, option.WithJSONSet(k, v))
	}

	c.logger.Debug("opening stream",
		zap.String("provider", c.Name()),
		zap.String("model", req.Model),
		zap.Int("messages", len(conversation)),
	)

	stream := c.api.Messages.NewStreaming(ctx, messageParams(req, system, conversation), reqOpts...)

	// The first event settles whether the request was accepted, so status
	// failures surface here rather than on the first Next.
	if !stream.Next() {
		se := c.openError(ctx, stream, &rc)
		c.logger.Warn("stream rejected", zap.String("provider", c.Name()), zap.Int("status", rc.status), zap.Error(se))
		return nil, se
	}

	src := &anthropicSource{
		ctx:      ctx,
		provider: c.Name(),
		stream:   stream,
		pending:  true,
	}
	return NewTextStream(c.Name(), src, c.logger), nil
}

func messageParams(req StreamRequest, system string, conversation []Message) anthropic.MessageNewParams {
	messages := make([]anthropic.MessageParam, 0, len(conversation))
	for _, msg := range conversation {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		Messages:    messages,
		MaxTokens:   int64(req.maxTokens()),
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

// openError classifies a stream that ended before its first event.
func (c *AnthropicClient) openError(ctx context.Context, stream *anthropicStream, rc *responseCapture) *StreamError {
	if rc.status >= http.StatusBadRequest {
		return statusError(c.Name(), rc.status, rc.body)
	}
	// A response body exists only once the provider answered 200.
	if rc.status == http.StatusOK {
		defer stream.Close()
	}
	return streamFailure(ctx, c.Name(), stream.Err())
}

// responseCapture records the HTTP status and, for failures, the response
// body, independent of how the SDK decodes it.
type responseCapture struct {
	status int
	body   []byte
}

func (rc *responseCapture) middleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	res, err := next(req)
	if err != nil || res == nil {
		return res, err
	}
	rc.status = res.StatusCode
	if res.StatusCode >= http.StatusBadRequest {
		rc.body, _ = io.ReadAll(io.LimitReader(res.Body, 64*1024))
		res.Body.Close()
		res.Body = io.NopCloser(bytes.NewReader(rc.body))
	}
	return res, nil
}

// statusError converts a non-200 response into a StreamError.
func statusError(provider string, status int, raw []byte) *StreamError {
	se := &StreamError{
		Provider:   provider,
		Kind:       kindForStatus(status),
		StatusCode: status,
	}

	var parsed anthropicErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil {
		se.Type = parsed.Error.Type
		se.Message = fmt.Sprintf("%s (%d %s)", parsed.Error.Message, status, parsed.Error.Type)
		return se
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = http.StatusText(status)
	}
	se.Message = fmt.Sprintf("status %d: %s", status, text)
	return se
}

// streamFailure maps an error reported by the SDK stream. A nil err means
// the body ended before message_stop.
func streamFailure(ctx context.Context, provider string, err error) *StreamError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return transportError(provider, ctxErr)
	}
	if err == nil {
		return &StreamError{
			Provider: provider,
			Kind:     KindTransport,
			Message:  "stream ended unexpectedly",
			Err:      io.ErrUnexpectedEOF,
		}
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return statusError(provider, apiErr.StatusCode, []byte(apiErr.RawJSON()))
	}

	// An error event arrives as an error carrying the event's JSON payload.
	if body, ok := errorEventBody(err.Error()); ok {
		se := &StreamError{Provider: provider, Kind: KindProvider, Type: body.Type, Message: body.Message, Err: err}
		if se.Message == "" {
			se.Message = "unknown stream error"
		}
		return se
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &StreamError{Provider: provider, Kind: KindProvider, Message: "malformed stream event: " + err.Error(), Err: err}
	}

	return transportError(provider, err)
}

func errorEventBody(text string) (*anthropicErrorBody, bool) {
	i := strings.Index(text, "{")
	if i < 0 {
		return nil, false
	}
	var parsed anthropicErrorResponse
	if err := json.Unmarshal([]byte(text[i:]), &parsed); err != nil || parsed.Error == nil {
		return nil, false
	}
	return parsed.Error, true
}

// anthropicSource turns Messages API stream events into text fragments.
type anthropicSource struct {
	ctx      context.Context
	provider string
	stream   *anthropicStream
	pending  bool // Current holds an event not yet handed out
	stopped  bool
}

func (s *anthropicSource) Recv() (string, error) {
	for {
		if s.stopped {
			return "", io.EOF
		}

		if s.pending {
			s.pending = false
		} else if !s.stream.Next() {
			return "", streamFailure(s.ctx, s.provider, s.stream.Err())
		}

		switch ev := s.stream.Current().AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
				return delta.Text, nil
			}
		case anthropic.MessageStopEvent:
			s.stopped = true
			return "", io.EOF
		}
	}
}

func (s *anthropicSource) Close() error {
	return s.stream.Close()
}
