package llm

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient streams completions from the OpenAI Chat Completions API.
// The system message stays at the head of the conversation.
type OpenAIClient struct {
	apiKey string
	client *openai.Client
	policy SystemPolicy
	logger *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. An empty apiKey is reported
// when the first completion is requested.
func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	o := buildOptions(opts)
	cfg := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
	}
	cfg.HTTPClient = o.httpClient
	return &OpenAIClient{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(cfg),
		policy: o.policy,
		logger: o.logger,
	}
}

func (p *OpenAIClient) Name() string {
	return "openai"
}

func (p *OpenAIClient) StreamCompletion(ctx context.Context, req StreamRequest) (*TextStream, error) {
	if p.apiKey == "" {
		return nil, &StreamError{
			Provider: p.Name(),
			Kind:     KindConfig,
			Message:  "OPENAI_API_KEY is not set",
			Err:      ErrMissingAPIKey,
		}
	}

	system, conversation, err := SplitSystem(req.Messages, p.policy)
	if err != nil {
		return nil, inputError(p.Name(), err)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(conversation)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, msg := range conversation {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.maxTokens(),
		Temperature: openaiTemperature(req.Temperature),
		Stream:      true,
	}
	p.applyOptions(&apiReq, req.Options)

	p.logger.Debug("opening stream",
		zap.String("provider", p.Name()),
		zap.String("model", req.Model),
		zap.Int("messages", len(messages)),
	)

	stream, err := p.client.CreateChatCompletionStream(ctx, apiReq)
	if err != nil {
		se := openaiError(ctx, p.Name(), err)
		p.logger.Warn("stream rejected", zap.String("provider", p.Name()), zap.Error(se))
		return nil, se
	}

	return NewTextStream(p.Name(), &openaiSource{ctx: ctx, provider: p.Name(), stream: stream}, p.logger), nil
}

// applyOptions copies the provider options go-openai has typed fields for.
func (p *OpenAIClient) applyOptions(apiReq *openai.ChatCompletionRequest, options map[string]any) {
	for key, value := range options {
		ok := true
		switch key {
		case "top_p":
			var f float64
			if f, ok = toFloat(value); ok {
				apiReq.TopP = float32(f)
			}
		case "presence_penalty":
			var f float64
			if f, ok = toFloat(value); ok {
				apiReq.PresencePenalty = float32(f)
			}
		case "frequency_penalty":
			var f float64
			if f, ok = toFloat(value); ok {
				apiReq.FrequencyPenalty = float32(f)
			}
		case "seed":
			var f float64
			if f, ok = toFloat(value); ok {
				seed := int(f)
				apiReq.Seed = &seed
			}
		case "user":
			apiReq.User, ok = value.(string)
		case "stop":
			apiReq.Stop, ok = toStrings(value)
		default:
			ok = false
		}
		if !ok {
			p.logger.Debug("ignoring option", zap.String("provider", p.Name()), zap.String("option", key))
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case string:
		return []string{s}, true
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

// openaiError maps go-openai failures onto StreamError kinds.
func openaiError(ctx context.Context, provider string, err error) *StreamError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return transportError(provider, ctxErr)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StreamError{
			Provider:   provider,
			Kind:       kindForStatus(apiErr.HTTPStatusCode),
			StatusCode: apiErr.HTTPStatusCode,
			Type:       apiErr.Type,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StreamError{
			Provider:   provider,
			Kind:       kindForStatus(reqErr.HTTPStatusCode),
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	return transportError(provider, err)
}

type openaiSource struct {
	ctx      context.Context
	provider string
	stream   *openai.ChatCompletionStream
}

func (s *openaiSource) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", openaiError(s.ctx, s.provider, err)
		}
		// Role-only and usage chunks carry no text.
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *openaiSource) Close() error {
	return s.stream.Close()
}

// openaiTemperature keeps an explicit 0 on the wire. go-openai omits a zero
// temperature, and the API then samples at its own default of 1.
func openaiTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
