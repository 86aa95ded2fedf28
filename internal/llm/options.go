package llm

import (
	"net/http"

	"go.uber.org/zap"
)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
	policy     SystemPolicy
	logger     *zap.Logger
}

// Option configures a provider client.
type Option func(*clientOptions)

// WithBaseURL overrides the provider's API base URL.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for requests. Timeouts, if any,
// belong on this client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithSystemPolicy sets how multiple system messages are handled.
func WithSystemPolicy(p SystemPolicy) Option {
	return func(o *clientOptions) { o.policy = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

func buildOptions(opts []Option) clientOptions {
	o := clientOptions{
		httpClient: &http.Client{},
		policy:     SystemFirst,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.policy == "" {
		o.policy = SystemFirst
	}
	return o
}
