package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"papergen/internal/models"
)

// ErrAIUnavailable is returned when the OpenAI-compatible backend is not configured.
var ErrAIUnavailable = errors.New("openai integration is not configured")

// OpenAIProvider streams chat completions from an OpenAI-compatible endpoint,
// including Ollama's /v1 compatibility layer.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, apiEndpoint, model string) *OpenAIProvider {
	if apiKey == "" {
		return &OpenAIProvider{}
	}
	cfg := openai.DefaultConfig(apiKey)
	if apiEndpoint != "" {
		cfg.BaseURL = apiEndpoint
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) disabled() bool {
	return p.client == nil || p.model == ""
}

func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if p.disabled() {
		return ErrAIUnavailable
	}
	if _, err := p.client.ListModels(ctx); err != nil {
		return providerErrorFromOpenAI(p.Name(), err)
	}
	return nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (FragmentStream, error) {
	if p.disabled() {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrAIUnavailable}
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: true,
	})
	if err != nil {
		return nil, providerErrorFromOpenAI(p.Name(), err)
	}
	return &chatStream{provider: p.Name(), stream: stream}, nil
}

// chatStream adapts chat completion deltas to fragments. The end of the
// stream is reported as a done fragment.
type chatStream struct {
	provider string
	stream   *openai.ChatCompletionStream
	finished bool
}

func (s *chatStream) Next() (models.Fragment, error) {
	if s.finished {
		return models.Fragment{}, io.EOF
	}
	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		s.finished = true
		return models.Fragment{Done: true}, nil
	}
	if err != nil {
		return models.Fragment{}, providerErrorFromOpenAI(s.provider, err)
	}

	var frag models.Fragment
	for _, choice := range resp.Choices {
		frag.Response += choice.Delta.Content
	}
	return frag, nil
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}

func providerErrorFromOpenAI(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: provider, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: provider, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ProviderError{Provider: provider, Err: fmt.Errorf("request openai: %w", err)}
}
