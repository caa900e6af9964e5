package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"papergen/internal/models"
)

const maxFragmentLine = 1 << 20

// OllamaProvider talks to a local Ollama server's /api/generate endpoint.
type OllamaProvider struct {
	baseURL    *url.URL
	model      string
	httpClient *http.Client
	client     *api.Client
}

// NewOllamaProvider creates a provider for the given server URL and model.
// The HTTP client has no timeout: generation blocks until the model finishes
// or the connection drops.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	httpClient := &http.Client{}
	return &OllamaProvider{
		baseURL:    base,
		model:      model,
		httpClient: httpClient,
		client:     api.NewClient(base, httpClient),
	}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

// Ping checks that the server is reachable.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	if err := p.client.Heartbeat(ctx); err != nil {
		return &ProviderError{Provider: p.Name(), Err: err}
	}
	return nil
}

// Generate posts the prompt with streaming enabled and returns a stream over
// the newline-delimited JSON body.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (FragmentStream, error) {
	stream := true
	body, err := json.Marshal(api.GenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: &stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	endpoint := p.baseURL.JoinPath("api", "generate")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(msg))),
		}
	}

	return NewNDJSONStream(p.Name(), resp.Body), nil
}

// NDJSONStream decodes one fragment per non-empty line. Lines longer than
// maxFragmentLine are drained and reported as malformed.
type NDJSONStream struct {
	provider string
	body     io.ReadCloser
	reader   *bufio.Reader
}

// NewNDJSONStream wraps a newline-delimited JSON body.
func NewNDJSONStream(provider string, body io.ReadCloser) *NDJSONStream {
	return &NDJSONStream{
		provider: provider,
		body:     body,
		reader:   bufio.NewReaderSize(body, 64*1024),
	}
}

type generateLine struct {
	api.GenerateResponse
	Error string `json:"error,omitempty"`
}

func (s *NDJSONStream) Next() (models.Fragment, error) {
	for {
		line, tooLong, err := s.readLine()
		if errors.Is(err, io.EOF) {
			return models.Fragment{}, io.EOF
		}
		if err != nil {
			return models.Fragment{}, &ProviderError{Provider: s.provider, Err: err}
		}
		if tooLong {
			return models.Fragment{}, fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedFragment, maxFragmentLine)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var msg generateLine
		if err := json.Unmarshal(line, &msg); err != nil {
			return models.Fragment{}, fmt.Errorf("%w: %q: %v", ErrMalformedFragment, truncateForLog(string(line), 200), err)
		}
		if msg.Error != "" {
			return models.Fragment{}, &ProviderError{Provider: s.provider, Err: errors.New(msg.Error)}
		}
		return models.Fragment{Response: msg.Response, Done: msg.Done}, nil
	}
}

// readLine returns the next line. A final line without a trailing newline is
// still returned; io.EOF comes only once nothing is left.
func (s *NDJSONStream) readLine() (line []byte, tooLong bool, err error) {
	for {
		chunk, rerr := s.reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxFragmentLine {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		switch {
		case rerr == nil:
			return line, tooLong, nil
		case errors.Is(rerr, bufio.ErrBufferFull):
			continue
		case errors.Is(rerr, io.EOF):
			if len(line) == 0 && !tooLong {
				return nil, false, io.EOF
			}
			return line, tooLong, nil
		default:
			return nil, false, rerr
		}
	}
}

func (s *NDJSONStream) Close() error {
	return s.body.Close()
}

func truncateForLog(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
