package acquisition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raywall/healthdata-loader/pkg/registry"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTTPDoer permite mockar o cliente HTTP nos testes.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client é o cliente padrão. O timeout efetivo vem da política de cada fonte.
var Client HTTPDoer = &http.Client{}

const (
	userAgent   = "healthdata-loader/1.0"
	maxBodySize = 32 << 20
)

// FetchRequest descreve uma busca real. Source define timeout, tentativas,
// rate limit e autenticação.
type FetchRequest struct {
	Source  registry.SourceConfig
	URL     string
	Headers map[string]string
	Limiter *rate.Limiter
}

// Fetcher busca o payload de agregação. Erros devolvidos são sempre *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*Payload, error)
}

// HTTPFetcher faz até 1 + RetryAttempts tentativas, cada uma limitada pelo
// timeout da fonte e precedida pela espera no rate limiter.
type HTTPFetcher struct {
	Client  HTTPDoer
	Backoff time.Duration
	Log     zerolog.Logger
}

func NewHTTPFetcher(log zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		Client:  Client,
		Backoff: 500 * time.Millisecond,
		Log:     log.With().Str("component", "fetcher").Logger(),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, req FetchRequest) (*Payload, error) {
	attempts := 1 + req.Source.RetryAttempts
	var last *FetchError

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && f.Backoff > 0 {
			select {
			case <-ctx.Done():
				last.Err = errors.Join(last.Err, ctx.Err())
				return nil, last
			case <-time.After(f.Backoff * time.Duration(attempt-1)):
			}
		}

		payload, ferr := f.attempt(ctx, req)
		if ferr == nil {
			return payload, nil
		}
		ferr.Attempts = attempt
		last = ferr

		f.Log.Warn().
			Str("source", req.Source.ID).
			Str("url", req.URL).
			Int("status", ferr.StatusCode).
			Str("failure", string(ferr.Kind)).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Err(ferr.Err).
			Msg("tentativa de busca falhou")

		if !ferr.retryable() || ctx.Err() != nil {
			break
		}
	}
	return nil, last
}

func (f *HTTPFetcher) attempt(ctx context.Context, req FetchRequest) (*Payload, *FetchError) {
	fail := func(kind FailureKind, status int, err error) *FetchError {
		return &FetchError{Kind: kind, Source: req.Source.ID, URL: req.URL, StatusCode: status, Err: err}
	}

	attemptCtx := ctx
	if req.Source.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, req.Source.Timeout)
		defer cancel()
	}

	if req.Limiter != nil {
		if err := req.Limiter.Wait(attemptCtx); err != nil {
			return nil, fail(Connectivity, 0, fmt.Errorf("rate limiter: %w", err))
		}
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fail(Connectivity, 0, fmt.Errorf("erro ao criar request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Source.RequiresAuth && req.Source.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Source.AuthToken)
	}

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return nil, fail(Connectivity, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fail(Connectivity, resp.StatusCode, fmt.Errorf("erro lendo resposta: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(Upstream, resp.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, snippet(body)))
	}

	payload, err := ParsePayload(body)
	if err != nil {
		return nil, fail(Malformed, resp.StatusCode, err)
	}
	return payload, nil
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
