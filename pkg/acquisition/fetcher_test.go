package acquisition

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raywall/healthdata-loader/pkg/compliance"
	"github.com/raywall/healthdata-loader/pkg/registry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDoer permite controlar cada resposta HTTP.
type MockDoer struct {
	DoFunc func(req *http.Request) (*http.Response, error)
	calls  int32
}

func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.DoFunc(req)
}

func (m *MockDoer) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

const validBody = `{"data":[{"municipio_nome":"Recife"}],"metadata":{"total_municipalities":1,"data_sources":["DataSUS"]}}`

func testSource(retries int) registry.SourceConfig {
	return registry.SourceConfig{
		ID:                 "datasus",
		Name:               "DataSUS",
		BaseURL:            "http://datasus.test",
		Timeout:            time.Second,
		RetryAttempts:      retries,
		RateLimitPerMinute: 6000,
		CacheTTL:           time.Hour,
	}
}

func newTestFetcher(doer HTTPDoer) *HTTPFetcher {
	f := NewHTTPFetcher(zerolog.Nop())
	f.Client = doer
	f.Backoff = 0
	return f
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("sucesso na primeira tentativa", func(t *testing.T) {
		doer := &MockDoer{DoFunc: func(req *http.Request) (*http.Response, error) {
			return respond(200, validBody), nil
		}}

		p, err := newTestFetcher(doer).Fetch(context.Background(), FetchRequest{Source: testSource(3), URL: "http://backend.test/x"})

		require.NoError(t, err)
		assert.Len(t, p.Data, 1)
		assert.Equal(t, 1, doer.Calls())
	})

	t.Run("conectividade é repetida até o limite", func(t *testing.T) {
		doer := &MockDoer{DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}}

		_, err := newTestFetcher(doer).Fetch(context.Background(), FetchRequest{Source: testSource(2), URL: "http://backend.test/x"})

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, Connectivity, fe.Kind)
		assert.Equal(t, 3, fe.Attempts)
		assert.Equal(t, 3, doer.Calls())
	})

	t.Run("upstream recupera na segunda tentativa", func(t *testing.T) {
		doer := &MockDoer{}
		doer.DoFunc = func(req *http.Request) (*http.Response, error) {
			if doer.Calls() == 1 {
				return respond(503, "indisponível"), nil
			}
			return respond(200, validBody), nil
		}

		p, err := newTestFetcher(doer).Fetch(context.Background(), FetchRequest{Source: testSource(3), URL: "http://backend.test/x"})

		require.NoError(t, err)
		assert.NotNil(t, p)
		assert.Equal(t, 2, doer.Calls())
	})

	t.Run("status não 2xx vira upstream", func(t *testing.T) {
		doer := &MockDoer{DoFunc: func(req *http.Request) (*http.Response, error) {
			return respond(500, "boom"), nil
		}}

		_, err := newTestFetcher(doer).Fetch(context.Background(), FetchRequest{Source: testSource(0), URL: "http://backend.test/x"})

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, Upstream, fe.Kind)
		assert.Equal(t, 500, fe.StatusCode)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("payload malformado não é repetido", func(t *testing.T) {
		doer := &MockDoer{DoFunc: func(req *http.Request) (*http.Response, error) {
			return respond(200, `{"data":"x"}`), nil
		}}

		_, err := newTestFetcher(doer).Fetch(context.Background(), FetchRequest{Source: testSource(3), URL: "http://backend.test/x"})

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, Malformed, fe.Kind)
		assert.ErrorIs(t, err, ErrMalformedPayload)
		assert.Equal(t, 1, doer.Calls())
	})

	t.Run("envia cabeçalhos de compliance e token", func(t *testing.T) {
		var got http.Header
		doer := &MockDoer{DoFunc: func(req *http.Request) (*http.Response, error) {
			got = req.Header.Clone()
			return respond(200, validBody), nil
		}}
		src := testSource(0)
		src.RequiresAuth = true
		src.AuthToken = "segredo"
		headers := compliance.NewGate(compliance.DefaultConfig()).BuildHeaders("")

		_, err := newTestFetcher(doer).Fetch(context.Background(), FetchRequest{Source: src, URL: "http://backend.test/x", Headers: headers})

		require.NoError(t, err)
		assert.Equal(t, "Bearer segredo", got.Get("Authorization"))
		assert.Equal(t, compliance.DefaultHeaderPurpose, got.Get(compliance.HeaderPurpose))
		assert.Equal(t, "730", got.Get(compliance.HeaderRetention))
		assert.Equal(t, "LEGITIMATE_INTEREST_PUBLIC_DATA", got.Get(compliance.HeaderLegalBasis))
		assert.Equal(t, userAgent, got.Get("User-Agent"))
	})

	t.Run("contexto cancelado interrompe as tentativas", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		doer := &MockDoer{DoFunc: func(req *http.Request) (*http.Response, error) {
			cancel()
			return nil, req.Context().Err()
		}}

		_, err := newTestFetcher(doer).Fetch(ctx, FetchRequest{Source: testSource(5), URL: "http://backend.test/x"})

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, Connectivity, fe.Kind)
		assert.Equal(t, 1, doer.Calls())
	})
}
