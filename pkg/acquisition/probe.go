package acquisition

import (
	"context"
	"net/http"
	"sync"

	"github.com/raywall/healthdata-loader/pkg/registry"
	"github.com/rs/zerolog"
)

// Probe verifica em paralelo se a URL base de cada fonte responde a um HEAD.
// Qualquer resposta abaixo de 500 conta como acessível.
func Probe(ctx context.Context, client HTTPDoer, reg *registry.Registry, ids []string, log zerolog.Logger) map[string]bool {
	if client == nil {
		client = Client
	}
	if len(ids) == 0 {
		ids = reg.IDs()
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[string]bool, len(ids))
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			ok := probeOne(ctx, client, reg, id)
			if !ok {
				log.Warn().Str("source", id).Msg("fonte inacessível")
			}
			mu.Lock()
			out[id] = ok
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return out
}

func probeOne(ctx context.Context, client HTTPDoer, reg *registry.Registry, id string) bool {
	src, err := reg.Get(id)
	if err != nil || src.BaseURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, src.Timeout)
	defer cancel()

	if err := reg.Limiter(src.ID).Wait(ctx); err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, src.BaseURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	if src.RequiresAuth {
		req.Header.Set("Authorization", "Bearer "+src.AuthToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
