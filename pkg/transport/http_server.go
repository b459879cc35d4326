package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/healthdata-loader/pkg/engine"
	"github.com/rs/zerolog"
)

// NewRouter expõe o ciclo para operação manual:
//
//	POST /cycles?purpose=...  executa um ciclo
//	GET  /environment         sonda fontes, compliance e cache
//	GET  /health              liveness
func NewRouter(runner CycleRunner, env EnvironmentChecker, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/cycles", cycleHandler(runner)).Methods(http.MethodPost)
	if env != nil {
		r.HandleFunc("/environment", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, env.ValidateEnvironment(req.Context()))
		}).Methods(http.MethodGet)
	}
	return ObservabilityMiddleware(logger)(r)
}

func cycleHandler(runner CycleRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := runner.RunCycle(r.Context(), r.URL.Query().Get("purpose"))
		switch {
		case errors.Is(err, engine.ErrPurposeNotAllowed):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		case err != nil:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("ciclo HTTP falhou")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cycle failed"})
		default:
			writeJSON(w, http.StatusOK, Summarize(res))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StartHTTPServer bloqueia até o contexto ser cancelado e então encerra o
// servidor de forma graciosa.
func StartHTTPServer(ctx context.Context, port int, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("servidor HTTP ouvindo")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", time.Since(rw.startTime).Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga o correlation id, mede a latência e loga
// cada requisição.
func ObservabilityMiddleware(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			logger := base.With().Str("correlation_id", corrID).Logger()
			ctx := logger.WithContext(r.Context())
			ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Msg("request completed")
		})
	}
}
