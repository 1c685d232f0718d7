// Package httpapi is the operations surface of the bot: health and readiness
// probes, Prometheus metrics, a status snapshot, and a synchronous art
// endpoint that returns the composite PNG directly.
package httpapi

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"artbot/internal/pipeline"
	"artbot/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Run(ctx context.Context, cmd pipeline.Command) (pipeline.Artifact, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints; image/png is not in the default type list.
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsMethods(),
			AllowedHeaders: corsHeaders(),
			ExposedHeaders: []string{"Content-Disposition", "X-Artbot-Elapsed-Ms"},
			MaxAge:         300,
		}))
	}
	r.Use(MetricsMiddleware)

	r.Get("/healthz", healthzHandler)
	r.Get("/readyz", readyzHandler(svc))
	r.Get("/status", statusHandler(svc))
	r.Post("/v1/art", artHandler(svc))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

// healthzHandler godoc
//
//	@Summary	Liveness probe
//	@Tags		ops
//	@Produce	plain
//	@Success	200	{string}	string	"ok"
//	@Router		/healthz [get]
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyzHandler godoc
//
//	@Summary	Readiness probe
//	@Description	Ready once the Slack session is connected.
//	@Tags		ops
//	@Produce	plain
//	@Success	200	{string}	string	"ready"
//	@Failure	503	{string}	string	"connecting"
//	@Router		/readyz [get]
func readyzHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("connecting"))
	}
}

// statusHandler godoc
//
//	@Summary	Runtime status
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	types.StatusResponse
//	@Router		/status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// artHandler godoc
//
//	@Summary	Draw a prompt
//	@Description	Generates images for the prompt and returns them composed into one PNG grid.
//	@Tags		art
//	@Accept		json
//	@Produce	png
//	@Param		request	body		types.ArtRequest	true	"Prompt"
//	@Success	200		{file}		binary
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	415		{object}	types.ErrorResponse
//	@Failure	502		{object}	types.ErrorResponse
//	@Failure	504		{object}	types.ErrorResponse
//	@Router		/v1/art [post]
func artHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ArtRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		event(r, lvl, LevelInfo).Str("prompt", req.Prompt).Msg("art start")

		// Shutdown cancels the backend call too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		art, err := svc.Run(ctx, pipeline.Command{
			Prompt:    req.Prompt,
			RequestID: middleware.GetReqID(r.Context()),
		})
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status, kind := errorStatus(err)
			IncrementArtError(kind)
			writeJSONErrorKind(w, status, err.Error(), kind)
			event(r, lvl, LevelError).Int("status", status).Str("kind", kind).Dur("dur", time.Since(start)).Err(err).Msg("art end")
			return
		}

		h := w.Header()
		h.Set("Content-Type", "image/png")
		h.Set("Content-Length", strconv.Itoa(len(art.PNG)))
		h.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": art.Filename}))
		h.Set("X-Artbot-Elapsed-Ms", strconv.FormatInt(art.Elapsed.Milliseconds(), 10))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(art.PNG)
		event(r, lvl, LevelInfo).Int("status", http.StatusOK).Int("bytes", len(art.PNG)).Dur("dur", time.Since(start)).Msg("art end")
	}
}
