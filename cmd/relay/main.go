package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"support-bot/internal/app"
	"support-bot/internal/cache"
	"support-bot/internal/httputil"
	"support-bot/internal/llm"
	"support-bot/internal/metrics"
	"support-bot/internal/queue"
	"support-bot/internal/storage"
	"support-bot/internal/store"
)

const rootMessage = "Local Support Bot API is running"

type queryParams struct {
	Question string `query:"question" validate:"required"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	if err := run(deps); err != nil {
		deps.Log.Error("relay stopped", "err", err)
		_ = deps.Close()
		os.Exit(1)
	}
	if err := deps.Close(); err != nil {
		deps.Log.Warn("failed to close dependencies", "err", err)
	}
}

func run(deps app.Deps) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := llm.ReadyOptions{
		Attempts:     deps.Config.ReadyAttempts,
		BaseDelay:    deps.Config.ReadyBaseDelay,
		MaxDelay:     deps.Config.ReadyMaxDelay,
		ProbeTimeout: deps.Config.ReadyProbeTimeout,
	}
	if err := llm.WaitReady(ctx, deps.Log, deps.Generator, ready); err != nil {
		return fmt.Errorf("failed to initialize inference backend: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("relay listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		deps.Log.Info("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log, httputil.RouterOptions{
		AllowedOrigins: deps.Config.CORSAllowedOrigins,
		Timeout:        deps.Config.RequestTimeout,
		Middlewares:    []func(http.Handler) http.Handler{deps.Metrics.Middleware},
	})

	r.Get("/", rootHandler)
	r.Post("/upload", uploadHandler(deps))
	r.Get("/query", queryHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	r.Handle("/metrics", deps.Metrics.Handler())
	return r
}

func rootHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if maxFileSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)
		}

		mr, err := r.MultipartReader()
		if err != nil {
			unprocessable(deps.Log, w, "file is required", err)
			return
		}
		part, err := nextFilePart(mr)
		if err != nil {
			if tooLarge(err) {
				httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusRequestEntityTooLarge)
				return
			}
			unprocessable(deps.Log, w, "file is required", err)
			return
		}
		defer part.Close()

		filename := part.FileName()
		if err := storage.ValidateKey(filename); err != nil {
			unprocessable(deps.Log, w, "invalid filename", err)
			return
		}
		log := deps.Log.With("filename", filename, "request_id", middleware.GetReqID(ctx))

		info, err := deps.Storage.Put(ctx, filename, part, storage.PutOptions{
			Size:        -1,
			ContentType: part.Header.Get("Content-Type"),
		})
		if err != nil {
			if tooLarge(err) {
				httputil.Fail(log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusRequestEntityTooLarge)
				return
			}
			httputil.Fail(log, w, "failed to save file", err, http.StatusInternalServerError)
			return
		}
		deps.Metrics.AddUploadBytes(info.Size)
		log.Info("document stored", "bytes", info.Size)

		recordUpload(ctx, deps, log, info)

		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"filename": filename,
			"status":   "uploaded",
		})
	}
}

// recordUpload notifies the optional ledger and event bus. Failures are logged, never returned:
// the document is already stored.
func recordUpload(ctx context.Context, deps app.Deps, log *slog.Logger, info storage.ObjectInfo) {
	now := time.Now().UTC()
	if err := deps.Ledger.RecordUpload(ctx, store.Upload{Filename: info.Key, Size: info.Size, UploadedAt: now}); err != nil {
		log.Warn("failed to record upload", "err", err)
	}
	event := queue.Event{
		Type:       queue.EventTypeDocumentUploaded,
		Filename:   info.Key,
		Size:       info.Size,
		UploadedAt: now,
	}
	if err := queue.PublishWithRetry(ctx, deps.Events, event, 3, 100*time.Millisecond); err != nil {
		log.Warn("failed to publish upload event", "err", err)
	}
}

func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errors.New("multipart field \"file\" missing")
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}

func queryHandler(deps app.Deps) http.HandlerFunc {
	cacheTTL := time.Duration(deps.Config.CacheTTL) * time.Second

	return func(w http.ResponseWriter, r *http.Request) {
		params := queryParams{Question: r.URL.Query().Get("question")}
		if err := httputil.Validator.Struct(&params); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		ctx := r.Context()
		log := deps.Log.With("request_id", middleware.GetReqID(ctx))
		log.Info("received question", "question", params.Question, "model", deps.Generator.Model())

		cacheKey := cache.GenerateCacheKey(deps.Generator.Model(), params.Question)
		if answer, ok, err := deps.Cache.GetAnswer(ctx, cacheKey); err != nil {
			log.Warn("cache lookup failed", "err", err)
		} else if ok {
			log.Info("cache hit")
			deps.Metrics.ObserveGeneration(metrics.OutcomeCached, 0)
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
			return
		}

		start := time.Now()
		answer, err := deps.Generator.Generate(ctx, params.Question)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			status, outcome := classifyGenerateError(err)
			deps.Metrics.ObserveGeneration(outcome, elapsed)
			msg := generateErrorMessage(err)
			log.Error(msg, "outcome", outcome, "status", status)
			if !deps.Config.StatusCodeErrors {
				status = http.StatusOK
			}
			httputil.WriteJSON(w, status, map[string]string{"error": msg})
			return
		}
		deps.Metrics.ObserveGeneration(metrics.OutcomeOK, elapsed)
		log.Info("backend answered", "duration_ms", int64(elapsed*1000))

		if err := deps.Cache.SetAnswer(ctx, cacheKey, answer, cacheTTL); err != nil {
			log.Warn("failed to cache answer", "err", err)
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
	}
}

// classifyGenerateError maps a failure kind to an HTTP status and a metrics outcome.
func classifyGenerateError(err error) (int, string) {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadGateway, metrics.OutcomeBackend
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return http.StatusGatewayTimeout, metrics.OutcomeTimeout
	}
	return http.StatusServiceUnavailable, metrics.OutcomeUnavailable
}

func generateErrorMessage(err error) string {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return "Error querying AI: " + err.Error()
}

func unprocessable(log *slog.Logger, w http.ResponseWriter, message string, err error) {
	log.Warn(message, "err", err)
	httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": message})
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
