package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"crm-handlers/internal/common/auth"
	"crm-handlers/internal/common/config"
	"crm-handlers/internal/common/crm"
	"crm-handlers/internal/common/errors"
	"crm-handlers/internal/common/logger"
	"crm-handlers/internal/common/observability"
	"crm-handlers/internal/common/validation"
	"crm-handlers/internal/pipeline"
	"crm-handlers/pkg/registry"

	apc "crm-handlers/internal/handlers/account/post-create"
)

const maxEnvelopeBytes = 1 << 20

// retryWithBackoff attempts to execute a function with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting handler host...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Init data API client ---
	var tokens auth.TokenSource
	if cfg.CRM.TokenURL != "" {
		tokens = auth.NewTokenClient(cfg.CRM.TokenURL, cfg.CRM.ClientID, cfg.CRM.ClientSecret, cfg.CRM.Scope)
	} else {
		zapLog.Warn("crm.token_url not configured, sending unauthenticated requests")
		tokens = auth.StaticTokenSource("")
	}

	crmClient := crm.NewClient(cfg.CRM.BaseURL, tokens, time.Duration(cfg.CRM.Timeout)*time.Millisecond)

	err = retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return crmClient.HealthCheck(ctx)
	}, 10, 2*time.Second, zapLog, "CRM data API connection")
	if err != nil {
		zapLog.Fatal("crm data api unreachable after retries", zap.Error(err))
	}
	zapLog.Info("CRM data API connected successfully")

	// --- Construct handlers ---
	postCreate, err := apc.NewHandler(apc.HandlerOptions{
		AppConfig: cfg,
		Logger:    log,
		Data:      crmClient,
	})
	if err != nil {
		zapLog.Fatal("failed to construct account post-create handler", zap.Error(err))
	}

	handlers := map[string]pipeline.Handler{
		postCreate.Name(): postCreate,
	}

	// --- Register steps from the manifest ---
	reg, err := registry.Load(cfg.Registrations)
	if err != nil {
		zapLog.Fatal("failed to load step registrations", zap.Error(err), zap.String("path", cfg.Registrations))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("invalid step registrations", zap.Error(err))
	}

	dispatcher := pipeline.NewDispatcher(log)
	for _, step := range reg.Steps {
		handler, ok := handlers[step.Handler]
		if !ok {
			zapLog.Fatal("step references unknown handler",
				zap.String("step", step.ID), zap.String("handler", step.Handler))
		}
		dispatcher.Register(pipeline.Step{
			ID:      step.ID,
			Message: step.Message,
			Entity:  step.Entity,
			Stage:   pipeline.Stage(step.Stage),
			Mode:    pipeline.Mode(step.Mode),
			Rank:    step.Rank,
		}, handler)
		zapLog.Info("Handler registered",
			zap.String("step", step.ID),
			zap.String("message", step.Message),
			zap.String("entity", step.Entity),
			zap.String("stage", step.Stage),
			zap.String("mode", step.Mode),
		)
	}

	// --- HTTP surface ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := crmClient.HealthCheck(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	mux.HandleFunc(cfg.Host.HookPath, hookHandler(dispatcher, obs, log))

	server := &http.Server{
		Addr:              cfg.Host.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Service-hook listener started",
			zap.String("address", cfg.Host.ListenAddress),
			zap.String("hookPath", cfg.Host.HookPath),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down handler host...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Host.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Handler host stopped")
}

// hookHandler receives one service-hook callback per pipeline event,
// validates the envelope, and dispatches it synchronously. Handler failures
// never surface as HTTP errors: the platform's create transaction must not
// be failed by automation, so only transport-level problems return non-200.
func hookHandler(dispatcher *pipeline.Dispatcher, obs *observability.Observability, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxEnvelopeBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		result, err := validation.ValidateEnvelope(body)
		if err != nil {
			http.Error(w, "envelope validation error", http.StatusBadRequest)
			return
		}
		if !result.Valid {
			msgs := result.GetErrorMessages()
			log.WithError(errors.NewEnvelopeValidationFailedError(strings.Join(msgs, "; "))).
				Warn("Rejected invalid event envelope", map[string]interface{}{
					"errors": msgs,
				})
			http.Error(w, strings.Join(msgs, "; "), http.StatusBadRequest)
			return
		}

		event, err := pipeline.DecodeEvent(body)
		if err != nil {
			log.WithError(errors.NewEnvelopeParsingFailedError(err)).
				Warn("Rejected malformed event envelope", nil)
			http.Error(w, "malformed event envelope", http.StatusBadRequest)
			return
		}

		if event.CorrelationID == "" {
			event.CorrelationID = uuid.New().String()
		}

		// Scope data calls to the acting user for this invocation.
		ctx := crm.WithCallerContext(r.Context(), event.UserID)

		outcomes := dispatcher.Dispatch(ctx, event)

		for _, outcome := range outcomes {
			result := "completed"
			switch {
			case outcome.Skipped:
				result = "skipped"
			case outcome.FailedCount() > 0:
				result = "partial"
			}
			obs.RecordEventProcessed(ctx, outcome.Handler, result)
			obs.RecordEventDuration(ctx, outcome.Handler, outcome.Duration)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"correlationId": event.CorrelationID,
			"outcomes":      outcomes,
		})
	}
}
