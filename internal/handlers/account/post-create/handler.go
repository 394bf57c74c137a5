// Package accountpostcreate reacts to account creation: it creates a related
// contact, applies default field values to the account, creates a follow-up
// task, and, when the account declares a parent, stamps a note on the parent.
// Each operation is independently fault-tolerant and nothing ever propagates
// back to the host's create transaction.
package accountpostcreate

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"crm-handlers/internal/common/config"
	"crm-handlers/internal/common/errors"
	"crm-handlers/internal/common/logger"
	"crm-handlers/internal/models"
	"crm-handlers/internal/pipeline"
)

const HandlerName = "account-post-create"

// namePlaceholder substitutes for an account display name the post-image did
// not carry at all. A present-but-empty name is used as-is.
const namePlaceholder = "(no name)"

type Handler struct {
	config  *Config
	logger  logger.Logger
	service *Service
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	Data         DataService
	Clock        func() time.Time
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", HandlerName, err)
	}

	if opts.Data == nil {
		return nil, fmt.Errorf("%s requires a data service", HandlerName)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	handler := &Handler{
		config: handlerConfig,
		logger: loggerInstance,
	}

	handler.service = NewService(ServiceDependencies{
		Logger: loggerInstance,
		Data:   opts.Data,
		Clock:  opts.Clock,
	}, handler.config)

	return handler, nil
}

func (h *Handler) Name() string {
	return HandlerName
}

// Step returns the registration this handler expects: synchronous
// post-operation on account creation.
func (h *Handler) Step() pipeline.Step {
	return pipeline.Step{
		ID:      HandlerName,
		Message: pipeline.MessageCreate,
		Entity:  models.EntityAccount,
		Stage:   pipeline.StagePostOperation,
		Mode:    pipeline.ModeSynchronous,
	}
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

// Execute runs the four leaf operations in fixed order against the account
// captured in the post-image. It never returns an error and never panics:
// every downstream failure becomes an OperationResult inside the returned
// Outcome, logged once as a single structured record.
func (h *Handler) Execute(ctx context.Context, event *pipeline.Event) (outcome *pipeline.Outcome) {
	started := time.Now()

	outcome = &pipeline.Outcome{
		Handler:       HandlerName,
		CorrelationID: event.CorrelationID,
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Account post-create handler panicked", map[string]interface{}{
				"handler":       HandlerName,
				"correlationId": event.CorrelationID,
				"errorCode":     string(errors.ErrCodeHandlerPanic),
				"panic":         fmt.Sprint(r),
				"stack":         string(debug.Stack()),
			})
			outcome.Results = append(outcome.Results, pipeline.OperationResult{
				Operation: "handler",
				Success:   false,
				Message:   fmt.Sprintf("panic: %v", r),
			})
		}
		outcome.Duration = time.Since(started)
	}()

	if !h.config.Enabled {
		h.logger.Info("Handler disabled by configuration", map[string]interface{}{
			"handler": HandlerName,
		})
		outcome.Skipped = true
		return outcome
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	// The platform does not guarantee the registered post-image is present.
	// Absence is a documented skip, not an error.
	image, ok := event.PostImage(h.config.PostImageName)
	if !ok {
		h.logger.Warn("Post-image missing, skipping account automation", map[string]interface{}{
			"handler":       HandlerName,
			"postImage":     h.config.PostImageName,
			"errorCode":     string(errors.ErrCodePostImageMissing),
			"correlationId": event.CorrelationID,
		})
		outcome.Skipped = true
		return outcome
	}

	accountID := image.ID
	accountName, present := image.GetString(models.AttrAccountName)
	if !present {
		accountName = namePlaceholder
	}

	h.logger.Info("Processing account post-create event", map[string]interface{}{
		"handler":       HandlerName,
		"accountId":     accountID,
		"accountName":   accountName,
		"userId":        event.UserID,
		"correlationId": event.CorrelationID,
	})

	// Fixed order, independent operations: a failure in any one never
	// suppresses the ones after it.
	outcome.Results = []pipeline.OperationResult{
		h.service.CreateRelatedContact(ctx, accountID, accountName),
		h.service.ApplyAccountDefaults(ctx, accountID),
		h.service.CreateFollowUpTask(ctx, accountID, accountName),
		h.service.ProcessParentAccount(ctx, image, accountName),
	}

	outcome.Duration = time.Since(started)
	h.logger.Info("Account post-create automation finished", outcome.Fields())

	return outcome
}
