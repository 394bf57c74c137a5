package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"crm-handlers/internal/common/errors"
	"crm-handlers/internal/common/logger"
	"crm-handlers/internal/common/metrics"
)

// Handler is one registered pipeline step implementation. Execute must not
// return an error or panic: downstream failures are reported inside the
// Outcome so the host's own transaction is never failed by automation.
type Handler interface {
	Name() string
	Execute(ctx context.Context, event *Event) *Outcome
}

// Step describes when a handler fires. It mirrors one entry of the
// step-registration manifest.
type Step struct {
	ID      string
	Message string
	Entity  string
	Stage   Stage
	Mode    Mode
	Rank    int
}

// Matches reports whether the step fires for the given event.
func (s Step) Matches(event *Event) bool {
	return s.Message == event.MessageName &&
		s.Entity == event.EntityName &&
		s.Stage == event.Stage &&
		s.Mode == event.Mode
}

type registration struct {
	step    Step
	handler Handler
}

// Dispatcher routes pipeline events to registered handlers, synchronously and
// in rank order. It is the last line of defense against anything escaping a
// handler: a panicking handler is recovered, logged, and reported as a failed
// outcome.
type Dispatcher struct {
	logger logger.Logger
	regs   []registration
}

func NewDispatcher(log logger.Logger) *Dispatcher {
	return &Dispatcher{logger: log}
}

// Register adds a handler for the given step.
func (d *Dispatcher) Register(step Step, h Handler) {
	d.regs = append(d.regs, registration{step: step, handler: h})
	sort.SliceStable(d.regs, func(i, j int) bool {
		return d.regs[i].step.Rank < d.regs[j].step.Rank
	})
}

// Steps returns the registered steps in rank order.
func (d *Dispatcher) Steps() []Step {
	steps := make([]Step, 0, len(d.regs))
	for _, r := range d.regs {
		steps = append(steps, r.step)
	}
	return steps
}

// Dispatch invokes every handler whose step matches the event and returns
// their outcomes. Handlers run to completion one after another; one handler's
// failure never prevents the next from running.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) []*Outcome {
	var outcomes []*Outcome
	for _, reg := range d.regs {
		if !reg.step.Matches(event) {
			continue
		}
		outcomes = append(outcomes, d.invoke(ctx, reg.handler, event))
	}
	return outcomes
}

func (d *Dispatcher) invoke(ctx context.Context, h Handler, event *Event) (outcome *Outcome) {
	name := h.Name()
	started := time.Now()

	metrics.HandlerEventsActive.WithLabelValues(name).Inc()
	defer metrics.HandlerEventsActive.WithLabelValues(name).Dec()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Handler panicked, suppressing to protect the host transaction", map[string]interface{}{
				"handler":       name,
				"correlationId": event.CorrelationID,
				"errorCode":     string(errors.ErrCodeHandlerPanic),
				"panic":         fmt.Sprint(r),
				"stack":         string(debug.Stack()),
			})
			outcome = &Outcome{
				Handler:       name,
				CorrelationID: event.CorrelationID,
				Results: []OperationResult{
					{Operation: "handler", Success: false, Message: fmt.Sprintf("panic: %v", r)},
				},
				Duration: time.Since(started),
			}
			metrics.HandlerEventsProcessed.WithLabelValues(name, "panicked").Inc()
		}

		metrics.HandlerEventDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
	}()

	outcome = h.Execute(ctx, event)
	if outcome == nil {
		outcome = &Outcome{Handler: name, CorrelationID: event.CorrelationID, Duration: time.Since(started)}
	}

	result := "completed"
	if outcome.Skipped {
		result = "skipped"
	}
	metrics.HandlerEventsProcessed.WithLabelValues(name, result).Inc()

	for _, r := range outcome.Results {
		if !r.Success {
			metrics.HandlerOperationsFailed.WithLabelValues(name, r.Operation).Inc()
		}
	}

	return outcome
}
