package pipeline

import "time"

// OperationResult reports the outcome of one leaf operation. Leaf operations
// return results instead of raising errors; a failed result carries the
// downstream error message and nothing else escapes.
type OperationResult struct {
	Operation string `json:"operation"`
	Success   bool   `json:"success"`
	TargetID  string `json:"targetId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// OK builds a success result for an operation.
func OK(operation, targetID, message string) OperationResult {
	return OperationResult{
		Operation: operation,
		Success:   true,
		TargetID:  targetID,
		Message:   message,
	}
}

// Failed builds a failure result for an operation.
func Failed(operation string, err error) OperationResult {
	return OperationResult{
		Operation: operation,
		Success:   false,
		Message:   err.Error(),
	}
}

// Outcome aggregates the results of one handler invocation. The handler logs
// it as a single structured record; partial completion is an accepted,
// permanent outcome.
type Outcome struct {
	Handler       string            `json:"handler"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Skipped       bool              `json:"skipped"`
	Results       []OperationResult `json:"results,omitempty"`
	Duration      time.Duration     `json:"duration"`
}

// FailedCount returns how many leaf operations failed.
func (o *Outcome) FailedCount() int {
	n := 0
	for _, r := range o.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// Fields renders the outcome for a structured log record.
func (o *Outcome) Fields() map[string]interface{} {
	ops := make([]map[string]interface{}, 0, len(o.Results))
	for _, r := range o.Results {
		op := map[string]interface{}{
			"operation": r.Operation,
			"success":   r.Success,
		}
		if r.TargetID != "" {
			op["targetId"] = r.TargetID
		}
		if r.Message != "" {
			op["message"] = r.Message
		}
		ops = append(ops, op)
	}

	return map[string]interface{}{
		"handler":       o.Handler,
		"correlationId": o.CorrelationID,
		"skipped":       o.Skipped,
		"failed":        o.FailedCount(),
		"operations":    ops,
		"durationMs":    o.Duration.Milliseconds(),
	}
}
