package accountpostcreate

import (
	"context"
	"time"

	"crm-handlers/internal/common/logger"
)

// DataService is the two-operation contract with the platform's data service.
// Both operations may fail with a generic service error; the handler treats
// every such failure identically (record the result, continue).
type DataService interface {
	Create(ctx context.Context, collection string, attrs map[string]interface{}) (string, error)
	Update(ctx context.Context, collection, id string, attrs map[string]interface{}) error
}

// ServiceDependencies are the explicit dependencies of the leaf operations.
// Clock exists so tests can pin wall-clock time; nil means time.Now.
type ServiceDependencies struct {
	Logger logger.Logger
	Data   DataService
	Clock  func() time.Time
}
