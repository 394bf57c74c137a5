package accountpostcreate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crm-handlers/internal/common/logger"
	"crm-handlers/internal/models"
	"crm-handlers/internal/pipeline"
)

// Leaf operation names, used in results, logs and metric labels.
const (
	OpCreateContact = "create-contact"
	OpApplyDefaults = "apply-defaults"
	OpCreateTask    = "create-follow-up-task"
	OpUpdateParent  = "update-parent"
)

const (
	contactFirstName = "Default"
	contactJobTitle  = "Primary Contact"

	// Wall-clock offsets for the follow-up task.
	taskStartOffset = 24 * time.Hour
	taskDuration    = time.Hour

	parentNoteDateLayout = "01/02/2006"
)

// Service implements the four leaf operations. Each issues exactly one data
// service call and converts any failure into a result; nothing is re-raised.
type Service struct {
	config *Config
	logger logger.Logger
	data   DataService
	clock  func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		config: config,
		logger: deps.Logger,
		data:   deps.Data,
		clock:  clock,
	}
}

// CreateRelatedContact creates the contact linked to the new account. The
// account name is embedded verbatim; no validation is performed on it (see
// DeriveContactEmail).
func (s *Service) CreateRelatedContact(ctx context.Context, accountID, accountName string) pipeline.OperationResult {
	contact := models.Contact{
		FirstName:      contactFirstName,
		LastName:       "Contact for " + accountName,
		ParentCustomer: pipeline.EntityReference{Entity: models.EntityAccount, ID: accountID},
		Email:          DeriveContactEmail(accountName),
		JobTitle:       contactJobTitle,
	}

	contactID, err := s.data.Create(ctx, models.CollectionContacts, contact.Fields())
	if err != nil {
		s.logger.Error("Contact creation failed", map[string]interface{}{
			"operation": OpCreateContact,
			"accountId": accountID,
			"error":     err.Error(),
		})
		return pipeline.Failed(OpCreateContact, err)
	}

	s.logger.Debug("Related contact created", map[string]interface{}{
		"operation": OpCreateContact,
		"accountId": accountID,
		"contactId": contactID,
		"email":     contact.Email,
	})
	return pipeline.OK(OpCreateContact, contactID, "contact created")
}

// ApplyAccountDefaults unconditionally overwrites the default field set on
// the account. There is no read-before-write: overwrite on every create is
// the documented policy.
func (s *Service) ApplyAccountDefaults(ctx context.Context, accountID string) pipeline.OperationResult {
	if err := s.data.Update(ctx, models.CollectionAccounts, accountID, s.config.Defaults.Fields()); err != nil {
		s.logger.Error("Account defaults update failed", map[string]interface{}{
			"operation": OpApplyDefaults,
			"accountId": accountID,
			"error":     err.Error(),
		})
		return pipeline.Failed(OpApplyDefaults, err)
	}

	s.logger.Debug("Account defaults applied", map[string]interface{}{
		"operation": OpApplyDefaults,
		"accountId": accountID,
	})
	return pipeline.OK(OpApplyDefaults, accountID, "defaults applied")
}

// CreateFollowUpTask creates the follow-up activity, scheduled one day out
// from wall-clock time at execution.
func (s *Service) CreateFollowUpTask(ctx context.Context, accountID, accountName string) pipeline.OperationResult {
	start := s.clock().Add(taskStartOffset)

	task := models.Task{
		Subject:        "Follow up with " + accountName,
		Description:    fmt.Sprintf("Check in with the new account %s and confirm onboarding details.", accountName),
		ScheduledStart: start,
		ScheduledEnd:   start.Add(taskDuration),
		PriorityCode:   s.config.TaskPriorityCode,
		Category:       s.config.TaskCategory,
		Regarding:      pipeline.EntityReference{Entity: models.EntityAccount, ID: accountID},
	}

	taskID, err := s.data.Create(ctx, models.CollectionTasks, task.Fields())
	if err != nil {
		s.logger.Error("Follow-up task creation failed", map[string]interface{}{
			"operation": OpCreateTask,
			"accountId": accountID,
			"error":     err.Error(),
		})
		return pipeline.Failed(OpCreateTask, err)
	}

	s.logger.Debug("Follow-up task created", map[string]interface{}{
		"operation":      OpCreateTask,
		"accountId":      accountID,
		"taskId":         taskID,
		"scheduledStart": task.ScheduledStart,
	})
	return pipeline.OK(OpCreateTask, taskID, "follow-up task created")
}

// ProcessParentAccount overwrites the parent's description with a dated note
// marking the most recent child creation. Prior notes are lost; the stated
// purpose is to mark the latest child, not to accumulate history. No parent
// reference is a no-op, not an error.
func (s *Service) ProcessParentAccount(ctx context.Context, image *pipeline.Record, accountName string) pipeline.OperationResult {
	parent, ok := image.GetRef(models.AttrParentAccount)
	if !ok {
		s.logger.Debug("No parent account declared, nothing to update", map[string]interface{}{
			"operation": OpUpdateParent,
			"accountId": image.ID,
		})
		return pipeline.OK(OpUpdateParent, "", "no parent account declared")
	}

	note := fmt.Sprintf("Child account %s was created on %s.", accountName, s.clock().Format(parentNoteDateLayout))

	err := s.data.Update(ctx, models.CollectionAccounts, parent.ID, map[string]interface{}{
		models.AttrDescription: note,
	})
	if err != nil {
		s.logger.Error("Parent account update failed", map[string]interface{}{
			"operation": OpUpdateParent,
			"accountId": image.ID,
			"parentId":  parent.ID,
			"error":     err.Error(),
		})
		return pipeline.Failed(OpUpdateParent, err)
	}

	s.logger.Debug("Parent account description updated", map[string]interface{}{
		"operation": OpUpdateParent,
		"accountId": image.ID,
		"parentId":  parent.ID,
	})
	return pipeline.OK(OpUpdateParent, parent.ID, "parent description updated")
}

// DeriveContactEmail builds "info@{name}.com" from the account display name,
// lower-cased with spaces removed. Other characters pass through untouched,
// so names with punctuation or unicode yield syntactically invalid addresses;
// that behavior is long-standing and deliberately preserved. An empty name
// yields "info@.com".
func DeriveContactEmail(accountName string) string {
	local := strings.ToLower(strings.ReplaceAll(accountName, " ", ""))
	return fmt.Sprintf("info@%s.com", local)
}
