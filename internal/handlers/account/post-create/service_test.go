package accountpostcreate

import (
	"context"
	"testing"

	"crm-handlers/internal/common/logger"
	"crm-handlers/internal/models"
	"crm-handlers/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(data DataService) *Service {
	return NewService(ServiceDependencies{
		Logger: logger.NewNoOpLogger(),
		Data:   data,
		Clock:  fixedClock(),
	}, DefaultConfig())
}

// The local part is the lower-cased name with spaces removed; everything else
// passes through, including characters that make the address invalid.
func TestDeriveContactEmail(t *testing.T) {
	tests := []struct {
		name        string
		accountName string
		want        string
	}{
		{"simple name", "Acme", "info@acme.com"},
		{"spaces removed", "Acme Corp", "info@acmecorp.com"},
		{"mixed case lowered", "Test Company XYZ", "info@testcompanyxyz.com"},
		{"empty name", "", "info@.com"},
		{"punctuation passes through", "O'Brien & Sons, Ltd.", "info@o'brien&sons,ltd..com"},
		{"unicode passes through", "Café München", "info@cafémünchen.com"},
		{"internal multiple spaces", "A  B   C", "info@abc.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveContactEmail(tt.accountName))
		})
	}
}

func TestService_ProcessParentAccount_NoParent(t *testing.T) {
	data := &MockDataService{}
	svc := newTestService(data)

	image := &pipeline.Record{
		ID:         "A",
		Entity:     models.EntityAccount,
		Attributes: map[string]interface{}{models.AttrAccountName: "Acme Corp"},
	}

	result := svc.ProcessParentAccount(context.Background(), image, "Acme Corp")

	assert.True(t, result.Success)
	assert.Equal(t, OpUpdateParent, result.Operation)
	data.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ProcessParentAccount_MalformedReference(t *testing.T) {
	data := &MockDataService{}
	svc := newTestService(data)

	// A reference without an id is treated the same as no reference.
	image := &pipeline.Record{
		ID:     "A",
		Entity: models.EntityAccount,
		Attributes: map[string]interface{}{
			models.AttrParentAccount: map[string]interface{}{"entity": models.EntityAccount},
		},
	}

	result := svc.ProcessParentAccount(context.Background(), image, "Acme Corp")

	assert.True(t, result.Success)
	data.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CreateFollowUpTask_Schedule(t *testing.T) {
	data := &MockDataService{}
	data.On("Create", mock.Anything, models.CollectionTasks, mock.Anything).Return("task-9", nil)
	svc := newTestService(data)

	result := svc.CreateFollowUpTask(context.Background(), "A", "Acme Corp")

	require.True(t, result.Success)
	assert.Equal(t, "task-9", result.TargetID)

	attrs := data.createAttrs(models.CollectionTasks)
	require.NotNil(t, attrs)
	assert.Equal(t, "Follow up with Acme Corp", attrs[models.AttrSubject])
	assert.Equal(t, "Check in with the new account Acme Corp and confirm onboarding details.", attrs[models.AttrTaskDesc])
	assert.Equal(t, "2026-03-15T10:00:00Z", attrs[models.AttrScheduledStart])
	assert.Equal(t, "2026-03-15T11:00:00Z", attrs[models.AttrScheduledEnd])
	assert.Equal(t, "Account Onboarding", attrs[models.AttrCategory])
}

func TestService_ApplyAccountDefaults_Fields(t *testing.T) {
	data := &MockDataService{}
	data.On("Update", mock.Anything, models.CollectionAccounts, "A", mock.Anything).Return(nil)
	svc := newTestService(data)

	result := svc.ApplyAccountDefaults(context.Background(), "A")

	require.True(t, result.Success)
	updates := data.updateCalls(models.CollectionAccounts)
	require.Len(t, updates, 1)
	// The full default field set is written every time, nothing more.
	assert.Len(t, updates[0].Attrs, 4)
	assert.Equal(t, false, updates[0].Attrs[models.AttrCreditOnHold])
}
