package models

import (
	"time"

	"crm-handlers/internal/pipeline"
)

// Task entity and attribute names.
const (
	EntityTask      = "task"
	CollectionTasks = "tasks"

	AttrSubject        = "subject"
	AttrTaskDesc       = "description"
	AttrScheduledStart = "scheduledstart"
	AttrScheduledEnd   = "scheduledend"
	AttrPriority       = "prioritycode"
	AttrCategory       = "category"
	AttrRegarding      = "regardingobjectid"
)

// Task is the follow-up activity created for a new account. Scheduling is
// wall-clock based, not business-calendar based.
type Task struct {
	Subject        string
	Description    string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	PriorityCode   OptionValue
	Category       string
	Regarding      pipeline.EntityReference
}

func (t Task) Fields() map[string]interface{} {
	return map[string]interface{}{
		AttrSubject:        t.Subject,
		AttrTaskDesc:       t.Description,
		AttrScheduledStart: t.ScheduledStart.UTC().Format(time.RFC3339),
		AttrScheduledEnd:   t.ScheduledEnd.UTC().Format(time.RFC3339),
		AttrPriority:       int(t.PriorityCode),
		AttrCategory:       t.Category,
		AttrRegarding:      map[string]interface{}{"entity": t.Regarding.Entity, "id": t.Regarding.ID},
	}
}
