package models

import "crm-handlers/internal/pipeline"

// Contact entity and attribute names.
const (
	EntityContact      = "contact"
	CollectionContacts = "contacts"

	AttrFirstName      = "firstname"
	AttrLastName       = "lastname"
	AttrParentCustomer = "parentcustomerid"
	AttrEmail          = "emailaddress1"
	AttrJobTitle       = "jobtitle"
)

// Contact is the related contact created for a new account.
type Contact struct {
	FirstName      string
	LastName       string
	ParentCustomer pipeline.EntityReference
	Email          string
	JobTitle       string
}

func (c Contact) Fields() map[string]interface{} {
	return map[string]interface{}{
		AttrFirstName:      c.FirstName,
		AttrLastName:       c.LastName,
		AttrParentCustomer: map[string]interface{}{"entity": c.ParentCustomer.Entity, "id": c.ParentCustomer.ID},
		AttrEmail:          c.Email,
		AttrJobTitle:       c.JobTitle,
	}
}
