package models

// OptionValue is a small integer code standing for a host-configured named
// choice. The constants below document the platform's stock mapping; the
// codes actually written are taken from deployment configuration so an
// environment with customized option sets can override them.
type OptionValue int

// address1_shippingmethodcode
const (
	ShippingMethodAirborne OptionValue = 1
	ShippingMethodDHL      OptionValue = 2
	ShippingMethodFedEx    OptionValue = 3
	ShippingMethodUPS      OptionValue = 4
	ShippingMethodPostal   OptionValue = 5
	ShippingMethodFullLoad OptionValue = 6
	ShippingMethodWillCall OptionValue = 7
)

// customertypecode
const (
	CustomerTypeDefaultValue OptionValue = 1
	CustomerTypeCompetitor   OptionValue = 2
	CustomerTypeConsultant   OptionValue = 3
	CustomerTypeCustomer     OptionValue = 4
)

// statuscode
const (
	AccountStatusActive   OptionValue = 1
	AccountStatusInactive OptionValue = 2
)

// prioritycode
const (
	TaskPriorityLow    OptionValue = 0
	TaskPriorityNormal OptionValue = 1
	TaskPriorityHigh   OptionValue = 2
)
