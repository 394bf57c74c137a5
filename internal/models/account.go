package models

// Account entity and attribute names as the platform exposes them.
const (
	EntityAccount      = "account"
	CollectionAccounts = "accounts"

	AttrAccountName    = "name"
	AttrParentAccount  = "parentaccountid"
	AttrCreditOnHold   = "creditonhold"
	AttrShippingMethod = "address1_shippingmethodcode"
	AttrCustomerType   = "customertypecode"
	AttrAccountStatus  = "statuscode"
	AttrDescription    = "description"
)

// AccountDefaults is the fixed field set applied to every newly created
// account. The codes come from deployment configuration; the write is an
// unconditional overwrite, even when the record was created with other
// values.
type AccountDefaults struct {
	CreditOnHold       bool
	ShippingMethodCode OptionValue
	CustomerTypeCode   OptionValue
	StatusCode         OptionValue
}

func (d AccountDefaults) Fields() map[string]interface{} {
	return map[string]interface{}{
		AttrCreditOnHold:   d.CreditOnHold,
		AttrShippingMethod: int(d.ShippingMethodCode),
		AttrCustomerType:   int(d.CustomerTypeCode),
		AttrAccountStatus:  int(d.StatusCode),
	}
}
