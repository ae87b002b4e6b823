package domain

// Property is the assessed parcel, resolved from the property registry.
// The registry itself is an external collaborator; this core only needs
// the identity and ownership slice.
type Property struct {
	PropertyID    string
	TenantID      string
	UsageCategory string
	OwnerIDs      []string
}

// BillingAccount returns the consumer code demands for this property are
// booked under.
func (p Property) BillingAccount() string {
	return p.PropertyID
}
