package types

type PaymentProvider string

const (
	PaymentProviderStripe      PaymentProvider = "stripe"
	PaymentProviderMercadoPago PaymentProvider = "mercadopago"
	PaymentProviderInner       PaymentProvider = "inner"
)

// PurchaseStatus is the canonical internal purchase state. Provider-specific
// status strings are mapped onto this set by the reconciler.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusRejected  PurchaseStatus = "rejected"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s PurchaseStatus) Terminal() bool {
	switch s {
	case PurchaseStatusApproved, PurchaseStatusRejected, PurchaseStatusCancelled:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleInstructor UserRole = "instructor"
	UserRoleStudent    UserRole = "student"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleInstructor, UserRoleStudent:
		return true
	}
	return false
}
