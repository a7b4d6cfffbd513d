package models

import (
	"time"

	"github.com/eduforge/coursepay/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PurchaseExtra struct {
	// CheckoutSessionID correlates the purchase with the provider-hosted
	// checkout session that pre-created it, when one exists.
	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
	// StatusDetail is the raw provider status detail, kept for support.
	StatusDetail string `json:"status_detail,omitempty"`
	// OperatorID is set for manually granted purchases.
	OperatorID string `json:"operator_id,omitempty"`
}

// Purchase is the internal record of one attempted course payment, reconciled
// against a payment provider's events. TransactionID is the provider-assigned
// payment id and acts as the idempotency key: at most one row exists per
// (provider, transaction_id).
type Purchase struct {
	ID       string                `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID   string                `gorm:"column:user_id;type:uuid;not null;index:idx_purchase_user_course,priority:1" json:"user_id"`
	CourseID string                `gorm:"column:course_id;type:uuid;not null;index:idx_purchase_user_course,priority:2" json:"course_id"`
	Provider types.PaymentProvider `gorm:"column:provider;type:varchar(32);not null;uniqueIndex:unique_provider_transaction_id,priority:1" json:"provider"`
	// TransactionID is assigned by the provider and unique per provider.
	TransactionID string               `gorm:"column:transaction_id;type:varchar(128);not null;uniqueIndex:unique_provider_transaction_id,priority:2" json:"transaction_id"`
	Status        types.PurchaseStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	PaymentMethod string               `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`
	Amount        decimal.Decimal      `gorm:"column:amount;type:numeric(12,2)" json:"amount"`
	Currency      string               `gorm:"column:currency;type:varchar(8)" json:"currency"`
	// ExternalReference is the raw provider-opaque string the checkout flow
	// embedded to recover (courseId, userId) from a webhook.
	ExternalReference string                                `gorm:"column:external_reference;type:varchar(256)" json:"external_reference"`
	Extra             datatypes.JSONType[*PurchaseExtra]    `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt         time.Time                             `json:"created_at"`
	UpdatedAt         time.Time                             `json:"updated_at"`
}

func (Purchase) TableName() string { return "purchase" }

func (p *Purchase) Terminal() bool {
	return p != nil && p.Status.Terminal()
}
