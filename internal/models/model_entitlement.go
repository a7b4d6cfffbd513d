package models

import "time"

// Entitlement associates a course with a user's access rights. The unique
// index on (user_id, course_id) is what makes grants idempotent: a repeated
// insert is a no-op rather than a duplicate.
type Entitlement struct {
	ID       string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID   string `gorm:"column:user_id;type:uuid;not null;uniqueIndex:unique_user_course,priority:1" json:"user_id"`
	CourseID string `gorm:"column:course_id;type:uuid;not null;uniqueIndex:unique_user_course,priority:2" json:"course_id"`
	// SourcePurchaseID links back to the purchase that granted access, empty
	// for manual/admin grants.
	SourcePurchaseID *string   `gorm:"column:source_purchase_id;type:uuid" json:"source_purchase_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Entitlement) TableName() string { return "entitlement" }
