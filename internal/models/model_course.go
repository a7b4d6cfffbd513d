package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/eduforge/coursepay/pkg/types"
)

// PresentialInfo carries the venue and staffing details of an in-person
// course offering.
type PresentialInfo struct {
	Location           string `json:"location,omitempty"`
	Schedule           string `json:"schedule,omitempty"`
	Period             string `json:"period,omitempty"`
	DurationHours      int    `json:"duration_hours,omitempty"`
	Audience           string `json:"audience,omitempty"`
	InstructorName     string `json:"instructor_name,omitempty"`
	InstructorTitle    string `json:"instructor_title,omitempty"`
	InstructorCRM      string `json:"instructor_crm,omitempty"`
	InstructorRQE      string `json:"instructor_rqe,omitempty"`
	OrganizerName      string `json:"organizer_name,omitempty"`
	OrganizerInstagram string `json:"organizer_instagram,omitempty"`
}

// Course is a sellable catalog item. A course may carry subcourses through
// ParentCourseID; subcourses are deleted together with their parent.
// In-person offerings share the table, discriminated by Type.
type Course struct {
	ID            string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Title         string          `gorm:"column:title;type:varchar(256);not null" json:"title"`
	Description   string          `gorm:"column:description;type:text" json:"description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Currency      string          `gorm:"column:currency;type:varchar(8);not null;default:'BRL'" json:"currency"`
	VideoURL      string          `gorm:"column:video_url;type:varchar(512)" json:"video_url"`
	CoverImageURL string          `gorm:"column:cover_image_url;type:varchar(512)" json:"cover_image_url"`
	Type          types.CourseType `gorm:"column:type;type:varchar(16);not null;default:'online';index" json:"type"`
	Presential    datatypes.JSONType[*PresentialInfo] `gorm:"column:presential;type:jsonb" json:"presential,omitempty"`
	ParentCourseID *string        `gorm:"column:parent_course_id;type:uuid;index" json:"parent_course_id"`
	SubCourses    []*Course       `gorm:"foreignKey:ParentCourseID" json:"sub_courses,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Course) TableName() string { return "course" }
