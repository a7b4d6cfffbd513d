package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/types"
)

func TestPresentialCourseInput_ToModel(t *testing.T) {
	in := &PresentialCourseInput{
		CourseInput: CourseInput{
			Title: "Emergency Ultrasound Workshop",
			Price: decimal.RequireFromString("1499.90"),
		},
		Presential: models.PresentialInfo{
			Location:       "São Paulo",
			Schedule:       "2026-10-03 08:00",
			DurationHours:  16,
			InstructorName: "Dr. Lima",
			InstructorCRM:  "123456",
		},
	}

	course := in.toModel()
	require.NotEmpty(t, course.ID)
	require.Equal(t, types.CourseTypePresential, course.Type)
	require.Equal(t, "BRL", course.Currency)

	info := course.Presential.Data()
	require.NotNil(t, info)
	require.Equal(t, "São Paulo", info.Location)
	require.Equal(t, 16, info.DurationHours)
}

func TestCourseInput_ToModelDefaultsToOnline(t *testing.T) {
	in := &CourseInput{Title: "Anatomy Basics", Currency: "USD"}
	course := in.toModel()
	require.Equal(t, types.CourseTypeOnline, course.Type)
	require.Equal(t, "USD", course.Currency)
}
