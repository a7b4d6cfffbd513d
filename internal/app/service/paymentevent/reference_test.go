package paymentevent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeExternalReference_RoundTrips(t *testing.T) {
	raw := EncodeExternalReference("course-1", "user-2")
	ref, err := DecodeExternalReference(raw)
	require.NoError(t, err)
	require.Equal(t, "course-1", ref.CourseID)
	require.Equal(t, "user-2", ref.UserID)
}

func TestDecodeExternalReference_AcceptsNumericIDs(t *testing.T) {
	ref, err := DecodeExternalReference(`{"courseId":42,"userId":7}`)
	require.NoError(t, err)
	require.Equal(t, "42", ref.CourseID)
	require.Equal(t, "7", ref.UserID)
}

func TestDecodeExternalReference_AcceptsLegacyColonForm(t *testing.T) {
	ref, err := DecodeExternalReference("42:7")
	require.NoError(t, err)
	require.Equal(t, "42", ref.CourseID)
	require.Equal(t, "7", ref.UserID)
}

func TestDecodeExternalReference_Rejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"no-separator",
		"a:b:c",
		":7",
		"42:",
		`{"courseId":42}`,
		`{"userId":7}`,
		`{"courseId":true,"userId":7}`,
		`{broken`,
	} {
		_, err := DecodeExternalReference(raw)
		require.ErrorIs(t, err, ErrUnresolvableReference, "raw=%q", raw)
	}
}
