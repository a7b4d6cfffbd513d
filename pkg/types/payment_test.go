package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPurchaseStatus_Terminal(t *testing.T) {
	require.False(t, PurchaseStatusPending.Terminal())
	require.True(t, PurchaseStatusApproved.Terminal())
	require.True(t, PurchaseStatusRejected.Terminal())
	require.True(t, PurchaseStatusCancelled.Terminal())
}

func TestUserRole_Valid(t *testing.T) {
	require.True(t, UserRoleAdmin.Valid())
	require.True(t, UserRoleInstructor.Valid())
	require.True(t, UserRoleStudent.Valid())
	require.False(t, UserRole("superuser").Valid())
	require.False(t, UserRole("").Valid())
}
