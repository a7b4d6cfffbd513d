package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduforge/coursepay/pkg/types"
)

// validation failures return before any database access
func validationOnlyService() *Service {
	return &Service{log: zap.NewNop().Sugar()}
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	svc := validationOnlyService()
	base := RegisterInput{
		Name:     "Maria",
		Email:    "maria@example.com",
		CPF:      "123.456.789-09",
		Password: "long-enough-password",
		Role:     types.UserRoleStudent,
	}

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"short password", func(in *RegisterInput) { in.Password = "short" }, ErrWeakPassword},
		{"bad cpf", func(in *RegisterInput) { in.CPF = "12345" }, ErrInvalidCPF},
		{"bad role", func(in *RegisterInput) { in.Role = "superuser" }, ErrInvalidRole},
	}
	for _, tc := range cases {
		in := base
		tc.mutate(&in)
		_, err := svc.Register(context.Background(), &in)
		require.ErrorIs(t, err, tc.want, tc.name)
	}

	in := base
	in.Email = "not-an-email"
	_, err := svc.Register(context.Background(), &in)
	require.Error(t, err)
}

func TestChangePassword_RejectsWeakPassword(t *testing.T) {
	svc := validationOnlyService()
	err := svc.ChangePassword(context.Background(), "user-1", "current", "short")
	require.ErrorIs(t, err, ErrWeakPassword)
}
