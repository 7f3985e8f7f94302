package utils

import (
	"testing"

	"event_marketplace/internal/pkg/config"
	"event_marketplace/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingInput struct {
	EventID  string `json:"eventId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		in := bookingInput{EventID: "6f1c2d4e-8a6b-4c1e-9b1a-2f3e4d5c6b7a", Quantity: 1}
		assert.NoError(t, ValidateStruct(in))
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := ValidateStruct(bookingInput{EventID: "nope", Quantity: 0})

		require.ErrorIs(t, err, errs.ErrInvalidInput)
		e, _ := errs.As(err)
		fields := e.Details["fields"].(map[string]string)
		assert.Equal(t, "uuid", fields["eventId"])
		assert.Equal(t, "min", fields["quantity"])
	})
}

func TestToken(t *testing.T) {
	config.GlobalConfig.JWT.Secret = "0123456789abcdef0123456789abcdef"
	config.GlobalConfig.JWT.Expire = 1

	token, exp, err := GenerateToken("user-1", RoleHost)
	require.NoError(t, err)
	require.NotNil(t, exp)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleHost, claims.Role)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)
}
