package services

import (
	"testing"

	"github.com/melo-app/accounts/internal/apperr"
	"github.com/melo-app/accounts/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePatchEmail(t *testing.T) {
	t.Parallel()

	fields, err := ResolvePatch(map[string]any{"email": "a@B.COM"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "a@b.com"}, fields)
}

func TestResolvePatchEmailInvalid(t *testing.T) {
	t.Parallel()

	_, err := ResolvePatch(map[string]any{"email": "not-an-email"})
	assert.True(t, apperr.IsValidation(err), "got %v", err)
}

func TestResolvePatchPassword(t *testing.T) {
	t.Parallel()

	fields, err := ResolvePatch(map[string]any{
		"old_password": "old-secret",
		"new_password": "new-secret",
	})
	require.NoError(t, err)
	require.Len(t, fields, 1)

	hash, ok := fields["password_hash"].(string)
	require.True(t, ok, "password_hash missing: %v", fields)

	verified, err := auth.VerifyPassword("new-secret", hash)
	require.NoError(t, err)
	assert.True(t, verified, "resolved hash does not verify the new password")
}

func TestResolvePatchPasswordUnchanged(t *testing.T) {
	t.Parallel()

	_, err := ResolvePatch(map[string]any{
		"old_password": "x",
		"new_password": "x",
	})
	require.True(t, apperr.IsValidation(err), "got %v", err)
	assert.Equal(t, "New password must be different from the old password", apperr.MessageOf(err))
}

func TestResolvePatchGeneric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]any
		want    map[string]any
	}{
		{name: "empty payload patches nothing", payload: map[string]any{}, want: map[string]any{}},
		{name: "full name set", payload: map[string]any{"full_name": "Ada Lovelace"}, want: map[string]any{"full_name": "Ada Lovelace"}},
		{name: "full name cleared", payload: map[string]any{"full_name": nil}, want: map[string]any{"full_name": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields, err := ResolvePatch(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields)
		})
	}
}

func TestResolvePatchRejectsUnknownShapes(t *testing.T) {
	t.Parallel()

	payloads := []map[string]any{
		nil,
		{"unknown": "field"},
		{"full_name": "ok", "unknown": "field"},
		// email alongside other keys is not the email variant and "email"
		// is not a generic field either
		{"email": "a@b.com", "full_name": "x"},
		// non-string email is not the email variant
		{"email": 5},
		// password keys mixed with others match no variant
		{"old_password": "a", "new_password": "b", "full_name": "x"},
	}
	for _, payload := range payloads {
		_, err := ResolvePatch(payload)
		require.True(t, apperr.IsValidation(err), "payload %v: got %v", payload, err)
		assert.Equal(t, "Invalid data", apperr.MessageOf(err), "payload %v", payload)
	}
}

// A payload with exactly the password keys must hit the password variant,
// never the generic fallback, so the equality rule fires before any
// unknown-field complaint.
func TestResolvePatchOrderIsFixed(t *testing.T) {
	t.Parallel()

	_, err := ResolvePatch(map[string]any{"old_password": "same", "new_password": "same"})
	assert.Equal(t, "New password must be different from the old password", apperr.MessageOf(err))
}
