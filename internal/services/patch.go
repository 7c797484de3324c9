package services

import (
	"bytes"
	"encoding/json"

	"github.com/melo-app/accounts/internal/apperr"
	"github.com/melo-app/accounts/internal/auth"
	"github.com/melo-app/accounts/internal/validate"
	"github.com/melo-app/accounts/types"
)

const msgInvalidData = "Invalid data"

// GenericPatch carries the optional fields of a generic update. Each field
// is three-state: omitted, explicitly null (cleared), or set.
type GenericPatch struct {
	FullName types.Optional[string] `json:"full_name"`
}

// ResolvePatch inspects a loosely-typed update payload and dispatches on
// its shape, producing a column/value map for the repository. Variants
// are tried in fixed priority order and the first structural match wins:
//
//  1. exactly {email}: normalized email patch
//  2. exactly {old_password, new_password}: password change, new must
//     differ from old, the new password is hashed
//  3. any other mapping: generic patch over recognized optional fields;
//     unknown keys are rejected
//
// The ordering is load-bearing: a payload of exactly
// {old_password, new_password} must never fall through to the generic
// case.
func ResolvePatch(payload map[string]any) (map[string]any, error) {
	if payload == nil {
		return nil, apperr.Validation(msgInvalidData)
	}

	if email, ok := matchEmailPatch(payload); ok {
		normalized, err := validate.NormalizeEmail(email)
		if err != nil {
			return nil, err
		}
		return map[string]any{"email": normalized}, nil
	}

	if oldPassword, newPassword, ok := matchPasswordPatch(payload); ok {
		if newPassword == oldPassword {
			return nil, apperr.Validation("New password must be different from the old password")
		}
		if err := validate.Password(newPassword); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			return nil, apperr.Validation("Passwords are invalid")
		}
		return map[string]any{"password_hash": hash}, nil
	}

	return resolveGenericPatch(payload)
}

// matchEmailPatch reports whether payload has exactly the key "email"
// with a string value.
func matchEmailPatch(payload map[string]any) (string, bool) {
	if len(payload) != 1 {
		return "", false
	}
	email, ok := payload["email"].(string)
	return email, ok
}

// matchPasswordPatch reports whether payload has exactly the keys
// "old_password" and "new_password" with string values.
func matchPasswordPatch(payload map[string]any) (oldPassword, newPassword string, ok bool) {
	if len(payload) != 2 {
		return "", "", false
	}
	oldPassword, okOld := payload["old_password"].(string)
	newPassword, okNew := payload["new_password"].(string)
	return oldPassword, newPassword, okOld && okNew
}

func resolveGenericPatch(payload map[string]any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Validation(msgInvalidData)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var patch GenericPatch
	if err := decoder.Decode(&patch); err != nil {
		return nil, apperr.Validation(msgInvalidData)
	}

	fields := map[string]any{}
	if patch.FullName.Provided() {
		if patch.FullName.IsCleared() {
			fields["full_name"] = ""
		} else {
			value, _ := patch.FullName.Value()
			name, err := validate.FullName(value)
			if err != nil {
				return nil, err
			}
			fields["full_name"] = name
		}
	}
	return fields, nil
}
