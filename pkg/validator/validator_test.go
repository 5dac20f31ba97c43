package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/validator"
)

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		valid bool
	}{
		{"a@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"", false},
		{"plain", false},
		{"@example.com", false},
		{"a@localhost", false},
		{"a@example..com", false},
		{"a@.example.com", false},
		{"Bob <bob@example.com>", false},
		{" a@example.com", false},
		{strings.Repeat("a", 250) + "@x.io", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, validator.ValidEmail("email", tt.email).Check())
		})
	}
}

func TestBase32(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.Base32("secret", "JBSWY3DPEHPK3PXP").Check())
	assert.False(t, validator.Base32("secret", "").Check())
	assert.True(t, validator.Base32("secret", "jbswy3dp").Check())
	assert.False(t, validator.Base32("secret", "JBSWY3DP====").Check())
	assert.False(t, validator.Base32("secret", "ABC1").Check())
}

func TestLengthRules(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.Required("f", "x").Check())
	assert.False(t, validator.Required("f", "  ").Check())
	assert.True(t, validator.MaxLen("f", "жжж", 3).Check())
	assert.False(t, validator.MaxLen("f", "abcd", 3).Check())
	assert.True(t, validator.MaxItems("f", []string{"a", "b"}, 2).Check())
	assert.False(t, validator.MaxItems("f", []int{1, 2, 3}, 2).Check())
}

func TestApply(t *testing.T) {
	t.Parallel()

	require.NoError(t, validator.Apply(
		validator.Required("email", "a@example.com"),
		validator.ValidEmail("email", "a@example.com"),
	))

	err := validator.Apply(
		validator.Required("email", ""),
		validator.ValidEmail("email", ""),
		validator.Base32("secret", "nope"),
	)
	require.Error(t, err)
	assert.True(t, validator.IsValidationError(err))
	assert.Equal(t, "validation failed: email: field is required; secret: must be a base32 string", err.Error())

	ve := validator.ExtractValidationErrors(err)
	assert.Equal(t, map[string][]string{
		"email":  {"field is required"},
		"secret": {"must be a base32 string"},
	}, ve.Fields())

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.False(t, validator.IsValidationError(assert.AnError))
}
