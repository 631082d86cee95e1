package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("jane_doe.99"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("Jane"))
	assert.Error(t, ValidateUsername(".jane"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 31)))
	assert.Error(t, ValidateUsername("   "))
}

func TestValidateLanguage(t *testing.T) {
	assert.NoError(t, ValidateLanguage("en"))
	assert.Error(t, ValidateLanguage("xx"))
	assert.True(t, IsSupportedLanguage("fr"))
}

func TestValidatePasswordPolicy(t *testing.T) {
	assert.NoError(t, ValidatePasswordPolicy("Str0ng!Pass", "Old0ld!pass", "jane@example.com"))

	err := ValidatePasswordPolicy("short", "", "")
	require.Error(t, err)
	var pv *PolicyViolation
	require.True(t, errors.As(err, &pv))
	assert.Contains(t, pv.Rules, "must be at least 8 characters")
	assert.Contains(t, pv.Rules, "must contain an uppercase letter")

	err = ValidatePasswordPolicy("Same0ne!x", "Same0ne!x", "")
	require.ErrorAs(t, err, &pv)
	assert.Contains(t, pv.Rules, "must differ from the current password")

	err = ValidatePasswordPolicy("Jane!2024x", "", "jane@example.com")
	require.ErrorAs(t, err, &pv)
	assert.Contains(t, pv.Rules, "must not contain your email name")
}
