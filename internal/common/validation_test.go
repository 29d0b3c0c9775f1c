package common

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := NewValidator().
		Field("name", "", Required).
		Field("keyword", strings.Repeat("x", 101), MaxLen(100)).
		Field("format", "pdf", OneOf("txt", "json"))

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.Contains(t, v.ErrorMessage(), "is required")
	assert.Contains(t, v.ErrorMessage(), "at most 100 characters")
	assert.Contains(t, v.ErrorMessage(), "must be one of txt, json")
}

func TestValidator_NoErrors(t *testing.T) {
	v := NewValidator().
		Field("keyword", "Заплата", Required, MaxLen(100), MinLen(1), NoControlChars)

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
	assert.NoError(t, ValidateAndReturnError(v))
}

func TestPositive(t *testing.T) {
	assert.Nil(t, Positive("n", 1))
	assert.Nil(t, Positive("d", time.Second))
	assert.NotNil(t, Positive("n", 0))
	assert.NotNil(t, Positive("d", -time.Second))
	assert.NotNil(t, Positive("s", "1"))
}

func TestNoControlChars(t *testing.T) {
	assert.Nil(t, NoControlChars("k", "Net Pay"))
	assert.NotNil(t, NoControlChars("k", "Net\x00Pay"))
}

func TestValidateAndReturnError(t *testing.T) {
	err := ValidateAndReturnError(NewValidator().Field("name", " ", Required))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed for field 'name' with value ' ': is required", UserMessage(err))
}
