package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sample{Name: "Asha", Email: "asha@example.com"}))
	assert.Error(t, v.Validate(sample{Name: "Asha", Email: "not-an-email"}))
	assert.Error(t, v.Validate(sample{Email: "asha@example.com"}))
}

func TestIsEmail(t *testing.T) {
	v := New()

	assert.True(t, v.IsEmail("asha@example.com"))
	assert.False(t, v.IsEmail(""))
	assert.False(t, v.IsEmail("asha@"))
}
