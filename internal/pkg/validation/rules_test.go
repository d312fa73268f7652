package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAcademicID(t *testing.T) {
	assert.True(t, IsAcademicID("STU00001"))
	assert.True(t, IsAcademicID("STU12345"))
	assert.False(t, IsAcademicID("STU1234"))
	assert.False(t, IsAcademicID("stu00001"))
	assert.False(t, IsAcademicID("STU000012"))
}

func TestRegisterCustomValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidators(v))

	type payload struct {
		Phone string `validate:"omitempty,phone"`
	}
	assert.NoError(t, v.Struct(payload{Phone: "+90 555 123 45 67"}))
	assert.NoError(t, v.Struct(payload{}))
	assert.Error(t, v.Struct(payload{Phone: "call me"}))
}
