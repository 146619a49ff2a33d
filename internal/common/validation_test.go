package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("filename", "", Required).
		Field("content", []byte{}, Required, MaxBytes(4)).
		Field("provider", "bogus", OneOf("ocr", "mock"))

	assert.Len(t, v.Failures(), 3)
	err := v.Err()
	assert.ErrorIs(t, err, ErrInput)
	assert.Contains(t, err.Error(), "filename is required; content is required; provider must be one of ocr, mock")

	ok := NewValidator().
		Field("filename", "a.pdf", Required).
		Field("content", []byte("%PDF"), Required, MaxBytes(4)).
		Field("provider", "", OneOf("ocr"))
	assert.NoError(t, ok.Err())
	assert.Empty(t, ok.Failures())
}

func TestMaxBytes(t *testing.T) {
	fe := MaxBytes(2)("content", []byte("abc"))
	if assert.NotNil(t, fe) {
		assert.Equal(t, "content must be at most 2 bytes", fe.Error())
	}
	assert.Nil(t, MaxBytes(2)("content", "not bytes"))
}
