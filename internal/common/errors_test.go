package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		kind error
		code codes.Code
	}{
		{"input", InputError("ocr text required"), ErrInput, codes.InvalidArgument},
		{"config", ConfigError("no key"), ErrConfig, codes.FailedPrecondition},
		{"upstream", UpstreamError("call failed", cause), ErrUpstream, codes.Unavailable},
		{"mapping", MappingError("bad shape", cause), ErrMapping, codes.InvalidArgument},
		{"ocr", OCRError("tesseract", cause), ErrOCR, codes.Internal},
		{"unsupported", UnsupportedFormatError(".gif"), ErrUnsupportedFormat, codes.InvalidArgument},
		{"not found", NotFoundError("inbox file gone", cause), ErrNotFound, codes.NotFound},
		{"internal", InternalError("write outcome", cause), ErrInternal, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			var app *AppError
			assert.ErrorAs(t, tt.err, &app)

			st, ok := status.FromError(ToStatus(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
		})
	}
}

func TestErrorKindsKeepCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("extract: %w", UpstreamError("chat completion failed", cause))

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMapping)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, ToStatus(nil))

	st, _ := status.FromError(ToStatus(context.DeadlineExceeded))
	assert.Equal(t, codes.DeadlineExceeded, st.Code())

	st, _ = status.FromError(ToStatus(errors.New("plain")))
	assert.Equal(t, codes.Internal, st.Code())

	already := status.Error(codes.NotFound, "gone")
	assert.Equal(t, already, ToStatus(already))
}
