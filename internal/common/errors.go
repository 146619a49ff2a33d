package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds. Every AppError built by the constructors below matches exactly one
// of these with errors.Is.
var (
	ErrInput             = errors.New("invalid input")
	ErrConfig            = errors.New("configuration error")
	ErrUpstream          = errors.New("upstream provider error")
	ErrMapping           = errors.New("mapping error")
	ErrOCR               = errors.New("ocr failed")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNotFound          = errors.New("resource not found")
	ErrInternal          = errors.New("internal error")
)

// Error codes carried on AppError.Code.
const (
	CodeInput       = "INPUT_ERROR"
	CodeConfig      = "CONFIG_ERROR"
	CodeUpstream    = "UPSTREAM_ERROR"
	CodeMapping     = "MAPPING_ERROR"
	CodeOCR         = "OCR_ERROR"
	CodeUnsupported = "UNSUPPORTED_FORMAT"
	CodeNotFound    = "NOT_FOUND"
	CodeInternal    = "INTERNAL_ERROR"
)

// kindError joins a sentinel with an optional underlying cause so errors.Is
// matches both.
type kindError struct {
	kind  error
	cause error
}

func (k *kindError) Error() string {
	if k.cause == nil {
		return k.kind.Error()
	}
	return fmt.Sprintf("%s: %v", k.kind, k.cause)
}

func (k *kindError) Unwrap() []error {
	if k.cause == nil {
		return []error{k.kind}
	}
	return []error{k.kind, k.cause}
}

// NewAppError builds an AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func kinded(code string, kind error, message string, cause error) *AppError {
	return NewAppError(code, message, &kindError{kind: kind, cause: cause})
}

func InputError(message string) error {
	return kinded(CodeInput, ErrInput, message, nil)
}

func ConfigError(message string) error {
	return kinded(CodeConfig, ErrConfig, message, nil)
}

func UpstreamError(message string, cause error) error {
	return kinded(CodeUpstream, ErrUpstream, message, cause)
}

func MappingError(message string, cause error) error {
	return kinded(CodeMapping, ErrMapping, message, cause)
}

func OCRError(message string, cause error) error {
	return kinded(CodeOCR, ErrOCR, message, cause)
}

func UnsupportedFormatError(ext string) error {
	return kinded(CodeUnsupported, ErrUnsupportedFormat, fmt.Sprintf("unsupported file format for OCR: %q", ext), nil)
}

func NotFoundError(message string, cause error) error {
	return kinded(CodeNotFound, ErrNotFound, message, cause)
}

func InternalError(message string, cause error) error {
	return kinded(CodeInternal, ErrInternal, message, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ToStatus converts a domain error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isDomain(err) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, ErrInput), errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrMapping):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrConfig):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrUpstream):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func isDomain(err error) bool {
	var app *AppError
	return errors.As(err, &app)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}
