package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []Code{
		ErrPermissionDenied,
		ErrAlreadyRunning,
		ErrAcquisitionTimeout,
		ErrAcquisitionFailure,
		ErrTransientConfig,
		ErrPersistence,
		ErrConfig,
		ErrRemote,
		ErrLimit,
		ErrUnknown,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	err := New(ErrPermissionDenied, "Access was not granted", "Approve the request to connect")

	assert.Equal(t, ErrPermissionDenied, err.Code)
	assert.Equal(t, "Access was not granted", err.Message)
	assert.Equal(t, "Approve the request to connect", err.Suggestion)
	assert.Nil(t, err.Cause)
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "message only",
			err:      New(ErrConfig, "Bad config", ""),
			contains: []string{"✗ Bad config"},
		},
		{
			name:     "with suggestion",
			err:      New(ErrLimit, "Too many connections", "Disconnect one first"),
			contains: []string{"✗ Too many connections", "Disconnect one first"},
		},
		{
			name:     "with cause",
			err:      WrapWithCode(fmt.Errorf("disk full"), ErrPersistence, "Could not save", "Free some space"),
			contains: []string{"✗ Could not save", "disk full", "Free some space"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
			assert.True(t, strings.HasPrefix(msg, "✗ "))
		})
	}
}

func TestWrapDefaultsToRemote(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(cause, "API call failed")

	assert.Equal(t, ErrRemote, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	base := New(ErrAcquisitionFailure, "no token", "")
	wrapped := fmt.Errorf("connect: %w", base)

	assert.Equal(t, ErrAcquisitionFailure, CodeOf(base))
	assert.Equal(t, ErrAcquisitionFailure, CodeOf(wrapped))
	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestIsCode(t *testing.T) {
	err := New(ErrAlreadyRunning, "busy", "")

	assert.True(t, IsCode(err, ErrAlreadyRunning))
	assert.False(t, IsCode(err, ErrPermissionDenied))
	assert.False(t, IsCode(nil, ErrAlreadyRunning))
	assert.False(t, IsCode(errors.New("busy"), ErrAlreadyRunning))
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	assert.True(t, IsTimeout(timeoutErr{}))
	assert.False(t, IsTimeout(context.Canceled))
	assert.False(t, IsTimeout(nil))
}

func TestUnwrapChain(t *testing.T) {
	root := errors.New("root")
	err := WrapWithCode(root, ErrPersistence, "save failed", "")

	var hlErr *Error
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &hlErr))
	assert.Equal(t, ErrPersistence, hlErr.Code)
	assert.True(t, Is(err, root))
}
