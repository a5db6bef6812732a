package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rileyhilliard/hublink/internal/connect"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONSuccess_BasicData(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONSuccess(&buf, map[string]string{"key": "value"})
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	dataMap, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", dataMap["key"])
}

func TestWriteJSONSuccess_NilData(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONSuccess(&buf, nil))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Nil(t, env.Error)
}

func TestWriteJSONError_AllFields(t *testing.T) {
	var buf bytes.Buffer

	details := map[string]string{"target": "42"}
	err := WriteJSONError(&buf, errors.ErrAcquisitionTimeout, "Timed out", "Try again", details)
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ACQUISITION_TIMEOUT", env.Error.Code)
	assert.Equal(t, "Timed out", env.Error.Message)
	assert.Equal(t, "Try again", env.Error.Suggestion)

	detailsMap, ok := env.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42", detailsMap["target"])
}

func TestWriteJSONFromError_GenericError(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONFromError(&buf, fmt.Errorf("something went wrong")))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNKNOWN", env.Error.Code)
	assert.Equal(t, "something went wrong", env.Error.Message)
}

func TestErrorToJSON(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       string
		message    string
		suggestion string
		hasCause   bool
	}{
		{
			name:       "structured",
			err:        errors.New(errors.ErrLimit, "Connection limit reached (2 of 2)", "Disconnect one first"),
			code:       "LIMIT",
			message:    "Connection limit reached (2 of 2)",
			suggestion: "Disconnect one first",
		},
		{
			name:     "structured with cause",
			err:      errors.WrapWithCode(fmt.Errorf("disk full"), errors.ErrPersistence, "Could not save", ""),
			code:     "PERSISTENCE",
			message:  "Could not save",
			hasCause: true,
		},
		{
			name:    "wrapped structured",
			err:     fmt.Errorf("connect: %w", errors.New(errors.ErrPermissionDenied, "Denied", "")),
			code:    "PERMISSION_DENIED",
			message: "Denied",
		},
		{
			name:    "plain",
			err:     fmt.Errorf("boom"),
			code:    "UNKNOWN",
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorToJSON(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.message, got.Message)
			assert.Equal(t, tt.suggestion, got.Suggestion)
			assert.Equal(t, tt.hasCause, got.Details != nil)
		})
	}
}

func TestErrorToJSON_NilReturnsNil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestWriteOutcomeJSON_NeverPrintsCredential(t *testing.T) {
	var buf bytes.Buffer
	rec := registry.Record{TargetID: 42, Credential: "secret-token-value", Enabled: true, CreatedAt: time.Unix(1700000000, 0)}

	err := writeOutcomeJSON(&buf, connect.Outcome{Target: remote.Target{ID: 42, Name: "Coffee Lovers"}, Record: &rec})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "secret-token-value")
	assert.Contains(t, buf.String(), rec.Fingerprint())

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestWriteOutcomeJSON_Failure(t *testing.T) {
	var buf bytes.Buffer

	err := writeOutcomeJSON(&buf, connect.Outcome{Err: errors.New(errors.ErrAlreadyRunning, "busy", "")})
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "ALREADY_RUNNING", env.Error.Code)
}
