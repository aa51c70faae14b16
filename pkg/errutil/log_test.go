// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/msgboard/pkg/errutil"
)

func TestCode(t *testing.T) {
	t.Run("returns code of oops error", func(t *testing.T) {
		err := oops.Code("AUTH_SESSION_FAILED").Errorf("session store down")
		assert.Equal(t, "AUTH_SESSION_FAILED", errutil.Code(err))
	})

	t.Run("code survives uncoded wrapping", func(t *testing.T) {
		inner := oops.Code("AUTH_STORE_FAILED").Errorf("insert failed")
		err := oops.With("operation", "register").Wrap(inner)
		assert.Equal(t, "AUTH_STORE_FAILED", errutil.Code(err))
	})

	t.Run("uncoded oops error has empty code", func(t *testing.T) {
		err := oops.With("operation", "insert user").Wrap(errors.New("connection refused"))
		assert.Empty(t, errutil.Code(err))
	})

	t.Run("standard error has empty code", func(t *testing.T) {
		assert.Empty(t, errutil.Code(errors.New("plain")))
	})

	t.Run("nil error has empty code", func(t *testing.T) {
		assert.Empty(t, errutil.Code(nil))
	})
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("BOARD_STORE_FAILED").
		With("author_id", "abc").
		Errorf("something failed")

	errutil.LogError(logger, "operation failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "operation failed", logEntry["msg"])
	assert.Equal(t, "BOARD_STORE_FAILED", logEntry["code"])
	assert.Contains(t, logEntry, "context")
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
	assert.NotContains(t, logEntry, "code")
}
