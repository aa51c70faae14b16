// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/auth/memory"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hasher, err := auth.NewBcryptHasher(auth.MinBcryptCost)
	require.NoError(t, err)
	authSvc, err := auth.NewAuthServiceWithLogger(
		memory.NewUserRepository(), memory.NewSessionRepository(), hasher, quietLogger())
	require.NoError(t, err)

	srv := NewServer(authSvc, nil, Options{
		Addr:       "127.0.0.1:0",
		CookieName: "sid",
		Logger:     quietLogger(),
	})
	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEmpty(t, srv.Addr())

	_, err = srv.Start()
	assert.Error(t, err, "second start must fail")

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + srv.Addr() + "/api/auth")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, srv.Stop(ctx), "stop is idempotent")

	select {
	case err, ok := <-errCh:
		if ok {
			assert.NoError(t, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error channel not closed after stop")
	}
}

func TestServer_StartBadAddr(t *testing.T) {
	srv := NewServer(nil, nil, Options{Addr: "256.0.0.1:bad", Logger: quietLogger()})
	_, err := srv.Start()
	assert.Error(t, err)
	assert.Empty(t, srv.Addr())
}
