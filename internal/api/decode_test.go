// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/msgboard/pkg/errutil"
)

func newContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestBind_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"valid", `{"email":"a@b.com","password":"secret1"}`, ""},
		{"empty body", ``, `"email" is required`},
		{"empty object", `{}`, `"email" is required`},
		{"missing password", `{"email":"a@b.com"}`, `"password" is required`},
		{"null field", `{"email":null,"password":"secret1"}`, `"email" is required`},
		{"unknown field", `{"email":"a@b.com","password":"secret1","isAdmin":true}`, `"isAdmin" is not allowed`},
		{"wrong type", `{"email":42,"password":"secret1"}`, `"email" must be a string`},
		{"array body", `[]`, `"value" must be of type object`},
		{"malformed", `{"email":`, "request body is not valid JSON"},
		{"trailing data", `{"email":"a@b.com","password":"secret1"} {}`, "request body must contain a single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := bind[credentialsRequest](newContext(tt.body))
			if tt.message == "" {
				require.NoError(t, err)
				assert.Equal(t, "a@b.com", *req.Email)
				assert.Equal(t, "secret1", *req.Password)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, codeBadRequest)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestBind_EmptyStringIsPresent(t *testing.T) {
	// emptiness is reported by the service with its own message
	req, err := bind[authorRequest](newContext(`{"nickName":""}`))
	require.NoError(t, err)
	assert.Equal(t, "", *req.NickName)
}

func TestBind_Article(t *testing.T) {
	_, err := bind[articleRequest](newContext(`{"title":"Hello"}`))
	require.Error(t, err)
	assert.Equal(t, `"text" is required`, err.Error())
}
