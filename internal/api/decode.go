// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// decodeStrict decodes the request body into dst, rejecting unknown keys,
// wrong types and trailing data. An empty body decodes as an empty object so
// required-field checks report what is missing.
func decodeStrict(c echo.Context, dst any) error {
	body := io.LimitReader(c.Request().Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return decodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return badRequest(`"value" must be of type object`)
		}
		// every request field is a string
		return badRequest(`"%s" must be a string`, typeErr.Field)
	}

	if field, found := strings.CutPrefix(err.Error(), "json: unknown field "); found {
		return badRequest(`%s is not allowed`, field)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return badRequest("request body is not valid JSON")
	}
	return badRequest("request body could not be read")
}

// required reports a missing field.
func required(field string, v *string) error {
	if v == nil {
		return badRequest(`"%s" is required`, field)
	}
	return nil
}

type credentialsRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r credentialsRequest) validate() error {
	if err := required("email", r.Email); err != nil {
		return err
	}
	return required("password", r.Password)
}

type authorRequest struct {
	NickName *string `json:"nickName"`
}

func (r authorRequest) validate() error {
	return required("nickName", r.NickName)
}

type articleRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

func (r articleRequest) validate() error {
	if err := required("title", r.Title); err != nil {
		return err
	}
	return required("text", r.Text)
}

type validator interface {
	validate() error
}

// bind decodes and presence-checks a request body.
func bind[T validator](c echo.Context) (T, error) {
	var req T
	if err := decodeStrict(c, &req); err != nil {
		return req, err
	}
	if err := req.validate(); err != nil {
		return req, err
	}
	return req, nil
}
