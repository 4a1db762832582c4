// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies. Category payloads are a few hundred bytes.
const maxBodyBytes = 64 << 10

var validate = validator.New()

func init() {
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// createRequest is the body of POST /api/categories. Trimming, slug
// normalization and parent resolution happen in the category service; the
// tags here only reject payloads that can never be valid.
type createRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Slug        string     `json:"slug" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=1000"`
	ParentID    nullableID `json:"parentId"`
}

// updateRequest is the body of PATCH /api/categories/{id}. Absent fields
// are left unchanged.
type updateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Slug        *string    `json:"slug" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	ParentID    nullableID `json:"parentId"`
}

// nullableID tells an absent parentId apart from an explicit null. Both
// null and "" mean "no parent".
type nullableID struct {
	Set   bool
	Value string
}

// UnmarshalJSON is only called when the key is present, including for null.
func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = ""
		return nil
	}
	if err := json.Unmarshal(b, &n.Value); err != nil {
		return fmt.Errorf("parentId must be a string or null")
	}
	return nil
}

// ptr returns nil for an absent parentId and a pointer to the value otherwise.
func (n nullableID) ptr() *string {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// fieldError is one failed validation rule.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// bindJSON decodes the request body into dst and runs the validator tags.
// On failure it writes the error response and returns false; the caller
// must return without writing anything else.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is empty"
		case errors.As(err, &maxErr):
			msg = "request body is too large"
		default:
			msg = msg + ": " + err.Error()
		}
		writeError(w, http.StatusBadRequest, "validation", msg, nil)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "validation", err.Error(), nil)
			return false
		}
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		writeError(w, http.StatusUnprocessableEntity, "validation", describe(fields[0]), fields)
		return false
	}
	return true
}

func describe(fe fieldError) string {
	switch fe.Rule {
	case "required":
		return fe.Field + " is required"
	case "max":
		return fmt.Sprintf("%s is too long (max %s characters)", fe.Field, fe.Param)
	}
	return fe.Field + " is invalid"
}
