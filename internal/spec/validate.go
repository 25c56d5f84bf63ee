package spec

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Validate runs a structural validation pass over the raw document bytes
// before the model is handed to the synthesizers. It catches malformed
// paths/components shapes early with pointer-annotated errors; the
// generator itself only assumes the structure, it does not re-check it.
func Validate(ctx context.Context, data []byte, location string) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return mapValidateOrParseErr(err, location)
	}
	if err := doc.Validate(ctx); err != nil {
		return mapValidateOrParseErr(err, location)
	}
	return nil
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	// Fallback: parse from the error message if a pointer literal appears.
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
