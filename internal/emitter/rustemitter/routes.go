package rustemitter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openclientgen/openapi2rust/internal/diag"
	"github.com/openclientgen/openapi2rust/internal/naming"
	"github.com/openclientgen/openapi2rust/internal/resolve"
	"github.com/openclientgen/openapi2rust/internal/spec"
)

// responseCategory drives how the generated function decodes the response.
type responseCategory int

const (
	respNone responseCategory = iota
	respJSON
	respText
	respBytes
)

func (c responseCategory) decodePart() string {
	switch c {
	case respJSON:
		return "\n        .json()\n        .await?;\n\n    Ok(response)"
	case respText:
		return "\n        .text()\n        .await?;\n\n    Ok(response)"
	case respNone:
		return ";\n\n    Ok(())"
	default:
		return "\n        .bytes()\n        .await?;\n\n    Ok(response)"
	}
}

var placeholderRe = regexp.MustCompile(`\{(.*?)\}`)

// generateRoutes renders src/lib.rs: the crate header, module
// declarations, and one async function per operation in path order then
// fixed method order.
func generateRoutes(doc *spec.Document, resolver *resolve.Resolver, sink diag.Sink) (string, error) {
	var b strings.Builder

	b.WriteString("#![forbid(unsafe_code)]\n")
	b.WriteString("#![allow(unused_mut)]\n")
	b.WriteString("#![allow(unused_variables)]\n")
	b.WriteString("#![allow(unused_imports)]\n\n")

	b.WriteString("use anyhow::{Context as _, Result};\n")
	b.WriteString("use crate::clients::ApiClient;\n")
	b.WriteString("use reqwest::Method;\n\n")

	b.WriteString("pub mod builder;\n")
	b.WriteString("pub mod clients;\n")
	b.WriteString("pub mod models;\n\n")

	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		for _, mo := range item.Operations() {
			if err := generateRoute(&b, path, mo.Method, mo.Operation, item.Parameters, resolver, sink); err != nil {
				return "", err
			}
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func generateRoute(b *strings.Builder, path, method string, op *spec.Operation, shared []*spec.ParameterRef, resolver *resolve.Resolver, sink diag.Sink) error {
	if op.OperationID == "" {
		return fmt.Errorf("%q %q does not have operationId", method, path)
	}

	if op.Description != "" {
		fmt.Fprintf(b, "#[doc = r#\"%s\"#]\n", op.Description)
	}

	fmt.Fprintf(b, "pub async fn %s(\n", op.OperationID)
	b.WriteString("    client: &ApiClient,\n")

	for _, handle := range unionParameters(shared, op.Parameters) {
		resolved, err := resolver.Resolve(resolve.ParameterTarget(handle))
		if err != nil {
			return err
		}
		if resolved == nil {
			continue
		}
		if resolved.Kind != resolve.KindParameter {
			return fmt.Errorf("%s %s: resolved to unexpected type %s, expected Parameter", method, path, resolved.Kind)
		}
		parameter := resolved.Parameter
		if parameter.Schema == nil {
			// content-valued parameters cannot be type-mapped
			continue
		}

		typ, err := mapSchemaType(parameter.Schema, UsageBorrowedParam)
		if err != nil {
			return fmt.Errorf("failed to map type for parameter %q (schema %+v): %w",
				parameter.Name, parameter.Schema, err)
		}
		fmt.Fprintf(b, "    %s: %s,\n",
			naming.ToSnake(parameter.Name), wrapOptional(typ, parameter.Required))
	}

	if err := writePayloadParameter(b, path, method, op, resolver, sink); err != nil {
		return err
	}

	b.WriteString(") -> Result<")

	category, err := writeReturnType(b, path, method, op, resolver, sink)
	if err != nil {
		return err
	}

	b.WriteString("> {\n")

	if err := generateFunctionBody(b, path, method, op, shared, resolver, sink, category); err != nil {
		return err
	}

	b.WriteString("\n}\n\n")
	return nil
}

// writePayloadParameter emits the payload argument for the request body,
// if any. The first supported media type wins; its schema is typed by one
// of three shapes: named reference, array of a single item schema, or an
// inline primitive.
func writePayloadParameter(b *strings.Builder, path, method string, op *spec.Operation, resolver *resolve.Resolver, sink diag.Sink) error {
	resolved, err := resolver.Resolve(resolve.RequestBodyTarget(op.RequestBody))
	if err != nil {
		return err
	}
	if resolved == nil {
		return nil
	}
	if resolved.Kind != resolve.KindRequestBody {
		return fmt.Errorf("%s %s: resolved to unexpected type %s, expected RequestBody", method, path, resolved.Kind)
	}
	body := resolved.RequestBody

	media := selectRequestMedia(body, sink)
	if media == nil {
		return fmt.Errorf("%s %s: no supported request body media type", method, path)
	}
	schema := media.Schema
	if schema == nil {
		return fmt.Errorf("%s %s: request body media type needs a schema", method, path)
	}

	switch {
	case schema.Ref != "":
		fmt.Fprintf(b, "    payload: %s,\n", modelsPath(schema.Ref))
	case schema.Items != nil:
		itemType, err := arrayItemType(schema.Items, UsageBorrowedParam)
		if err != nil {
			return fmt.Errorf("%s %s: request body: %w", method, path, err)
		}
		fmt.Fprintf(b, "    payload: Vec<%s>,\n", itemType)
	default:
		typ, err := mapSchemaType(schema, UsageBorrowedParam)
		if err != nil {
			return fmt.Errorf("%s %s: failed to map request body type (schema %+v): %w",
				method, path, schema, err)
		}
		fmt.Fprintf(b, "    payload: %s,\n", typ)
	}
	return nil
}

// selectRequestMedia picks the first request body media type the client
// can encode; anything else is logged and skipped.
func selectRequestMedia(body *spec.RequestBody, sink diag.Sink) *spec.MediaType {
	var chosen *spec.MediaType
	for _, mime := range body.Content.Keys() {
		media, _ := body.Content.Get(mime)
		switch mime {
		case "application/json", "multipart/form-data", "application/octet-stream":
			if chosen == nil {
				chosen = media
			}
		default:
			sink.Warnf("found %q, expected json, form data or octet stream", mime)
		}
	}
	return chosen
}

// arrayItemType maps an array schema's single item shape. Item lists and
// boolean item schemas are unsupported and abort the run.
func arrayItemType(items *spec.ItemsSet, usage Usage) (string, error) {
	if items.List != nil {
		return "", fmt.Errorf("array with multiple item schemas is not supported")
	}
	single := items.Single
	if single == nil {
		return "", fmt.Errorf("array has no item schema")
	}
	if single.Bool != nil {
		return "", fmt.Errorf("array of boolean schemas is not supported")
	}
	typ, err := mapSchemaType(single.Schema, usage)
	if err != nil {
		return "", fmt.Errorf("failed to map array item type (schema %+v): %w", single.Schema, err)
	}
	return typ, nil
}

// writeReturnType renders the function's success type from the 200
// response and reports which decode step the body needs.
func writeReturnType(b *strings.Builder, path, method string, op *spec.Operation, resolver *resolve.Resolver, sink diag.Sink) (responseCategory, error) {
	var handle *spec.ResponseRef
	if op.Responses != nil {
		if ref, ok := op.Responses.Get("200"); ok {
			handle = ref
		}
	}

	resolved, err := resolver.Resolve(resolve.ResponseTarget(handle))
	if err != nil {
		return respNone, err
	}
	if resolved == nil {
		b.WriteString("()")
		return respNone, nil
	}
	if resolved.Kind != resolve.KindResponse {
		return respNone, fmt.Errorf("%s %s: resolved to unexpected type %s, expected Response", method, path, resolved.Kind)
	}
	response := resolved.Response

	if response.Content.Len() == 0 {
		b.WriteString("()")
		return respNone, nil
	}

	if jsonMedia, ok := response.Content.Get("application/json"); ok {
		schema := jsonMedia.Schema
		if schema == nil {
			return respNone, fmt.Errorf("%s %s: 200 response needs a schema", method, path)
		}
		switch {
		case schema.Ref != "":
			b.WriteString(modelsPath(schema.Ref))
			return respJSON, nil
		case schema.Items != nil:
			itemType, err := arrayItemType(schema.Items, UsageOwned)
			if err != nil {
				return respNone, fmt.Errorf("%s %s: 200 response: %w", method, path, err)
			}
			fmt.Fprintf(b, "Vec<%s>", itemType)
			return respJSON, nil
		default:
			if single, ok := schema.SingleType(); ok && single == "array" {
				return respNone, fmt.Errorf("%s %s: 200 response type is array but has no items (schema %+v)", method, path, schema)
			}
			typ, err := mapSchemaType(schema, UsageOwned)
			if err != nil {
				return respNone, fmt.Errorf("%s %s: failed to map 200 response type (schema %+v): %w",
					method, path, schema, err)
			}
			b.WriteString(typ)
			if typ == "()" {
				return respNone, nil
			}
			return respJSON, nil
		}
	}

	if _, ok := response.Content.Get("text/plain"); ok {
		b.WriteString("String")
		return respText, nil
	}

	// octet-stream is expected to land on the bytes fallback, so only
	// other media types warrant a warning.
	if _, ok := response.Content.Get("application/octet-stream"); !ok {
		sink.Warnf("unknown response mime type(s), falling back to `bytes::Bytes`: %v", response.Content.Keys())
	}
	b.WriteString("bytes::Bytes")
	return respBytes, nil
}

func generateFunctionBody(b *strings.Builder, path, method string, op *spec.Operation, shared []*spec.ParameterRef, resolver *resolve.Resolver, sink diag.Sink, category responseCategory) error {
	b.WriteString("    let mut builder = client.request(\n")
	fmt.Fprintf(b, "        Method::%s,\n", method)

	var placeholders []string
	for _, match := range placeholderRe.FindAllStringSubmatch(path, -1) {
		placeholders = append(placeholders, match[1])
	}

	if len(placeholders) > 0 {
		fmt.Fprintf(b, "        &format!(%q, ", path)
		for _, arg := range placeholders {
			fmt.Fprintf(b, "%s = %s, ", arg, naming.ToSnake(arg))
		}
		b.WriteString(")")
	} else {
		fmt.Fprintf(b, "        %q", path)
	}
	b.WriteString("\n    )?;\n")

	// Query strings as parameters; path parameters were consumed above.
	for _, handle := range unionParameters(shared, op.Parameters) {
		resolved, err := resolver.Resolve(resolve.ParameterTarget(handle))
		if err != nil {
			return err
		}
		if resolved == nil || resolved.Kind != resolve.KindParameter {
			continue
		}
		parameter := resolved.Parameter

		switch parameter.In {
		case "path":
			continue
		case "query":
			if parameter.Schema == nil {
				continue
			}
			name := naming.ToSnake(parameter.Name)
			typ, err := mapSchemaType(parameter.Schema, UsageBorrowedParam)
			if err != nil {
				return fmt.Errorf("failed to map type for parameter %q (schema %+v): %w",
					parameter.Name, parameter.Schema, err)
			}

			// types without a Display form get converted to strings
			value := name
			switch typ {
			case "time::OffsetDateTime":
				value = name + ".to_string()"
			case "std::collections::HashMap<String, String>":
				value = "serde_json::to_string(&" + name + ")?"
			}

			if parameter.Required {
				fmt.Fprintf(b, "    builder = builder.query(&[(%q, %s)]);\n", parameter.Name, value)
			} else {
				fmt.Fprintf(b, "    if let Some(%s) = %s {\n", name, name)
				fmt.Fprintf(b, "        builder = builder.query(&[(%q, %s)]);\n", parameter.Name, value)
				b.WriteString("    }\n")
			}
		default:
			sink.Warnf("unknown `in`: %s", parameter.In)
		}
	}

	// Request body
	if op.RequestBody != nil {
		resolved, err := resolver.Resolve(resolve.RequestBodyTarget(op.RequestBody))
		if err != nil {
			return err
		}
		if resolved != nil {
			if resolved.Kind != resolve.KindRequestBody {
				return fmt.Errorf("%s %s: resolved to unexpected type %s, expected RequestBody", method, path, resolved.Kind)
			}
			body := resolved.RequestBody
			if _, ok := body.Content.Get("application/json"); ok {
				b.WriteString("    builder = builder.json(&payload);\n")
			} else if _, ok := body.Content.Get("multipart/form-data"); ok {
				b.WriteString("    builder = builder.form(&payload);\n")
			} else if _, ok := body.Content.Get("application/octet-stream"); ok {
				b.WriteString("    builder = builder.body(payload);\n")
			} else {
				sink.Warnf("unsupported request body media type(s): %v", body.Content.Keys())
			}
		}
	}

	b.WriteString("    let response = builder.send()\n")
	b.WriteString("        .await?\n")
	b.WriteString("        .error_for_status()?")
	b.WriteString(category.decodePart())

	return nil
}

// unionParameters concatenates the path item's shared parameters with the
// operation's own, shared first.
func unionParameters(shared, own []*spec.ParameterRef) []*spec.ParameterRef {
	out := make([]*spec.ParameterRef, 0, len(shared)+len(own))
	out = append(out, shared...)
	out = append(out, own...)
	return out
}
