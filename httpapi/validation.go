package httpapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSON schemas for the POST bodies. Validated against the raw payload
// before binding so missing and mistyped fields fail with a 400 rather
// than a zero-valued struct.

const estimateSchema = `{
	"type": "object",
	"required": ["chainId", "action", "sender"],
	"properties": {
		"chainId": {"type": "integer", "minimum": 1},
		"action": {"type": "string", "minLength": 1},
		"sender": {"type": "string", "minLength": 1},
		"recipient": {"type": "string"},
		"amount": {"type": "string"}
	}
}`

const executeSchema = `{
	"type": "object",
	"required": ["chainId", "action", "sender", "sponsored", "estimate"],
	"properties": {
		"chainId": {"type": "integer", "minimum": 1},
		"action": {"type": "string", "minLength": 1},
		"sender": {"type": "string", "minLength": 1},
		"recipient": {"type": "string"},
		"amount": {"type": "string"},
		"sponsored": {"type": "boolean"},
		"estimate": {
			"type": "object",
			"required": ["gasFeeNative", "gasFeeUSDC", "nativeToken"],
			"properties": {
				"gasFeeNative": {"type": "string"},
				"gasFeeUSDC": {"type": "string"},
				"nativeToken": {"type": "string"}
			}
		}
	}
}`

// ValidateEstimateBody checks an estimate request body against its schema.
func ValidateEstimateBody(body []byte) error {
	return validateSchema(estimateSchema, body)
}

// ValidateExecuteBody checks an execute request body against its schema.
func ValidateExecuteBody(body []byte) error {
	return validateSchema(executeSchema, body)
}

func validateSchema(schema string, body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	return fmt.Errorf("invalid request body: %s", strings.Join(messages, "; "))
}
