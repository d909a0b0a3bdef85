package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const stepsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["order", "approvers"],
    "properties": {
      "order": { "type": "integer" },
      "approvers": { "type": "array", "items": { "type": "string" } },
      "deadline_hours": { "type": "integer" }
    },
    "additionalProperties": false
  }
}`

const schemaCreateDocument = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": { "type": "string" },
    "description": { "type": "string" },
    "route_id": { "type": "string" }
  },
  "additionalProperties": false
}`

const schemaBindRoute = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["route_id"],
  "properties": {
    "route_id": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": false
}`

const schemaSubmit = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "route_id": { "type": "string" }
  },
  "additionalProperties": false
}`

const schemaDecide = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["decision"],
  "properties": {
    "decision": { "type": "string" },
    "comment": { "type": "string" }
  },
  "additionalProperties": false
}`

var schemaCreateRoute = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": { "type": "string" },
    "steps": ` + stepsSchema + `
  },
  "additionalProperties": false
}`

var schemaReplaceSteps = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["steps"],
  "properties": {
    "steps": ` + stepsSchema + `
  },
  "additionalProperties": false
}`

var (
	createDocumentLoader = gojsonschema.NewStringLoader(schemaCreateDocument)
	bindRouteLoader      = gojsonschema.NewStringLoader(schemaBindRoute)
	submitLoader         = gojsonschema.NewStringLoader(schemaSubmit)
	decideLoader         = gojsonschema.NewStringLoader(schemaDecide)
	createRouteLoader    = gojsonschema.NewStringLoader(schemaCreateRoute)
	replaceStepsLoader   = gojsonschema.NewStringLoader(schemaReplaceSteps)
)

// decodeBody reads the request body, checks its shape against schema and
// decodes it into v. An empty body is treated as {}.
func decodeBody(r *http.Request, schema gojsonschema.JSONLoader, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("cannot read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("request does not conform to schema: %s", strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
