package routefile

// routeFileSchema constrains the shape of a route definition file. Semantic
// rules that span steps, such as unique orders, are checked by the route
// service when the definitions are stored.
const routeFileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["routes"],
  "properties": {
    "routes": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/definitions/route" }
    }
  },
  "additionalProperties": false,
  "definitions": {
    "route": {
      "type": "object",
      "required": ["name", "steps"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "steps": {
          "type": "array",
          "minItems": 1,
          "items": { "$ref": "#/definitions/step" }
        }
      },
      "additionalProperties": false
    },
    "step": {
      "type": "object",
      "required": ["order", "approvers"],
      "properties": {
        "order": { "type": "integer", "minimum": 1 },
        "approvers": {
          "type": "array",
          "minItems": 1,
          "uniqueItems": true,
          "items": { "type": "string", "minLength": 1 }
        },
        "deadline_hours": { "type": "integer", "minimum": 1 }
      },
      "additionalProperties": false
    }
  }
}`
