// Package docs provides the swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/readyz": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/configs": {
            "get": {
                "tags": ["configs"],
                "summary": "List copy configurations",
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/configs/{id}/toggle": {
            "post": {
                "tags": ["configs"],
                "summary": "Toggle a copy configuration's active flag",
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "write failed; refreshed list attached"}}
            }
        },
        "/api/v1/configs/{id}": {
            "delete": {
                "tags": ["configs"],
                "summary": "Delete a copy configuration",
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/trades/pending": {
            "get": {
                "tags": ["trades"],
                "summary": "List pending trades awaiting confirmation",
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/positions": {
            "get": {
                "tags": ["positions"],
                "summary": "List positions",
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/discovery/fresh": {
            "get": {
                "tags": ["discovery"],
                "summary": "Freshly launched tokens, newest first",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/discovery/momentum": {
            "get": {
                "tags": ["discovery"],
                "summary": "Tokens with migration or trading momentum",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/discovery/status": {
            "get": {
                "tags": ["discovery"],
                "summary": "Per-source fetch status of the last refresh cycle",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/discovery/min-market-cap": {
            "put": {
                "tags": ["discovery"],
                "summary": "Set the market-cap floor applied to both discovery columns",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/preferences/currency-mode": {
            "get": {
                "tags": ["preferences"],
                "summary": "Current currency display mode",
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["preferences"],
                "summary": "Set the currency display mode",
                "parameters": [
                    {"name": "X-User-ID", "in": "header", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/stream": {
            "get": {
                "tags": ["stream"],
                "summary": "Push-update stream of change events",
                "parameters": [
                    {"name": "topics", "in": "query", "type": "string"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Copydesk API",
	Description:      "Copy-trading dashboard backend and token discovery aggregator.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
