// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/readiness": {
            "get": {
                "produces": ["application/json"],
                "summary": "List stored readiness records",
                "parameters": [
                    {"type": "string", "description": "First day (YYYY-MM-DD), default 29 days before to", "name": "from", "in": "query"},
                    {"type": "string", "description": "Last day (YYYY-MM-DD), default today", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/readiness/{date}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get the stored readiness record for a day",
                "parameters": [
                    {"type": "string", "description": "Day (YYYY-MM-DD)", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReadinessRecord"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "produces": ["application/json"],
                "summary": "Compute and store readiness for a day",
                "parameters": [
                    {"type": "string", "description": "Day (YYYY-MM-DD)", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReadinessRecord"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "No HRV for the day", "schema": {"$ref": "#/definitions/Error"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/trends": {
            "get": {
                "produces": ["application/json"],
                "summary": "Weekly workout trends",
                "parameters": [
                    {"type": "integer", "description": "Window in weeks, default 4", "name": "weeks", "in": "query"},
                    {"type": "string", "enum": ["run", "cycle", "swim", "strength", "combined"], "description": "View, default combined", "name": "view", "in": "query"},
                    {"type": "string", "description": "Last day of the window (YYYY-MM-DD), default today", "name": "end_date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/hooks/health-export": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Ingest a health export batch",
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "ReadinessRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "date": {"type": "string"},
                "type": {"type": "string"},
                "source": {"type": "string"},
                "hrv_score": {"type": "integer"},
                "sleep_score": {"type": "integer"},
                "training_load_score": {"type": "integer"},
                "composite_score": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Readiness Engine API",
	Description:      "Daily readiness scores and weekly workout trends from exported health data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
