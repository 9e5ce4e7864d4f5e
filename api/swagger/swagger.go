package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Attendance",
        "description": "Script-facing endpoints of the instructor attendance web app. Pages are server-rendered and not listed.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Attendance", "description": "Attendance record maintenance"},
        {"name": "Observability", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Status"}}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness probe",
                "description": "Pings the database pool.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/Status"}},
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/Status"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Prometheus exposition format"}
                }
            }
        },
        "/attendance/{id}": {
            "delete": {
                "tags": ["Attendance"],
                "summary": "Delete an attendance record",
                "description": "Removes one attendance row by id. Requires an authenticated session cookie.",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer", "description": "Attendance record id"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Result"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/Result"}},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/Result"}},
                    "404": {"description": "Attendance record not found", "schema": {"$ref": "#/definitions/Result"}},
                    "500": {"description": "Store error", "schema": {"$ref": "#/definitions/Result"}}
                }
            }
        }
    },
    "definitions": {
        "Result": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "Status": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "reason": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
