package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Charge Scolaire API",
        "description": "Workload aggregation and DST schedule-conflict engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Teacher authentication"},
        {"name": "Workload", "description": "Assignments and workload summaries"},
        {"name": "DST", "description": "Supervised-exam calendar"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a teacher and issue an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Workload"],
                "summary": "List assignments",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Workload"],
                "summary": "Create an assignment, returning the conflict projection",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/done": {
            "patch": {
                "tags": ["Workload"],
                "summary": "Mark an assignment done or not done",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/workload/daily": {
            "get": {
                "tags": ["Workload"],
                "summary": "Daily workload summary",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workload/weekly": {
            "get": {
                "tags": ["Workload"],
                "summary": "Weekly workload summary with daily breakdown",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workload/stats": {
            "get": {
                "tags": ["Workload"],
                "summary": "Workload statistics over a period",
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "end", "in": "query", "required": true, "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workload/conflicts": {
            "post": {
                "tags": ["Workload"],
                "summary": "Dry-run conflict projection for a candidate assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dsts": {
            "get": {
                "tags": ["DST"],
                "summary": "List all scheduled DSTs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["DST"],
                "summary": "Schedule a DST manually",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDSTRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dsts/{id}": {
            "delete": {
                "tags": ["DST"],
                "summary": "Remove a scheduled DST",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/dsts/import": {
            "post": {
                "tags": ["DST"],
                "summary": "Extract and store DSTs from raw planning text",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ImportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Nothing could be extracted from the document"}
                }
            }
        },
        "/dsts/audit": {
            "get": {
                "tags": ["DST"],
                "summary": "Audit the DST calendar for unsafe spacing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dsts/suggestions": {
            "get": {
                "tags": ["DST"],
                "summary": "Suggest exam dates around a preferred one",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "range", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dsts/export": {
            "get": {
                "tags": ["DST"],
                "summary": "Export the DST calendar as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["homework", "test"]},
                "sub_kind": {"type": "string", "enum": ["light", "medium", "heavy", "quiz", "control", "dst", "exam"]},
                "due_date": {"type": "string"},
                "class_id": {"type": "string"},
                "subject": {"type": "string"}
            },
            "required": ["kind", "due_date"]
        },
        "CreateDSTRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "subject": {"type": "string"},
                "classes": {"type": "array", "items": {"type": "string"}},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "room": {"type": "string"}
            },
            "required": ["date", "subject", "classes"]
        },
        "ImportRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            },
            "required": ["text"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
