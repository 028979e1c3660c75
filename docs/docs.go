// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Health Check", "responses": {"200": {"description": "OK"}, "503": {"description": "Database unreachable"}}}},
        "/api/me": {"get": {"tags": ["identity"], "summary": "Current actor", "responses": {"200": {"description": "OK"}}}},
        "/api/negotiations": {
            "get": {"tags": ["negotiation"], "summary": "List negotiations", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["negotiation"], "summary": "Create a negotiation", "responses": {"201": {"description": "Created"}, "422": {"description": "Validation"}}}
        },
        "/api/negotiations/{id}": {"get": {"tags": ["negotiation"], "summary": "Get a negotiation", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/api/negotiations/{id}/submit": {"post": {"tags": ["negotiation"], "summary": "Submit a draft", "responses": {"200": {"description": "OK"}, "409": {"description": "State"}}}},
        "/api/negotiations/{id}/approve": {"post": {"tags": ["negotiation"], "summary": "Approve a complete negotiation", "responses": {"200": {"description": "OK"}}}},
        "/api/negotiations/{id}/cancel": {"post": {"tags": ["negotiation"], "summary": "Cancel a negotiation", "responses": {"200": {"description": "OK"}}}},
        "/api/negotiations/{id}/recompute": {"post": {"tags": ["negotiation"], "summary": "Recompute the derived status", "responses": {"200": {"description": "OK"}}}},
        "/api/negotiations/{id}/contract": {"post": {"tags": ["negotiation"], "summary": "Generate a contract", "responses": {"201": {"description": "Created"}}}},
        "/api/negotiations/{id}/cycle": {"post": {"tags": ["negotiation"], "summary": "Start a new cycle", "responses": {"200": {"description": "OK"}, "422": {"description": "Cycle limit"}}}},
        "/api/negotiations/{id}/fork": {"post": {"tags": ["negotiation"], "summary": "Fork into groups", "responses": {"201": {"description": "Created"}}}},
        "/api/negotiations/{id}/rollback": {"post": {"tags": ["negotiation"], "summary": "Roll back the status", "responses": {"200": {"description": "OK"}}}},
        "/api/negotiation-items/{id}/respond": {"post": {"tags": ["negotiation"], "summary": "Respond to an item", "responses": {"200": {"description": "OK"}}}},
        "/api/contracts": {"get": {"tags": ["contract"], "summary": "List contracts", "responses": {"200": {"description": "OK"}}}},
        "/api/contracts/{id}": {"get": {"tags": ["contract"], "summary": "Get a contract", "responses": {"200": {"description": "OK"}}}},
        "/api/contract-approval/{id}/{step}": {"post": {"tags": ["contract"], "summary": "Act on an approval step", "responses": {"200": {"description": "OK"}, "409": {"description": "Out of order"}}}},
        "/api/contract-approval/{id}/resubmit": {"post": {"tags": ["contract"], "summary": "Resubmit a rejected contract", "responses": {"200": {"description": "OK"}}}},
        "/api/extemporaneous-negotiations": {
            "get": {"tags": ["extemporaneous"], "summary": "List extemporaneous negotiations", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["extemporaneous"], "summary": "Create an extemporaneous negotiation", "responses": {"201": {"description": "Created"}}}
        },
        "/api/scheduling-exceptions": {
            "get": {"tags": ["scheduling"], "summary": "List scheduling exceptions", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["scheduling"], "summary": "Request a scheduling exception", "responses": {"201": {"description": "Created"}}}
        },
        "/api/value-verifications": {
            "get": {"tags": ["verification"], "summary": "List value verifications", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["verification"], "summary": "Submit a value for verification", "responses": {"201": {"description": "Created"}}}
        },
        "/api/value-verifications/{id}/verify": {"post": {"tags": ["verification"], "summary": "Verify a submitted value", "responses": {"200": {"description": "OK"}, "403": {"description": "Dual control"}}}},
        "/api/audit-logs": {"get": {"tags": ["audit"], "summary": "List audit entries", "responses": {"200": {"description": "OK"}}}},
        "/api/notifications": {"get": {"tags": ["notification"], "summary": "List notifications for the caller", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Negotiation API",
	Description:      "Provider negotiations, contract approval and the exception workflows around them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
