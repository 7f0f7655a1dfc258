// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
		"/auth/verify": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Verify token",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/me": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Current user",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/user-data": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Raw financial records",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/register": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Register user",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Login",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/auth/token": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "OAuth2 token",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/chat/conversations": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "Create conversation",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "List conversations",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/chat/conversations/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "Get conversation",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "Rename, deactivate or annotate a conversation",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "Delete conversation",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/chat/conversations/{id}/messages": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "List messages",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "Send message",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/chat/chat": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"chat"
				],
				"summary": "Send message",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/documents/upload": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"documents"
				],
				"summary": "Upload document",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/documents": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"documents"
				],
				"summary": "List documents",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/documents/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"documents"
				],
				"summary": "Get document metadata and extraction result",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"documents"
				],
				"summary": "Update document type or metadata",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"documents"
				],
				"summary": "Delete document",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/documents/{id}/content": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"documents"
				],
				"summary": "Download document",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/financial/products": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "List financial products",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/financial/products/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Get product",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/financial/investments": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "List the caller's investments",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Create investment",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/financial/investments/summary": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Portfolio totals and allocation",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/financial/investments/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Get investment",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Update investment",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Delete investment",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/financial/transaction-summary": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Spending summary",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/financial/account": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Account balances",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/financial/credit-history": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Credit history",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/financial/demographics": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Demographic profile",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/financial/financial-profile": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"financial"
				],
				"summary": "Full financial profile",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/meta-prompt": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"meta-prompt"
				],
				"summary": "Current meta-prompt",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/meta-prompt/generate": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"meta-prompt"
				],
				"summary": "Regenerate meta-prompt",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/onboard/start": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"onboarding"
				],
				"summary": "Start onboarding",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/onboard/update": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"onboarding"
				],
				"summary": "Answer onboarding question",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/onboard/complete": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"onboarding"
				],
				"summary": "Complete onboarding",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/recommendations": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"recommendations"
				],
				"summary": "Get recommendations",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/recommendations/history": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"recommendations"
				],
				"summary": "Past recommendations",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/recommendations/feedback": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"recommendations"
				],
				"summary": "Recommendation feedback",
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Authorization token: \"Bearer <JWT>\" or \"<JWT>\".",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "finadvisor API",
	Description:      "Personal financial advisory chatbot: conversations grounded in the user's financial records, onboarding, document analysis and product recommendations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
