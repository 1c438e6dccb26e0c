// Package docs holds the Swagger document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
        "/admin/households/{id}/categories/normalize": {
            "post": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "admin"
                ],
                "summary": "Normalize duplicate categories",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Household ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Groups merged"
                    }
                }
            }
        },
        "/admin/reminders/due": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "admin"
                ],
                "summary": "Due reminders of all households",
                "responses": {
                    "200": {
                        "description": "Due reminders"
                    }
                }
            }
        },
        "/budgets": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Create or replace the current month's limit for a category",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "budgets"
                ],
                "summary": "Set a budget",
                "parameters": [
                    {
                        "description": "Budget details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Budget set"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "500": {
                        "description": "Server error"
                    }
                }
            }
        },
        "/budgets/status": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "budgets"
                ],
                "summary": "Budget status",
                "responses": {
                    "200": {
                        "description": "Budget status"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "500": {
                        "description": "Server error"
                    }
                }
            }
        },
        "/categories": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "List categories, reconciling names only found on transactions",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "categories"
                ],
                "summary": "List categories",
                "responses": {
                    "200": {
                        "description": "Categories"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "categories"
                ],
                "summary": "Create category",
                "parameters": [
                    {
                        "description": "Category",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Category created"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "409": {
                        "description": "Category exists"
                    }
                }
            }
        },
        "/categories/merge": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "categories"
                ],
                "summary": "Merge categories",
                "parameters": [
                    {
                        "description": "Source and target",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Merged"
                    },
                    "400": {
                        "description": "Source equals target"
                    },
                    "404": {
                        "description": "Category not found"
                    }
                }
            }
        },
        "/categories/rename": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "categories"
                ],
                "summary": "Rename category",
                "parameters": [
                    {
                        "description": "Old and new name",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Category renamed"
                    },
                    "404": {
                        "description": "Category not found"
                    },
                    "409": {
                        "description": "Name taken"
                    }
                }
            }
        },
        "/categories/{name}": {
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "categories"
                ],
                "summary": "Delete category",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Category name",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Category deleted"
                    },
                    "404": {
                        "description": "Category not found"
                    },
                    "409": {
                        "description": "Category in use"
                    }
                }
            }
        },
        "/household": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Get the caller's household with its members",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Get household",
                "responses": {
                    "200": {
                        "description": "Household"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Household not found"
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Rename household",
                "parameters": [
                    {
                        "description": "New name",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Household renamed"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "403": {
                        "description": "Not owner or admin"
                    }
                }
            }
        },
        "/household/currency": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Set household currency",
                "parameters": [
                    {
                        "description": "ISO 4217 code",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Currency changed"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "403": {
                        "description": "Not owner or admin"
                    }
                }
            }
        },
        "/household/invites": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Create invite",
                "responses": {
                    "201": {
                        "description": "Invite issued"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/household/join": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Join household",
                "parameters": [
                    {
                        "description": "Invite code",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Joined"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "403": {
                        "description": "Owner cannot leave current household"
                    },
                    "404": {
                        "description": "Unknown or expired code"
                    }
                }
            }
        },
        "/household/leave": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Leave household",
                "parameters": [
                    {
                        "description": "Confirmation token",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Left the household"
                    },
                    "202": {
                        "description": "Confirmation required"
                    },
                    "403": {
                        "description": "Owner cannot leave while others remain"
                    }
                }
            },
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Leave confirmation state",
                "responses": {
                    "200": {
                        "description": "awaiting with seconds left, or expired"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/me": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "household"
                ],
                "summary": "Set display name",
                "parameters": [
                    {
                        "description": "Display name",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "User updated"
                    },
                    "400": {
                        "description": "Invalid input"
                    }
                }
            }
        },
        "/reminders": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reminders"
                ],
                "summary": "Create reminder",
                "parameters": [
                    {
                        "description": "Reminder",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Reminder created"
                    },
                    "400": {
                        "description": "Invalid input"
                    }
                }
            },
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reminders"
                ],
                "summary": "List reminders",
                "responses": {
                    "200": {
                        "description": "Reminders"
                    }
                }
            }
        },
        "/reminders/due": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reminders"
                ],
                "summary": "Due reminders",
                "responses": {
                    "200": {
                        "description": "Due reminders"
                    }
                }
            }
        },
        "/reminders/{id}/paid": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reminders"
                ],
                "summary": "Mark reminder paid",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Reminder ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Paid"
                    },
                    "400": {
                        "description": "Reminder inactive"
                    },
                    "404": {
                        "description": "Reminder not found"
                    }
                }
            }
        },
        "/reports/balance": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Balance",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Lookback window in days (default 30)",
                        "name": "days",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Only this member's transactions",
                        "name": "user_id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Balance"
                    }
                }
            }
        },
        "/reports/export": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Export transactions",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Lookback window in days (default 30)",
                        "name": "days",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Only this member's transactions",
                        "name": "user_id",
                        "in": "query"
                    },
                    {
                        "type": "boolean",
                        "description": "Also store the file in the export bucket",
                        "name": "archive",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "CSV file"
                    },
                    "400": {
                        "description": "Invalid input"
                    }
                }
            }
        },
        "/reports/members": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Expenses by member",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Lookback window in days (default 30)",
                        "name": "days",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Members"
                    }
                }
            }
        },
        "/reports/shops": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Expenses by merchant",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Lookback window in days (default 30)",
                        "name": "days",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Only this member's transactions",
                        "name": "user_id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Shops"
                    }
                }
            }
        },
        "/reports/summary": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Expense summary",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Lookback window in days (default 30)",
                        "name": "days",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Only this member's transactions",
                        "name": "user_id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Summary"
                    },
                    "400": {
                        "description": "Invalid input"
                    }
                }
            }
        },
        "/transactions": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "transactions"
                ],
                "summary": "Create transaction",
                "parameters": [
                    {
                        "description": "Transaction details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Transaction created"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "500": {
                        "description": "Server error"
                    }
                }
            },
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "transactions"
                ],
                "summary": "List transactions",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Page number (default 1)",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Items per page (default 20, max 100)",
                        "name": "page_size",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Start date (RFC3339 or YYYY-MM-DD)",
                        "name": "from_date",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (RFC3339 or YYYY-MM-DD)",
                        "name": "to_date",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "expense or income",
                        "name": "kind",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Category name",
                        "name": "category",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Member user ID",
                        "name": "user_id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Paginated transactions"
                    },
                    "400": {
                        "description": "Invalid input"
                    }
                }
            }
        },
        "/transactions/last": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "transactions"
                ],
                "summary": "Correct last transaction",
                "parameters": [
                    {
                        "description": "New amount and/or description",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transaction updated"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "404": {
                        "description": "No transaction"
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "transactions"
                ],
                "summary": "Undo last transaction",
                "responses": {
                    "200": {
                        "description": "Transaction removed"
                    },
                    "404": {
                        "description": "No transaction"
                    }
                }
            }
        },
        "/transactions/parse": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Let the language model extract amount, currency, category and kind from a message",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "transactions"
                ],
                "summary": "Create transaction from text",
                "parameters": [
                    {
                        "description": "Free text",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Transaction created"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "502": {
                        "description": "Parser failed"
                    }
                }
            }
        },
        "/transactions/{id}/category": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "transactions"
                ],
                "summary": "Reassign transaction category",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Transaction ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Category name",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                                "type": "object"
                            }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transaction updated"
                    },
                    "404": {
                        "description": "Transaction not found"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        },
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kopilka API",
	Description:      "Shared household budget: members, categories, budgets, reminders and reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
