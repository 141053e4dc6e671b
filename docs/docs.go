// Package docs holds the generated OpenAPI description of the FlowBoard API.
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
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Liveness",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness of the backing stores",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Not ready"
                    }
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Register",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ports.AuthResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid form",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    },
                    "401": {
                        "description": "Rejected by the identity provider",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    },
                    "409": {
                        "description": "Email already registered",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.RegisterRequest"
                        }
                    }
                ]
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Login",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.AuthResponse"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.LoginRequest"
                        }
                    }
                ]
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Logout",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/auth/me": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Current user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/entities.User"
                        }
                    },
                    "401": {
                        "description": "Not authenticated",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/board": {
            "get": {
                "tags": [
                    "Board"
                ],
                "summary": "Get board",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.BoardView"
                        }
                    },
                    "400": {
                        "description": "Invalid filter",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "priority",
                        "type": "string",
                        "enum": [
                            "all",
                            "high",
                            "medium",
                            "low"
                        ]
                    },
                    {
                        "in": "query",
                        "name": "reload",
                        "type": "boolean"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/tasks": {
            "post": {
                "tags": [
                    "Board"
                ],
                "summary": "Create task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/entities.Task"
                        }
                    },
                    "403": {
                        "description": "Guests cannot create tasks",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    },
                    "502": {
                        "description": "Task store failure",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.CreateTaskRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/tasks/{id}": {
            "get": {
                "tags": [
                    "Board"
                ],
                "summary": "Get task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.TaskView"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "Board"
                ],
                "summary": "Edit task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Saved, or kept on the board with a warning",
                        "schema": {
                            "$ref": "#/definitions/ports.MutationResponse"
                        }
                    },
                    "403": {
                        "description": "Not the owner",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.EditTaskRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Board"
                ],
                "summary": "Delete task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "403": {
                        "description": "Not the owner",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    },
                    "502": {
                        "description": "Task store failure",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/tasks/{id}/status": {
            "patch": {
                "tags": [
                    "Board"
                ],
                "summary": "Change task status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ports.MutationResponse"
                        }
                    },
                    "403": {
                        "description": "Not the owner",
                        "schema": {
                            "$ref": "#/definitions/ports.MessageResponse"
                        }
                    },
                    "502": {
                        "description": "Reverted",
                        "schema": {
                            "$ref": "#/definitions/ports.MutationResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.StatusChangeRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "entities.Task": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "todo",
                        "inprogress",
                        "done"
                    ]
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "low",
                        "medium",
                        "high"
                    ]
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "task",
                        "bug",
                        "story",
                        "design"
                    ]
                },
                "points": {
                    "type": "integer"
                },
                "assignee": {
                    "type": "string"
                },
                "reporter": {
                    "type": "string"
                },
                "impact": {
                    "type": "string",
                    "enum": [
                        "high",
                        "medium",
                        "low"
                    ]
                },
                "urgency": {
                    "type": "string",
                    "enum": [
                        "high",
                        "medium",
                        "low"
                    ]
                },
                "priorityLevel": {
                    "type": "string",
                    "enum": [
                        "P0",
                        "P1",
                        "P2",
                        "P3"
                    ]
                },
                "cardLevel": {
                    "type": "string",
                    "enum": [
                        "epic",
                        "task",
                        "bug",
                        "story",
                        "risk",
                        "subtask"
                    ]
                },
                "plannedStartDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "plannedEndDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "actualStartDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "actualEndDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "plannedEstimatedHours": {
                    "type": "number"
                },
                "actualEstimatedHours": {
                    "type": "number"
                },
                "labels": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "sprintId": {
                    "type": "integer"
                },
                "dependencies": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "ownerId": {
                    "type": "integer"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "entities.User": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "role": {
                    "type": "string",
                    "enum": [
                        "member",
                        "guest"
                    ]
                }
            }
        },
        "entities.Viewer": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "role": {
                    "type": "string"
                }
            }
        },
        "ports.RegisterRequest": {
            "type": "object",
            "required": [
                "email",
                "name",
                "password",
                "confirmPassword"
            ],
            "properties": {
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "password": {
                    "type": "string",
                    "minLength": 6
                },
                "confirmPassword": {
                    "type": "string"
                }
            }
        },
        "ports.LoginRequest": {
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "ports.AuthResponse": {
            "type": "object",
            "properties": {
                "user": {
                    "$ref": "#/definitions/entities.User"
                },
                "token": {
                    "type": "string"
                }
            }
        },
        "ports.CreateTaskRequest": {
            "type": "object",
            "required": [
                "title",
                "description",
                "assignee"
            ],
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "todo",
                        "inprogress",
                        "done"
                    ]
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "low",
                        "medium",
                        "high"
                    ]
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "task",
                        "bug",
                        "story",
                        "design"
                    ]
                },
                "points": {
                    "type": "integer"
                },
                "assignee": {
                    "type": "string"
                },
                "reporter": {
                    "type": "string"
                },
                "impact": {
                    "type": "string",
                    "enum": [
                        "high",
                        "medium",
                        "low"
                    ]
                },
                "urgency": {
                    "type": "string",
                    "enum": [
                        "high",
                        "medium",
                        "low"
                    ]
                },
                "priorityLevel": {
                    "type": "string",
                    "enum": [
                        "P0",
                        "P1",
                        "P2",
                        "P3"
                    ]
                },
                "cardLevel": {
                    "type": "string",
                    "enum": [
                        "epic",
                        "task",
                        "bug",
                        "story",
                        "risk",
                        "subtask"
                    ]
                },
                "plannedStartDate": {
                    "type": "string"
                },
                "plannedEndDate": {
                    "type": "string"
                },
                "actualStartDate": {
                    "type": "string"
                },
                "actualEndDate": {
                    "type": "string"
                },
                "plannedEstimatedHours": {
                    "type": "number"
                },
                "actualEstimatedHours": {
                    "type": "number"
                },
                "labels": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "sprintId": {
                    "type": "integer"
                },
                "dependencies": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "ports.EditTaskRequest": {
            "type": "object",
            "required": [
                "title",
                "description",
                "status",
                "priority",
                "type",
                "assignee"
            ],
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "todo",
                        "inprogress",
                        "done"
                    ]
                },
                "priority": {
                    "type": "string",
                    "enum": [
                        "low",
                        "medium",
                        "high"
                    ]
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "task",
                        "bug",
                        "story",
                        "design"
                    ]
                },
                "points": {
                    "type": "integer"
                },
                "assignee": {
                    "type": "string"
                },
                "reporter": {
                    "type": "string"
                },
                "impact": {
                    "type": "string",
                    "enum": [
                        "high",
                        "medium",
                        "low"
                    ]
                },
                "urgency": {
                    "type": "string",
                    "enum": [
                        "high",
                        "medium",
                        "low"
                    ]
                },
                "priorityLevel": {
                    "type": "string",
                    "enum": [
                        "P0",
                        "P1",
                        "P2",
                        "P3"
                    ]
                },
                "cardLevel": {
                    "type": "string",
                    "enum": [
                        "epic",
                        "task",
                        "bug",
                        "story",
                        "risk",
                        "subtask"
                    ]
                },
                "plannedStartDate": {
                    "type": "string"
                },
                "plannedEndDate": {
                    "type": "string"
                },
                "actualStartDate": {
                    "type": "string"
                },
                "actualEndDate": {
                    "type": "string"
                },
                "plannedEstimatedHours": {
                    "type": "number"
                },
                "actualEstimatedHours": {
                    "type": "number"
                },
                "labels": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "sprintId": {
                    "type": "integer"
                },
                "dependencies": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "ports.StatusChangeRequest": {
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "todo",
                        "inprogress",
                        "done"
                    ]
                }
            }
        },
        "ports.TaskView": {
            "allOf": [
                {
                    "$ref": "#/definitions/entities.Task"
                },
                {
                    "type": "object",
                    "properties": {
                        "access": {
                            "type": "string",
                            "enum": [
                                "editor",
                                "viewer"
                            ]
                        }
                    }
                }
            ]
        },
        "ports.LaneView": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "count": {
                    "type": "integer"
                },
                "tasks": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/ports.TaskView"
                    }
                }
            }
        },
        "ports.BoardView": {
            "type": "object",
            "properties": {
                "viewer": {
                    "$ref": "#/definitions/entities.Viewer"
                },
                "canCreate": {
                    "type": "boolean"
                },
                "filter": {
                    "type": "string"
                },
                "fallback": {
                    "type": "boolean"
                },
                "lanes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/ports.LaneView"
                    }
                }
            }
        },
        "ports.MutationResponse": {
            "type": "object",
            "properties": {
                "task": {
                    "$ref": "#/definitions/ports.TaskView"
                },
                "warning": {
                    "type": "string"
                }
            }
        },
        "ports.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and the session token. Browsers send the authToken cookie instead."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "FlowBoard API",
	Description:      "Kanban task board with owner-gated editing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
