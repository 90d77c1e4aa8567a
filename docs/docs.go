// Package docs holds the OpenAPI description served at /docs.
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
        "/healthz": {
            "get": {"tags": ["ops"], "summary": "Liveness and dependency check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/register": {
            "post": {"tags": ["auth"], "summary": "Register a local account",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registerReq"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authResp"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResp"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResp"}}}}
        },
        "/login": {
            "post": {"tags": ["auth"], "summary": "Log in with email and password",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/loginReq"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResp"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResp"}}}}
        },
        "/login/google": {
            "post": {"tags": ["auth"], "summary": "Log in with a Google identity",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/googleLoginReq"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResp"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResp"}}}}
        },
        "/login/google/start": {
            "get": {"tags": ["auth"], "summary": "Start the Google authorization code flow",
                "responses": {"302": {"description": "Found"}}}
        },
        "/login/google/callback": {
            "get": {"tags": ["auth"], "summary": "Complete the Google authorization code flow", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "state", "in": "query", "required": true},
                    {"type": "string", "name": "code", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResp"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResp"}}}}
        },
        "/refresh": {
            "post": {"tags": ["auth"], "summary": "Mint a new access token from the refresh cookie", "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/refreshResp"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResp"}}}}
        },
        "/logout": {
            "post": {"tags": ["auth"], "summary": "Clear session cookies", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResp"}}}}
        },
        "/profiles/{userId}": {
            "get": {"tags": ["profiles"], "summary": "List a user's profiles", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Profile"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResp"}}}},
            "post": {"tags": ["profiles"], "summary": "Create a profile with an empty list",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/createProfileReq"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Profile"}},
                    "409": {"description": "profile limit reached", "schema": {"$ref": "#/definitions/errorResp"}}}},
            "patch": {"tags": ["profiles"], "summary": "Add an item to a profile's list, or remove it if already present",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/toggleReq"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/toggleResp"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResp"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResp"}}}}
        },
        "/profiles/{userId}/{profileId}": {
            "get": {"tags": ["profiles"], "summary": "Get one profile", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "profileId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Profile"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResp"}}}},
            "delete": {"tags": ["profiles"], "summary": "Delete a profile", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "profileId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResp"}}}}
        }
    },
    "definitions": {
        "errorResp": {"type": "object", "properties": {"error": {"type": "string"}, "message": {"type": "string"}}},
        "messageResp": {"type": "object", "properties": {"message": {"type": "string"}}},
        "refreshResp": {"type": "object", "properties": {"access": {"type": "string"}}},
        "loginReq": {"type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "registerReq": {"type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 8},
                "firstName": {"type": "string"}, "lastName": {"type": "string"}, "avatar": {"type": "string"}}},
        "googleLoginReq": {"type": "object",
            "properties": {"credential": {"type": "string"}, "email": {"type": "string"},
                "firstName": {"type": "string"}, "lastName": {"type": "string"}, "avatar": {"type": "string"}}},
        "createProfileReq": {"type": "object",
            "properties": {"name": {"type": "string"}, "avatar": {"type": "string"}}},
        "toggleReq": {"type": "object",
            "properties": {"profileId": {"type": "string"},
                "category": {"type": "string", "enum": ["movies", "series", "games"]},
                "item": {"type": "object", "additionalProperties": true}}},
        "toggleResp": {"type": "object",
            "properties": {"message": {"type": "string"}, "added": {"type": "boolean"}, "profile": {"$ref": "#/definitions/domain.Profile"}}},
        "authResp": {"type": "object",
            "properties": {"message": {"type": "string"}, "access": {"type": "string"}, "user": {"$ref": "#/definitions/domain.User"}}},
        "domain.MyList": {"type": "object",
            "properties": {
                "movies": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                "series": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                "games": {"type": "array", "items": {"type": "object", "additionalProperties": true}}}},
        "domain.Profile": {"type": "object",
            "properties": {"_id": {"type": "string"}, "name": {"type": "string"}, "avatar": {"type": "string"},
                "myList": {"$ref": "#/definitions/domain.MyList"}}},
        "domain.User": {"type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "firstName": {"type": "string"},
                "lastName": {"type": "string"}, "avatar": {"type": "string"}, "role": {"type": "string"},
                "provider": {"type": "string"}, "created_at": {"type": "string"},
                "profiles": {"type": "array", "items": {"$ref": "#/definitions/domain.Profile"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "mylist-service API",
	Description:      "Accounts, sessions, viewing profiles and per-profile watch lists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
