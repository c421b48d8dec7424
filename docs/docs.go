// Package docs registers the OpenAPI document served at /swagger/*.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Service banner",
                "responses": {"200": {"description": "Banner"}}
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.CredentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.RegisterResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "User login",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.CredentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MeResponse"}},
                    "401": {"description": "Missing, invalid or expired token", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/token/validate": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Token introspection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TokenValidity"}}
                }
            }
        },
        "/attractions/": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Attractions"],
                "summary": "Add attraction",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.AddAttractionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Already exists", "schema": {"$ref": "#/definitions/models.AddAttractionResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.AddAttractionResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/attractions/{country}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Attractions"],
                "summary": "List attractions by country",
                "parameters": [
                    {"type": "string", "name": "country", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CountryAttractionsResponse"}}
                }
            }
        },
        "/attractions/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Attractions"],
                "summary": "Delete attraction",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DeleteResponse"}},
                    "404": {"description": "Attraction not found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/favorites/": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["Favorites"],
                "summary": "List favorites",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FavoriteView"}}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Favorites"],
                "summary": "Add favorite",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.AddFavoriteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.FavoriteView"}},
                    "404": {"description": "Attraction not found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Already favorited", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/favorites/{attraction_id}": {
            "delete": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["Favorites"],
                "summary": "Remove favorite",
                "parameters": [
                    {"type": "integer", "name": "attraction_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DeleteResponse"}},
                    "404": {"description": "Favorite not found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/images/{query}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Explore"],
                "summary": "Image search",
                "parameters": [
                    {"type": "string", "name": "query", "in": "path", "required": true},
                    {"type": "integer", "default": 4, "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ImagesResponse"}},
                    "400": {"description": "Invalid per_page", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/location/{country}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Explore"],
                "summary": "Country metadata",
                "parameters": [
                    {"type": "string", "name": "country", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CountryInfo"}},
                    "404": {"description": "Country not found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Country service unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/weather/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Explore"],
                "summary": "Current weather",
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "name": "lng", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.WeatherResponse"}},
                    "400": {"description": "Invalid coordinates", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Weather service unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "request_id": {"type": "string"}
                    }
                }
            }
        },
        "models.CredentialsRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "password": {"type": "string", "maxLength": 72}
            }
        },
        "models.RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user_id": {"type": "integer"}
            }
        },
        "models.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_at": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "models.MeResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"}
            }
        },
        "models.TokenValidity": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "reason": {"type": "string"},
                "user_id": {"type": "integer"},
                "valid": {"type": "boolean"}
            }
        },
        "models.AddAttractionRequest": {
            "type": "object",
            "required": ["country", "lat", "lng", "name"],
            "properties": {
                "country": {"type": "string", "maxLength": 100},
                "description": {"type": "string", "maxLength": 2000},
                "image1": {"type": "string"},
                "image2": {"type": "string"},
                "image3": {"type": "string"},
                "image4": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "name": {"type": "string", "maxLength": 200},
                "status": {"type": "string", "maxLength": 32}
            }
        },
        "models.AddAttractionResponse": {
            "type": "object",
            "properties": {
                "created": {"type": "boolean"},
                "id": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "models.AttractionView": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "id": {"type": "integer"},
                "images": {"type": "array", "items": {"type": "string"}},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "name": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "models.CountryAttractionsResponse": {
            "type": "object",
            "properties": {
                "attractions": {"type": "array", "items": {"$ref": "#/definitions/models.AttractionView"}},
                "country": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.DeleteResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "models.AddFavoriteRequest": {
            "type": "object",
            "required": ["attraction_id"],
            "properties": {
                "attraction_id": {"type": "integer"}
            }
        },
        "models.FavoriteView": {
            "type": "object",
            "properties": {
                "attraction_id": {"type": "integer"},
                "country": {"type": "string"},
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "integer"},
                "image": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "models.ImagesResponse": {
            "type": "object",
            "properties": {
                "images": {"type": "array", "items": {"type": "string"}},
                "query": {"type": "string"}
            }
        },
        "models.CountryInfo": {
            "type": "object",
            "properties": {
                "capital": {"type": "string"},
                "currency": {"type": "string"},
                "flag": {"type": "string"},
                "languages": {"type": "array", "items": {"type": "string"}},
                "latlng": {"type": "array", "items": {"type": "number"}},
                "name": {"type": "string"},
                "population": {"type": "integer"},
                "region": {"type": "string"}
            }
        },
        "models.CurrentWeather": {
            "type": "object",
            "properties": {
                "temperature": {"type": "number"},
                "time": {"type": "string"},
                "weathercode": {"type": "integer"},
                "winddirection": {"type": "number"},
                "windspeed": {"type": "number"}
            }
        },
        "models.WeatherResponse": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "weather": {"$ref": "#/definitions/models.CurrentWeather"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Travel Snapshot API",
	Description:      "Travel information backend: accounts, attraction catalog, favorites and destination lookups",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
