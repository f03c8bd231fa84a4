package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Siswa Web API",
        "description": "Read-only JSON view of the student records",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Siswa", "description": "Student records"}
    ],
    "paths": {
        "/siswa": {
            "get": {
                "tags": ["Siswa"],
                "summary": "List students",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SiswaListEnvelope"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/siswa/{nisn}": {
            "get": {
                "tags": ["Siswa"],
                "summary": "Get student by NISN",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "nisn", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SiswaEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Siswa": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nama": {"type": "string"},
                "nisn": {"type": "string"},
                "nik": {"type": "string"},
                "tingkat": {"type": "string"},
                "rombel": {"type": "string"},
                "tgl_masuk": {"type": "string", "format": "date-time"},
                "terdaftar": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
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
        },
        "SiswaEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Siswa"}
            }
        },
        "SiswaListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Siswa"}},
                "meta": {
                    "type": "object",
                    "properties": {"total": {"type": "integer"}}
                }
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
