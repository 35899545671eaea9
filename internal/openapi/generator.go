// Package openapi generates the OpenAPI 3.1 document served at /openapi.json.
// The surface is fixed, so the document is built once at startup rather than
// derived from reflection.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/fieldscript/fieldscript/internal/version"
)

// Generate builds the OpenAPI spec for the FieldScript intake API.
func Generate(baseURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "FieldScript API",
			Description: "Asynchronous OCR intake service with per-project API keys.",
			Version:     version.Version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["apiKey"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "header",
			Name: "X-API-Key",
		},
	}
	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:   "http",
			Scheme: "bearer",
		},
	}

	doc.Paths = openapi3.NewPaths()

	registerSchemas(doc)
	addSystemPaths(doc)
	addKeyPaths(doc)
	addOCRPaths(doc)

	return doc
}

func registerSchemas(doc *openapi3.T) {
	doc.Components.Schemas["ErrorResponse"] = objectSchema(openapi3.Schemas{
		"error_code": stringProp("Stable machine-readable error code."),
		"message":    stringProp("Human-readable description."),
		"request_id": stringProp("Request id, also echoed in the X-Request-Id header."),
	}, "error_code", "message", "request_id")

	doc.Components.Schemas["OCRRequest"] = objectSchema(openapi3.Schemas{
		"images": {
			Value: &openapi3.Schema{
				Type:        &openapi3.Types{"array"},
				Description: "Base64-encoded images, optionally with a data: URL prefix. 1 to 10 items.",
				Items:       &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
			},
		},
		"document_type": stringProp("Optional document type hint."),
		"metadata": {
			Value: &openapi3.Schema{
				Type:        &openapi3.Types{"object"},
				Description: "Caller-defined metadata. Excluded from the request fingerprint.",
			},
		},
	}, "images")

	doc.Components.Schemas["JobAccepted"] = objectSchema(openapi3.Schemas{
		"job_id":     stringProp("Identifier for polling the job."),
		"status":     stringProp("Always \"pending\" on acceptance."),
		"request_id": stringProp(""),
	}, "job_id", "status", "request_id")

	doc.Components.Schemas["OCRJob"] = objectSchema(openapi3.Schemas{
		"job_id":     stringProp(""),
		"project_id": stringProp(""),
		"status":     stringProp("One of pending, processing, completed, failed."),
		"result":     stringProp("OCR text, present once completed."),
		"error":      stringProp("Failure detail, present once failed."),
		"request_id": stringProp("Request id of the originating submission."),
	}, "job_id", "project_id", "status")

	doc.Components.Schemas["APIKeyCreateResponse"] = objectSchema(openapi3.Schemas{
		"api_key":    stringProp("The raw secret. Shown exactly once."),
		"api_key_id": stringProp(""),
		"key_prefix": stringProp("First characters of the secret, safe to display."),
		"name":       stringProp(""),
		"created_at": stringProp(""),
	}, "api_key", "api_key_id", "key_prefix", "created_at")

	doc.Components.Schemas["VersionResponse"] = objectSchema(openapi3.Schemas{
		"service":          stringProp(""),
		"version":          stringProp(""),
		"prompt_version":   stringProp(""),
		"export_version":   stringProp(""),
		"template_version": stringProp(""),
	}, "service", "version")
}

func addSystemPaths(doc *openapi3.T) {
	doc.Paths.Set("/health", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"system"},
			Summary:     "Liveness probe",
			OperationID: "get_health",
			Responses: newResponses("200", "Service is running", objectSchema(openapi3.Schemas{
				"status": stringProp(""),
			}, "status")),
		},
	})

	doc.Paths.Set("/version", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"system"},
			Summary:     "Service and pipeline versions",
			OperationID: "get_version",
			Responses:   newResponses("200", "Version information", schemaRef("VersionResponse")),
		},
	})
}

func addKeyPaths(doc *openapi3.T) {
	secured := openapi3.SecurityRequirements{
		{"apiKey": {}},
		{"bearerAuth": {}},
	}

	doc.Paths.Set("/api/projects/{projectID}/api-keys", &openapi3.PathItem{
		Parameters: pathParams("projectID"),
		Post: &openapi3.Operation{
			Tags:        []string{"api-keys"},
			Summary:     "Create an API key",
			Description: "Creates a key for the project. The raw secret appears only in this response.",
			OperationID: "create_api_key",
			Security:    &secured,
			RequestBody: jsonRequestBody("Optional key label", false, objectSchema(openapi3.Schemas{
				"name": stringProp("Display name for the key."),
			})),
			Responses: newResponses("200", "Key created", schemaRef("APIKeyCreateResponse")),
		},
		Get: &openapi3.Operation{
			Tags:        []string{"api-keys"},
			Summary:     "List API keys",
			Description: "Lists the project's keys. Hashes and secrets are never included.",
			OperationID: "list_api_keys",
			Security:    &secured,
			Responses: newResponses("200", "Keys for the project", objectSchema(openapi3.Schemas{
				"items": {
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
					},
				},
			}, "items")),
		},
	})

	doc.Paths.Set("/api/projects/{projectID}/api-keys/{keyID}/revoke", &openapi3.PathItem{
		Parameters: pathParams("projectID", "keyID"),
		Post: &openapi3.Operation{
			Tags:        []string{"api-keys"},
			Summary:     "Revoke an API key",
			Description: "Revokes the key. Idempotent: repeated calls return the original revocation time. A revoked key may still authenticate this endpoint.",
			OperationID: "revoke_api_key",
			Security:    &secured,
			Responses: newResponses("200", "Key revoked", objectSchema(openapi3.Schemas{
				"api_key_id": stringProp(""),
				"revoked_at": stringProp(""),
			}, "api_key_id", "revoked_at")),
		},
	})
}

func addOCRPaths(doc *openapi3.T) {
	doc.Paths.Set("/v1/projects/{projectID}/ocr", &openapi3.PathItem{
		Parameters: pathParams("projectID"),
		Post: &openapi3.Operation{
			Tags:        []string{"ocr"},
			Summary:     "Submit an OCR job",
			Description: "Queues OCR for up to 10 base64 images and returns 202 with a job id. Oversized payloads are rejected with 413 before any job is created.",
			OperationID: "submit_ocr",
			RequestBody: jsonRequestBody("Images to process", true, schemaRef("OCRRequest")),
			Responses:   newResponses("202", "Job accepted", schemaRef("JobAccepted")),
		},
	})

	doc.Paths.Set("/v1/projects/{projectID}/jobs/{jobID}", &openapi3.PathItem{
		Parameters: pathParams("projectID", "jobID"),
		Get: &openapi3.Operation{
			Tags:        []string{"ocr"},
			Summary:     "Poll a job",
			Description: "Returns the job's status and, once terminal, its result or error. Jobs from other projects are reported as not found.",
			OperationID: "get_job",
			Responses:   newResponses("200", "Job state", schemaRef("OCRJob")),
		},
	})

	doc.Paths.Set("/v1/projects/{projectID}/export", &openapi3.PathItem{
		Parameters: pathParams("projectID"),
		Post: &openapi3.Operation{
			Tags:        []string{"ocr"},
			Summary:     "Export results",
			Description: "Placeholder pending the export pipeline.",
			OperationID: "export",
			Responses: newResponses("200", "Export placeholder", objectSchema(openapi3.Schemas{
				"result":     stringProp(""),
				"request_id": stringProp(""),
			}, "result", "request_id")),
		},
	})
}

// ─── Schema Helpers ─────────────────────────────────────────────────────────

func stringProp(description string) *openapi3.SchemaRef {
	s := openapi3.NewStringSchema()
	s.Description = description
	return &openapi3.SchemaRef{Value: s}
}

func objectSchema(props openapi3.Schemas, required ...string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
			Required:   required,
		},
	}
}

func schemaRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func pathParams(names ...string) openapi3.Parameters {
	params := openapi3.Parameters{}
	for _, name := range names {
		p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())
		params = append(params, &openapi3.ParameterRef{Value: p})
	}
	return params
}

func jsonRequestBody(description string, required bool, schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    required,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// newResponses builds a Responses map with a success response and the shared
// error responses every endpoint can produce.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := schemaRef("ErrorResponse")
	for code, desc := range map[string]string{
		"400": "Bad request",
		"401": "Unauthorized",
		"404": "Not found",
		"429": "Rate limit exceeded",
		"500": "Internal server error",
	} {
		d := desc
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &d,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}

	return responses
}
