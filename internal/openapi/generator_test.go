package openapi

import (
	"encoding/json"
	"testing"
)

func TestGenerate(t *testing.T) {
	doc := Generate("http://localhost:8080")

	if doc.OpenAPI != "3.1.0" {
		t.Errorf("OpenAPI version = %q, want %q", doc.OpenAPI, "3.1.0")
	}
	if doc.Info == nil || doc.Info.Title != "FieldScript API" {
		t.Errorf("unexpected info: %+v", doc.Info)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("unexpected servers: %+v", doc.Servers)
	}

	for _, scheme := range []string{"apiKey", "bearerAuth"} {
		if _, ok := doc.Components.SecuritySchemes[scheme]; !ok {
			t.Errorf("missing security scheme %q", scheme)
		}
	}

	wantPaths := []string{
		"/health",
		"/version",
		"/api/projects/{projectID}/api-keys",
		"/api/projects/{projectID}/api-keys/{keyID}/revoke",
		"/v1/projects/{projectID}/ocr",
		"/v1/projects/{projectID}/jobs/{jobID}",
		"/v1/projects/{projectID}/export",
	}
	for _, p := range wantPaths {
		if doc.Paths.Value(p) == nil {
			t.Errorf("missing path %q", p)
		}
	}

	for _, schema := range []string{"ErrorResponse", "OCRRequest", "JobAccepted", "OCRJob"} {
		if _, ok := doc.Components.Schemas[schema]; !ok {
			t.Errorf("missing component schema %q", schema)
		}
	}
}

func TestGenerate_Serializable(t *testing.T) {
	doc := Generate("http://localhost:8080")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var round map[string]interface{}
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round["openapi"] != "3.1.0" {
		t.Errorf("round-tripped version = %v", round["openapi"])
	}
}

func TestGenerate_SubmitResponses(t *testing.T) {
	doc := Generate("http://localhost:8080")

	item := doc.Paths.Value("/v1/projects/{projectID}/ocr")
	if item == nil || item.Post == nil {
		t.Fatal("missing POST /v1/projects/{projectID}/ocr")
	}
	if item.Post.Responses.Value("202") == nil {
		t.Error("submit operation missing 202 response")
	}
	if item.Post.RequestBody == nil || !item.Post.RequestBody.Value.Required {
		t.Error("submit operation should require a request body")
	}
}
