package model

import "time"

// ErrorResponse is the flat error body returned by every failing endpoint.
// RequestID always matches the X-Request-Id response header.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// APIKeyCreateRequest is the body for creating a project API key.
type APIKeyCreateRequest struct {
	Name string `json:"name,omitempty"`
}

// APIKeyCreateResponse carries the raw secret. This is the only place the
// secret ever appears; it cannot be retrieved again.
type APIKeyCreateResponse struct {
	APIKey    string    `json:"api_key"`
	APIKeyID  string    `json:"api_key_id"`
	KeyPrefix string    `json:"key_prefix"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKeyListResponse wraps the non-secret view of a project's keys.
type APIKeyListResponse struct {
	Items []APIKey `json:"items"`
}

// APIKeyRevokeResponse reports the revocation timestamp. Repeated revocations
// of the same key return the same timestamp.
type APIKeyRevokeResponse struct {
	APIKeyID  string    `json:"api_key_id"`
	RevokedAt time.Time `json:"revoked_at"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Service         string `json:"service"`
	Version         string `json:"version"`
	PromptVersion   string `json:"prompt_version"`
	ExportVersion   string `json:"export_version"`
	TemplateVersion string `json:"template_version"`
}
