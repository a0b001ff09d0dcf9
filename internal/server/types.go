// Package server exposes the method-call bridge over HTTP.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "time"

// InvokeResponse is the HTTP response of a successful method call.
type InvokeResponse struct {
	// Result is the value the command answered with.
	Result any `json:"result"`
}

// MethodsResponse lists the methods that can be invoked.
type MethodsResponse struct {
	Methods []string `json:"methods"`
}

// OperationResponse describes one in-flight operation.
type OperationResponse struct {
	ID        string    `json:"id"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	// ElapsedMs is the time the operation has been running.
	ElapsedMs int64 `json:"elapsed_ms"`
}

// OperationsResponse lists the in-flight operations, oldest first.
type OperationsResponse struct {
	Operations []OperationResponse `json:"operations"`
}

// FileResponse is returned after uploading a file.
type FileResponse struct {
	// Name is the file name inside the output directory, usable with
	// GET and DELETE /v1/files/{name}.
	Name string `json:"name"`
	// Path is the absolute path to pass as a method argument.
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// uploadRequest holds the query parameters of a file upload.
type uploadRequest struct {
	Name string `validate:"required,max=255,excludesall=/\\"`
}

// invokeRequest holds the path parameters of a method call.
type invokeRequest struct {
	Method string `validate:"required,alphanum,max=64"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
	// Details carries optional structured data from the command.
	Details any `json:"details,omitempty"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
	// Operations is the number of in-flight operations.
	Operations int `json:"operations"`
}
