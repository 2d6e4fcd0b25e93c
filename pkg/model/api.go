package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Error     *APIError `json:"error"`
}

// DescriptorRequest is the body shared by the descriptor operations of the
// HTTP adapter. Contents is optional; when absent the root descriptor is
// fetched with the configured reader. An empty string is used as is.
type DescriptorRequest struct {
	InitialPath string  `json:"initial_path"`
	Contents    *string `json:"contents,omitempty"`
}

// MatchRequest asks whether a path is a known primary descriptor.
type MatchRequest struct {
	Path string `json:"path"`
}

// MatchResult reports which language, if any, claims a path.
type MatchResult struct {
	Path     string             `json:"path" yaml:"path"`
	Matches  bool               `json:"matches" yaml:"matches"`
	Language DescriptorLanguage `json:"language,omitempty" yaml:"language,omitempty"`
}

// IndexResult is the response of the index operation.
type IndexResult struct {
	InitialPath string             `json:"initial_path" yaml:"initial_path"`
	Language    DescriptorLanguage `json:"language" yaml:"language"`
	Files       IndexedFiles       `json:"files" yaml:"files"`
}
