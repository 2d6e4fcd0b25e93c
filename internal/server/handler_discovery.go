package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "smk-plugin API",
		Version:     "v1",
		Description: "Descriptor language plugin for Snakemake workflows",
		Endpoints: []endpointInfo{
			{"/api/v1/languages", []string{"GET"}, "Registered descriptor languages"},
			{"/api/v1/match", []string{"POST"}, "Check whether a path is a primary descriptor"},
			{"/api/v1/index", []string{"POST"}, "Index the files a primary descriptor includes"},
			{"/api/v1/metadata", []string{"POST"}, "Workflow metadata for a primary descriptor"},
			{"/api/v1/validate", []string{"POST"}, "Validate a primary descriptor and its indexed files"},
			{"/api/v1/tools", []string{"POST"}, "Tools table for a primary descriptor"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
