package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/me/smkplugin/internal/language"
	"github.com/me/smkplugin/internal/reader"
	"github.com/me/smkplugin/pkg/model"
)

// descriptorCall is a resolved descriptor request: the plugin that claims
// the initial path, the root contents and the indexed files.
type descriptorCall struct {
	plugin      language.Interface
	initialPath string
	contents    string
	files       model.IndexedFiles
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), s.registry.Languages())
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if req.Path == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("Invalid request",
			model.FieldError{Field: "path", Message: "required"}))
		return
	}

	result := model.MatchResult{Path: req.Path}
	if p, ok := s.registry.ForPath(req.Path); ok {
		result.Matches = true
		result.Language = p.DescriptorLanguage()
	}
	respondOK(w, reqID, result)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	call, ok := s.prepare(w, r)
	if !ok {
		return
	}
	respondOK(w, RequestIDFromContext(r.Context()), model.IndexResult{
		InitialPath: call.initialPath,
		Language:    call.plugin.DescriptorLanguage(),
		Files:       call.files,
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	call, ok := s.prepare(w, r)
	if !ok {
		return
	}
	respondOK(w, RequestIDFromContext(r.Context()),
		call.plugin.ParseWorkflowForMetadata(call.initialPath, call.contents, call.files))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	call, ok := s.prepare(w, r)
	if !ok {
		return
	}
	respondOK(w, RequestIDFromContext(r.Context()), map[string]model.VersionTypeValidation{
		"workflow_set":       call.plugin.ValidateWorkflowSet(call.initialPath, call.contents, call.files),
		"test_parameter_set": call.plugin.ValidateTestParameterSet(call.files.OfType(model.FileTypeTestParameterFile)),
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	call, ok := s.prepare(w, r)
	if !ok {
		return
	}
	respondOK(w, RequestIDFromContext(r.Context()),
		call.plugin.GenerateToolsTable(call.initialPath, call.contents, call.files))
}

// prepare decodes a DescriptorRequest, finds the plugin for its path,
// fetches the root when the request has no contents field and indexes the
// workflow.
// On failure it writes the error response and returns false.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request) (*descriptorCall, bool) {
	reqID := RequestIDFromContext(r.Context())

	var req model.DescriptorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return nil, false
	}
	if req.InitialPath == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("Invalid request",
			model.FieldError{Field: "initial_path", Message: "required"}))
		return nil, false
	}

	p, ok := s.registry.ForPath(req.InitialPath)
	if !ok {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("Unrecognized descriptor",
			model.FieldError{Field: "initial_path", Path: req.InitialPath, Message: "no language plugin recognizes this path"}))
		return nil, false
	}

	noteDescriptor(r.Context(), req.InitialPath, p.DescriptorLanguage())

	var contents string
	if req.Contents != nil {
		contents = *req.Contents
	} else {
		var err error
		contents, err = s.reader.ReadFile(r.Context(), req.InitialPath)
		if err != nil {
			s.respondReaderError(r.Context(), w, req.InitialPath, err)
			return nil, false
		}
	}

	files, err := p.IndexWorkflowFiles(r.Context(), req.InitialPath, contents, s.reader)
	if err != nil {
		s.respondReaderError(r.Context(), w, req.InitialPath, err)
		return nil, false
	}

	return &descriptorCall{plugin: p, initialPath: req.InitialPath, contents: contents, files: files}, true
}

// respondReaderError maps a FileReader failure to an API error.
func (s *Server) respondReaderError(ctx context.Context, w http.ResponseWriter, path string, err error) {
	reqID := RequestIDFromContext(ctx)
	if errors.Is(err, reader.ErrNotFound) {
		respondError(w, reqID, http.StatusNotFound, &model.APIError{
			Code:    model.ErrNotFound,
			Message: err.Error(),
		})
		return
	}
	s.logger.Error("descriptor fetch failed", "initial_path", path, "error", err, "request_id", reqID)
	respondError(w, reqID, http.StatusBadGateway, &model.APIError{
		Code:    model.ErrUpstream,
		Message: err.Error(),
	})
}
