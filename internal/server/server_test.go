package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/me/smkplugin/internal/config"
	"github.com/me/smkplugin/internal/language"
	"github.com/me/smkplugin/internal/plugin"
	"github.com/me/smkplugin/internal/reader"
	"github.com/me/smkplugin/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"workflow/Snakefile":     {Data: []byte("include: \"rules/bwa.smk\"\n\nrule all:\n    input: \"mapped/A.bam\"\n")},
		"workflow/rules/bwa.smk": {Data: []byte("rule bwa_map:\n")},
		"broken/Snakefile":       {Data: []byte("include: \"rules/missing.smk\"\n")},
	}
}

func testServerWithReader(fr language.FileReader) *Server {
	logger := testLogger()
	reg := language.NewRegistry(logger)
	plugin.Register(reg, logger)
	return New(config.Default().Server, reg, fr, logger)
}

func testServer() *Server {
	return testServerWithReader(reader.NewFSReader(testFS(), testLogger()))
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Error     *model.APIError `json:"error"`
}

func doGet(t *testing.T, srv *Server, path string) envelope {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s: status=%d, want 200, body=%s", path, w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("GET %s: invalid JSON: %v", path, err)
	}
	return env
}

func doPost(t *testing.T, srv *Server, path, body string, wantStatus int) envelope {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("POST %s: status=%d, want %d, body=%s", path, w.Code, wantStatus, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Errorf("POST %s: missing X-Request-ID header", path)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("POST %s: invalid JSON: %v", path, err)
	}
	return env
}

func TestDiscovery(t *testing.T) {
	srv := testServer()
	env := doGet(t, srv, "/api/v1/")
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if !strings.HasPrefix(env.RequestID, "req_") {
		t.Errorf("request_id = %q, want req_ prefix", env.RequestID)
	}

	var data struct {
		Name      string `json:"name"`
		Endpoints []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Name != "smk-plugin API" {
		t.Errorf("name = %q, want smk-plugin API", data.Name)
	}
	if len(data.Endpoints) != 7 {
		t.Errorf("endpoints count = %d, want 7", len(data.Endpoints))
	}
}

func TestHealth(t *testing.T) {
	srv := testServer()
	env := doGet(t, srv, "/api/v1/health")

	var data struct {
		Status    string   `json:"status"`
		Languages []string `json:"languages"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
	if len(data.Languages) != 1 || data.Languages[0] != "SMK" {
		t.Errorf("languages = %v, want [SMK]", data.Languages)
	}
}

func TestLanguages(t *testing.T) {
	env := doGet(t, testServer(), "/api/v1/languages")
	var langs []string
	json.Unmarshal(env.Data, &langs)
	if len(langs) != 1 || langs[0] != "SMK" {
		t.Errorf("languages = %v, want [SMK]", langs)
	}
}

func TestMatch(t *testing.T) {
	srv := testServer()
	tests := []struct {
		path    string
		matches bool
	}{
		{"/Snakefile", true},
		{"/workflow/Snakefile", true},
		{"/Dockerstore.cwl", false},
		{"/Dockerstore.nf", false},
	}
	for _, tt := range tests {
		body, _ := json.Marshal(model.MatchRequest{Path: tt.path})
		env := doPost(t, srv, "/api/v1/match", string(body), http.StatusOK)
		var res model.MatchResult
		json.Unmarshal(env.Data, &res)
		if res.Matches != tt.matches {
			t.Errorf("match %s = %v, want %v", tt.path, res.Matches, tt.matches)
		}
		if tt.matches && res.Language != model.LanguageSMK {
			t.Errorf("language for %s = %q, want SMK", tt.path, res.Language)
		}
	}
}

func TestMatch_MissingPath(t *testing.T) {
	env := doPost(t, testServer(), "/api/v1/match", `{}`, http.StatusBadRequest)
	if env.Error == nil || env.Error.Code != model.ErrValidation {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestIndex_FetchesRoot(t *testing.T) {
	env := doPost(t, testServer(), "/api/v1/index", `{"initial_path":"/workflow/Snakefile"}`, http.StatusOK)

	var res model.IndexResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Language != model.LanguageSMK {
		t.Errorf("language = %q, want SMK", res.Language)
	}
	if len(res.Files) != 1 {
		t.Fatalf("files = %v, want 1 entry", res.Files.Paths())
	}
	f, ok := res.Files["/workflow/rules/bwa.smk"]
	if !ok {
		t.Fatalf("missing /workflow/rules/bwa.smk in %v", res.Files.Paths())
	}
	if f.Type != model.FileTypeImportedDescriptor || f.Content != "rule bwa_map:\n" {
		t.Errorf("file = %+v", f)
	}
}

func TestIndex_WithContents(t *testing.T) {
	body := `{"initial_path":"/workflow/Snakefile","contents":"rule all:\n"}`
	env := doPost(t, testServer(), "/api/v1/index", body, http.StatusOK)

	var res model.IndexResult
	json.Unmarshal(env.Data, &res)
	if len(res.Files) != 0 {
		t.Errorf("files = %v, want none", res.Files.Paths())
	}
}

func TestIndex_Errors(t *testing.T) {
	srv := testServer()
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   model.ErrorCode
	}{
		{"invalid JSON", "not json", http.StatusBadRequest, model.ErrValidation},
		{"missing initial_path", `{}`, http.StatusBadRequest, model.ErrValidation},
		{"unrecognized descriptor", `{"initial_path":"/Dockstore.cwl"}`, http.StatusBadRequest, model.ErrValidation},
		{"missing root", `{"initial_path":"/nowhere/Snakefile"}`, http.StatusNotFound, model.ErrNotFound},
		{"missing include", `{"initial_path":"/broken/Snakefile"}`, http.StatusNotFound, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := doPost(t, srv, "/api/v1/index", tt.body, tt.wantStatus)
			if env.Status != "error" {
				t.Errorf("status = %q, want error", env.Status)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

// failingReader fails every read with a transport error.
type failingReader struct{}

func (failingReader) ReadFile(context.Context, string) (string, error) {
	return "", errors.New("connection reset by peer")
}

func (failingReader) ListFiles(context.Context, string) ([]string, error) {
	return nil, errors.New("connection reset by peer")
}

func TestIndex_UpstreamError(t *testing.T) {
	srv := testServerWithReader(failingReader{})
	env := doPost(t, srv, "/api/v1/index", `{"initial_path":"/Snakefile"}`, http.StatusBadGateway)
	if env.Error == nil || env.Error.Code != model.ErrUpstream {
		t.Fatalf("error = %+v, want UPSTREAM_ERROR", env.Error)
	}
	if !strings.Contains(env.Error.Message, "connection reset") {
		t.Errorf("message = %q, want reader error", env.Error.Message)
	}
}

func TestMetadata(t *testing.T) {
	srv := testServer()
	env := doPost(t, srv, "/api/v1/metadata", `{"initial_path":"/workflow/Snakefile"}`, http.StatusOK)
	var md model.WorkflowMetadata
	json.Unmarshal(env.Data, &md)
	if md.Description != "SnakeMake workflow description" {
		t.Errorf("description = %q", md.Description)
	}
}

func TestValidate(t *testing.T) {
	env := doPost(t, testServer(), "/api/v1/validate", `{"initial_path":"/workflow/Snakefile"}`, http.StatusOK)
	var res map[string]model.VersionTypeValidation
	json.Unmarshal(env.Data, &res)
	for _, key := range []string{"workflow_set", "test_parameter_set"} {
		v, ok := res[key]
		if !ok {
			t.Fatalf("missing %s in %v", key, res)
		}
		if !v.Valid || len(v.Messages) != 0 {
			t.Errorf("%s = %+v, want valid with no messages", key, v)
		}
	}
}

func TestTools(t *testing.T) {
	env := doPost(t, testServer(), "/api/v1/tools", `{"initial_path":"/workflow/Snakefile"}`, http.StatusOK)
	var rows []map[string]any
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("decode: %v (data=%s)", err, env.Data)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %v, want empty list", rows)
	}
}

func TestUnknownRoute(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/workflows", nil)
	w := httptest.NewRecorder()
	testServer().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestMetadata_EmptyContents(t *testing.T) {
	srv := testServerWithReader(failingReader{})
	env := doPost(t, srv, "/api/v1/metadata", `{"initial_path":"/workflow/Snakefile","contents":""}`, http.StatusOK)
	var md model.WorkflowMetadata
	json.Unmarshal(env.Data, &md)
	if md != (model.WorkflowMetadata{}) {
		t.Errorf("metadata = %+v, want all fields unset for empty contents", md)
	}
}

func TestMetadata_ContentsSent(t *testing.T) {
	srv := testServerWithReader(failingReader{})
	env := doPost(t, srv, "/api/v1/metadata", `{"initial_path":"/workflow/Snakefile","contents":"rule all:\n"}`, http.StatusOK)
	var md model.WorkflowMetadata
	json.Unmarshal(env.Data, &md)
	if md.Description != "SnakeMake workflow description" {
		t.Errorf("description = %q", md.Description)
	}
}

func TestRequestLog_IncludesDescriptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	reg := language.NewRegistry(logger)
	plugin.Register(reg, logger)
	srv := New(config.Default().Server, reg, reader.NewFSReader(testFS(), logger), logger)

	doPost(t, srv, "/api/v1/index", `{"initial_path":"/workflow/Snakefile"}`, http.StatusOK)

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "msg=request") {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("no request log line in %q", buf.String())
	}
	for _, want := range []string{"status=200", "initial_path=/workflow/Snakefile", "language=SMK", "request_id=req_"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestRecoverMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := requestIDMiddleware(loggingMiddleware(logger)(recoverMiddleware(logger)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
	)))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if env.Error == nil || env.Error.Code != model.ErrInternal {
		t.Errorf("error = %+v, want INTERNAL_ERROR", env.Error)
	}
	if !strings.Contains(buf.String(), "handler panic") || !strings.Contains(buf.String(), "status=500") {
		t.Errorf("log = %q, want panic and status=500", buf.String())
	}
}

func TestAddr(t *testing.T) {
	logger := testLogger()
	srv := New(config.ServerConfig{Addr: "127.0.0.1:9999"}, language.NewRegistry(logger), failingReader{}, logger)
	if got := srv.Addr(); got != "127.0.0.1:9999" {
		t.Errorf("Addr() = %q", got)
	}
}
