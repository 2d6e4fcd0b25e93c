package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	GoVersion string   `json:"go_version"`
	Uptime    string   `json:"uptime"`
	Languages []string `json:"languages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	langs := []string{}
	for _, l := range s.registry.Languages() {
		langs = append(langs, l.String())
	}
	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   "0.1.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Languages: langs,
	})
}
