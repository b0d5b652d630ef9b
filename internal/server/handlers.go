package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/nocgen/pkg/buildinfo"
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/errors"
	"github.com/matzehuels/nocgen/pkg/network"
	"github.com/matzehuels/nocgen/pkg/render"
	"github.com/matzehuels/nocgen/pkg/render/nodelink"
)

// Response headers.
const (
	RunIDHeader = "X-Run-ID"
	CacheHeader = "X-Cache"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type summaryResponse struct {
	RunID      string          `json:"run_id"`
	Summary    network.Summary `json:"summary"`
	CacheHit   bool            `json:"cache_hit"`
	DurationMS float64         `json:"duration_ms"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decodeConfig(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Generate(r.Context(), cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(RunIDHeader, res.RunID)
	w.Header().Set(CacheHeader, cacheStatus(res.CacheHit))
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(res.XML)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.XML)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decodeConfig(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Generate(r.Context(), cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(RunIDHeader, res.RunID)
	w.Header().Set(CacheHeader, cacheStatus(res.CacheHit))
	writeJSON(w, http.StatusOK, summaryResponse{
		RunID:      res.RunID,
		Summary:    res.Summary,
		CacheHit:   res.CacheHit,
		DurationMS: float64(res.Stats.Duration.Microseconds()) / 1000,
	})
}

var contentTypes = map[string]string{
	render.FormatSVG: "image/svg+xml",
	render.FormatPNG: "image/png",
	render.FormatPDF: "application/pdf",
	render.FormatDOT: "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	if err := render.ValidateFormat(format); err != nil {
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidFormat), err.Error())
		return
	}
	opts := nodelink.Options{
		HidePE:   q.Get("pe") == "false",
		Detailed: q.Get("detailed") == "true",
	}

	cfg, ok := s.decodeConfig(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Render(r.Context(), cfg, []string{format}, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data := res.Artifacts[format]
	w.Header().Set(CacheHeader, cacheStatus(res.CacheHit))
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleSimConfig(w http.ResponseWriter, r *http.Request) {
	var sim config.Simulation
	if !s.decode(w, r, &sim) {
		return
	}
	data, err := s.runner.SimConfig(r.Context(), sim)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// decodeConfig reads a network config body. The topology name is
// matched case-insensitively.
func (s *Server) decodeConfig(w http.ResponseWriter, r *http.Request) (config.Config, bool) {
	var cfg config.Config
	if !s.decode(w, r, &cfg) {
		return cfg, false
	}
	kind, err := config.ParseKind(string(cfg.Topology))
	if err != nil {
		s.fail(w, r, err)
		return cfg, false
	}
	cfg.Topology = kind
	return cfg, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
				fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes))
			return false
		}
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidFormat), "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// fail writes err with the status its code maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", requestID(r.Context()), "err", err)
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func statusFor(err error) int {
	code := errors.GetCode(err)
	switch {
	case code == errors.ErrCodeTopologyConstraint,
		code == errors.ErrCodeUnsupported,
		strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
