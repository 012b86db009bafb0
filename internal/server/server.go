package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"plagiarism_detection/internal/detect"
	"plagiarism_detection/internal/ingest"
	"plagiarism_detection/internal/workspace"
)

const defaultMaxUpload = 32 << 20

// Server exposes the detection engine over HTTP.
type Server struct {
	Engine   *detect.Engine
	Defaults detect.Options
	Logger   *zap.Logger

	// MaxUpload bounds the multipart body in bytes.
	MaxUpload int64

	// Workspace, when set, receives a copy of every upload and its report.
	Workspace string
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/check", s.CheckHandler).Methods(http.MethodPost)
	router.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)
	return router
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CheckHandler accepts a multipart "file" field plus optional "threshold"
// and "closeness" values and answers with the report.
func (s *Server) CheckHandler(w http.ResponseWriter, r *http.Request) {
	limit := s.MaxUpload
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	opts, err := s.options(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	parsed, err := ingest.Parse(header.Filename, raw)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ingest.ErrUnsupported) {
			status = http.StatusUnsupportedMediaType
		}
		httpError(w, status, fmt.Errorf("parse %s: %w", header.Filename, err))
		return
	}

	res, err := s.Engine.Check(r.Context(), parsed.Document(), opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, detect.ErrNoSources) {
			status = http.StatusUnprocessableEntity
		}
		s.logger().Error("check failed", zap.String("file", header.Filename), zap.Error(err))
		httpError(w, status, err)
		return
	}

	if s.Workspace != "" {
		run, err := workspace.CreateRun(s.Workspace, header.Filename, res.Stats.RunID, raw)
		if err == nil {
			err = workspace.SaveReport(run.ReportPath, res.Report)
		}
		if err != nil {
			s.logger().Warn("could not save run", zap.String("run_id", res.Stats.RunID), zap.Error(err))
		}
	}

	body, err := res.Report.Marshal()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-Id", res.Stats.RunID)
	w.Header().Set("X-Web-Skipped", strconv.Itoa(res.Stats.WebSkipped))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) options(r *http.Request) (detect.Options, error) {
	opts := s.Defaults
	if v := r.FormValue("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid threshold %q", v)
		}
		opts.Threshold = f
	}
	if v := r.FormValue("closeness"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid closeness %q", v)
		}
		opts.Closeness = n
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
