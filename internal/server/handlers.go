package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/terrain/pkg/buildinfo"
	"github.com/matzehuels/terrain/pkg/errors"
	"github.com/matzehuels/terrain/pkg/pipeline"
)

// contentTypes maps export formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatTIFF: "image/tiff",
	pipeline.FormatJSON: "application/json",
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestIDFromContext(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Code:      errors.ErrCodeUnsupported,
		Message:   fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// handleHeightfield generates a grid and returns it in the format named by
// the path extension.
func (s *Server) handleHeightfield(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := s.requestOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	if err := opts.ValidateForGenerate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateForExport(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkSize(opts, format); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	etag := fmt.Sprintf("%q", fmt.Sprintf("%.16s-%s-%d", result.GridHash, format, opts.Scale))
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	cache := "miss"
	if result.CacheInfo.GenerateHit && result.CacheInfo.ExportHit {
		cache = "hit"
	}
	h := w.Header()
	h.Set("Content-Type", contentTypes[format])
	h.Set("ETag", etag)
	h.Set("X-Cache", cache)
	h.Set("X-Terrain-Algorithm", opts.Algorithm)
	h.Set("X-Terrain-Seed", strconv.FormatUint(opts.Seed, 10))
	h.Set("X-Terrain-Size", fmt.Sprintf("%dx%d", result.Stats.Width, result.Stats.Height))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// checkSize rejects requests above the configured cell budget. Image
// formats are counted after upscaling.
func (s *Server) checkSize(opts pipeline.Options, format string) error {
	g, err := pipeline.NewGenerator(opts, nil)
	if err != nil {
		return err
	}
	w, h := g.Size()
	if w*h > s.cfg.MaxCells {
		return errors.New(errors.ErrCodeInvalidInput,
			"requested grid of %dx%d exceeds the server limit of %d cells", w, h, s.cfg.MaxCells)
	}
	if format == pipeline.FormatJSON {
		return nil
	}
	// Scale is already validated, so the product cannot overflow.
	if px := w * h * opts.Scale * opts.Scale; px > s.cfg.MaxCells {
		return errors.New(errors.ErrCodeInvalidInput,
			"%dx%d grid at scale %d is %d pixels, above the server limit of %d",
			w, h, opts.Scale, px, s.cfg.MaxCells)
	}
	return nil
}

// requestOptions merges the request parameters over the server defaults.
func (s *Server) requestOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.Logger = s.logger

	if r.Method == http.MethodPost {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
		}
		return opts, nil
	}

	if err := applyQuery(&opts, r.URL.Query()); err != nil {
		return opts, err
	}
	return opts, nil
}

// applyQuery overlays query parameters onto opts.
func applyQuery(opts *pipeline.Options, q url.Values) error {
	for key, vals := range q {
		if len(vals) == 0 {
			continue
		}
		v := vals[0]
		var err error
		switch key {
		case "algorithm":
			opts.Algorithm = v
		case "base_width":
			opts.BaseWidth, err = strconv.Atoi(v)
		case "base_height":
			opts.BaseHeight, err = strconv.Atoi(v)
		case "iterations":
			opts.Iterations, err = strconv.Atoi(v)
		case "roughness":
			opts.Roughness, err = strconv.ParseFloat(v, 64)
		case "low":
			opts.Low, err = strconv.ParseFloat(v, 64)
		case "high":
			opts.High, err = strconv.ParseFloat(v, 64)
		case "seed":
			opts.Seed, err = strconv.ParseUint(v, 10, 64)
		case "scale":
			opts.Scale, err = strconv.Atoi(v)
		case "refresh":
			opts.Refresh, err = strconv.ParseBool(v)
		default:
			return errors.New(errors.ErrCodeInvalidInput, "unknown query parameter %q", key)
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s=%q", key, v)
		}
	}
	return nil
}
