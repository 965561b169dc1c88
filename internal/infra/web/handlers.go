package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/ports/adapter"
	"ai-storefront-builder/internal/infra/logging"
	"ai-storefront-builder/internal/usecase"
)

const (
	msgInternal     = "Internal server error"
	msgSiteNotFound = "Site not found"
	msgNotReady     = "Site not found or not ready"
	msgNoAudio      = "No audio file provided"
	msgTranscribe   = "Failed to transcribe audio"
	msgInvalidJSON  = "Invalid JSON body"

	maxJSONBody = 1 << 20
)

type messageBody struct {
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

type transcriptBody struct {
	Text string `json:"text"`
}

// POST /api/sites
func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.SubmitSiteInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: decodeMessage(err)})
		return
	}
	// a second JSON value after the object is extraneous input
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: msgInvalidJSON})
		return
	}

	site, err := s.sites.Submit(ctx, in)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, messageBody{Message: verr.Message})
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("create site failed")
		writeInternal(w, r)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// GET /api/sites/{id}
func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, messageBody{Message: msgSiteNotFound})
		return
	}

	site, err := s.sites.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageBody{Message: msgSiteNotFound})
	case err != nil:
		logging.With(ctx, s.log).Error().Err(err).Int64("site_id", id).Msg("get site failed")
		writeInternal(w, r)
	default:
		writeJSON(w, http.StatusOK, site)
	}
}

// GET /sites/{id}/preview serves the stored markup verbatim.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeText(w, http.StatusNotFound, msgNotReady)
		return
	}

	code, err := s.sites.Preview(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotReady):
		writeText(w, http.StatusNotFound, msgNotReady)
	case err != nil:
		logging.With(ctx, s.log).Error().Err(err).Int64("site_id", id).Msg("preview failed")
		writeText(w, http.StatusInternalServerError, msgInternal)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, code)
	}
}

// POST /api/transcribe, multipart field "audio".
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Audio file too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgNoAudio})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgNoAudio})
		return
	}
	defer file.Close()

	text, err := s.stt.Transcribe(ctx, adapter.Audio{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	switch {
	case errors.Is(err, domain.ErrNoAudio):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgNoAudio})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgTranscribe})
	default:
		writeJSON(w, http.StatusOK, transcriptBody{Text: text})
	}
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeMessage maps json decoder failures to a short client-facing message.
func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return "Prompt is required"
	case errors.As(err, &typeErr):
		return "Expected string for " + typeErr.Field
	case errors.As(err, &tooBig):
		return "Request body too large"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "Unrecognized key in body: " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	default:
		return msgInvalidJSON
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeInternal sends the generic 500 with the request's trace id so it can be
// matched to the server log.
func writeInternal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, messageBody{
		Message: msgInternal,
		TraceID: logging.TraceID(r.Context()),
	})
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, msg)
}

func itoa(n int) string { return strconv.Itoa(n) }
