package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/go-chi/chi/v5/middleware"
)

// maxUploadBytes caps a whole multipart body (6 images or one proof).
const maxUploadBytes = 50 << 20

type errorResp struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

type messageResp struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the apperr taxonomy to a status code. Storage and unexpected
// errors are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResp{Error: apperr.ErrValidation.Error(), Fields: ve.Fields})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	default:
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "internal server error"})
	}
}

// parseMultipart reads the form; a body that is not multipart is a validation error.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	err := r.ParseMultipartForm(8 << 20)
	var mbe *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, http.ErrNotMultipart):
		return apperr.Invalid("body", "expected multipart/form-data")
	case errors.As(err, &mbe):
		return apperr.Invalid("body", "upload too large")
	default:
		return apperr.Invalid("body", "malformed multipart form")
	}
}

func uploads(r *http.Request, field string) []media.Upload {
	if r.MultipartForm == nil {
		return nil
	}
	fhs := r.MultipartForm.File[field]
	out := make([]media.Upload, 0, len(fhs))
	for _, fh := range fhs {
		out = append(out, fromFileHeader(fh))
	}
	return out
}

func fromFileHeader(fh *multipart.FileHeader) media.Upload {
	return media.Upload{
		Filename: fh.Filename,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
