package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/kiranshivaraju/codereview/internal/api/response"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

// formOverhead is the room allowed for multipart framing and other form
// fields on top of the file itself.
const formOverhead = 64 << 10

// defaultFileName is used when an upload carries no file name.
const defaultFileName = "Upload.java"

// Reviewer defines the interface the analyze handler depends on.
type Reviewer interface {
	Review(ctx context.Context, fileName, source string) (models.AnalysisResult, error)
}

// AnalyzeOptions configures the analyze handler.
type AnalyzeOptions struct {
	// MaxUploadBytes bounds the size of the uploaded file.
	MaxUploadBytes int64
	// Timeout bounds the whole review; zero means no limit beyond the request's.
	Timeout time.Duration
	// Bare writes the result without the {"data": ...} envelope.
	Bare bool
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// The request is multipart/form-data with the source in the "file" field.
func NewAnalyzeHandler(svc Reviewer, opts AnalyzeOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxUploadBytes+formOverhead)

		fileName, source, status, msg := readUpload(r, opts.MaxUploadBytes)
		if status != 0 {
			code := "INVALID_REQUEST"
			if status == http.StatusRequestEntityTooLarge {
				code = "FILE_TOO_LARGE"
			}
			response.Error(w, status, code, msg, nil)
			return
		}

		ctx := r.Context()
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}

		result, err := svc.Review(ctx, fileName, source)
		if err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
					"Analysis took too long and was cancelled", nil)
			default:
				slog.ErrorContext(r.Context(), "review failed", "file_name", fileName, "error", err)
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		if opts.Bare {
			response.Bare(w, result)
			return
		}
		response.JSON(w, result)
	}
}

// readUpload streams the multipart body and returns the "file" part. A
// non-zero status reports why the upload was rejected.
func readUpload(r *http.Request, maxBytes int64) (fileName, source string, status int, msg string) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", "", http.StatusBadRequest, "Request must be multipart/form-data"
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", "", http.StatusBadRequest, "file is required"
		}
		if err != nil {
			return "", "", uploadErrorStatus(err), uploadErrorMessage(err)
		}

		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		_ = part.Close()
		if err != nil {
			return "", "", uploadErrorStatus(err), uploadErrorMessage(err)
		}
		if int64(len(data)) > maxBytes {
			return "", "", http.StatusRequestEntityTooLarge, "file exceeds the upload limit"
		}

		return cleanFileName(part.FileName()), string(data), 0, ""
	}
}

func uploadErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func uploadErrorMessage(err error) string {
	if uploadErrorStatus(err) == http.StatusRequestEntityTooLarge {
		return "request body exceeds the upload limit"
	}
	return "malformed multipart body"
}

// cleanFileName keeps only the base name of the client-supplied file name.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return defaultFileName
	}
	return name
}
