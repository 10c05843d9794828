// Package bind decodes request bodies and maps failures to coded errors
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/logger"
	"customerlens/internal/platform/validate"
)

// JSONOptions controls ParseJSON
type JSONOptions struct {
	MaxBytes        int64 // default 1MB
	DisallowUnknown bool  // default true
	AllowEmptyBody  bool
}

func defaultJSONOptions() JSONOptions {
	return JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}
}

// ParseJSON decodes one JSON value into T and validates it
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Error().Err(err).Msg("failed to close request body")
		}
	}()

	var body io.Reader = r.Body
	if o.MaxBytes > 0 {
		body = io.LimitReader(r.Body, o.MaxBytes+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return zero, perr.Wrap(err, perr.ErrorCodeJSON, "read body")
	}
	if o.MaxBytes > 0 && int64(len(raw)) > o.MaxBytes {
		return zero, perr.TooLargef("body exceeds %d bytes", o.MaxBytes)
	}

	var dst T
	if len(bytes.TrimSpace(raw)) == 0 {
		if !o.AllowEmptyBody {
			return zero, perr.JSONErrf("empty body")
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(raw))
		if o.DisallowUnknown {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(&dst); err != nil {
			return zero, perr.JSONErrf("invalid JSON: %v", err)
		}
		if dec.More() {
			return zero, perr.JSONErrf("unexpected trailing data")
		}
	}

	if err := validate.Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// File is an uploaded multipart part
type File struct {
	Name string
	Size int64
	io.ReadCloser
}

// FormFile opens the multipart part called field
// uploads over maxBytes fail with TooLarge, a missing part with Validation
func FormFile(r *http.Request, field string, maxBytes int64) (File, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return File{}, perr.TooLargef("upload exceeds %d bytes", maxBytes)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return File{}, perr.WithField(perr.Validationf("multipart field %q is required", field), field)
		default:
			return File{}, perr.Wrap(err, perr.ErrorCodeValidation, "read multipart form")
		}
	}
	return File{Name: baseName(hdr), Size: hdr.Size, ReadCloser: f}, nil
}

func baseName(h *multipart.FileHeader) string {
	if h == nil || h.Filename == "" {
		return "upload.csv"
	}
	return h.Filename
}
