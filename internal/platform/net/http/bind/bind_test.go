package bind

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "customerlens/internal/platform/errors"
)

type renderReq struct {
	Dataset string `json:"dataset" validate:"required"`
	Limit   int    `json:"limit" validate:"min=0,max=1000"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParseJSON_Success(t *testing.T) {
	got, err := ParseJSON[renderReq](post(`{"dataset":"ds-1","limit":5}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Dataset != "ds-1" || got.Limit != 5 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		opts []JSONOptions
		code perr.ErrorCode
	}{
		{"empty", "", nil, perr.ErrorCodeJSON},
		{"whitespace", "  \n", nil, perr.ErrorCodeJSON},
		{"broken", `{`, nil, perr.ErrorCodeJSON},
		{"unknown field", `{"dataset":"x","zip":1}`, nil, perr.ErrorCodeJSON},
		{"trailing", `{"dataset":"x"} {}`, nil, perr.ErrorCodeJSON},
		{"validation", `{"limit":5}`, nil, perr.ErrorCodeValidation},
		{"too large", `{"dataset":"xxxxxxxxxxxxxxxx"}`, []JSONOptions{{MaxBytes: 8}}, perr.ErrorCodeTooLarge},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseJSON[renderReq](post(c.body), c.opts...)
			if perr.CodeOf(err) != c.code {
				t.Fatalf("code = %v, want %v (%v)", perr.CodeOf(err), c.code, err)
			}
		})
	}
}

func TestParseJSON_UnknownAllowed(t *testing.T) {
	got, err := ParseJSON[renderReq](post(`{"dataset":"x","zip":1}`), JSONOptions{MaxBytes: 1 << 10})
	if err != nil || got.Dataset != "x" {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestParseJSON_EmptyAllowedStillValidates(t *testing.T) {
	type opt struct {
		Note string `json:"note"`
	}
	got, err := ParseJSON[opt](post(""), JSONOptions{AllowEmptyBody: true})
	if err != nil || got != (opt{}) {
		t.Fatalf("got %+v, %v", got, err)
	}
	_, err = ParseJSON[renderReq](post(""), JSONOptions{AllowEmptyBody: true})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func multipartReq(t *testing.T, field, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = io.WriteString(fw, content)
	_ = mw.Close()
	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestFormFile(t *testing.T) {
	r := multipartReq(t, "file", "customers.csv", "age,salutation\n45,Mr.\n")
	f, err := FormFile(r, "file", 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	b, _ := io.ReadAll(f)
	if f.Name != "customers.csv" || !strings.HasPrefix(string(b), "age,salutation") {
		t.Fatalf("file = %q %q", f.Name, b)
	}
}

func TestFormFile_Errors(t *testing.T) {
	_, err := FormFile(multipartReq(t, "other", "a.csv", "x"), "file", 1<<20)
	if e, ok := perr.As(err); !ok || e.Code() != perr.ErrorCodeValidation || e.Field() != "file" {
		t.Fatalf("missing part = %v", err)
	}

	_, err = FormFile(post("not multipart"), "file", 1<<20)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("not multipart = %v", err)
	}

	big := strings.Repeat("x", 4096)
	_, err = FormFile(multipartReq(t, "file", "a.csv", big), "file", 512)
	if !perr.IsCode(err, perr.ErrorCodeTooLarge) {
		t.Fatalf("too large = %v", err)
	}
}
