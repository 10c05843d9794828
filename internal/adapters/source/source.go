// Package source opens customer CSV exports from a file, stdin or an http(s) URL
// gzip is detected from the magic bytes so ".csv.gz" and gzip encoded downloads read the same
package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/logger"
)

// Stdin is the ref that reads standard input
const Stdin = "-"

// Fetcher returns the raw bytes behind a remote ref
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher downloads exports over http(s)
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher builds a fetcher with a whole request timeout, 0 means none
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch issues a GET and fails on any non 200 status
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "source url")
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "fetch source")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, perr.NotFoundf("source %s not found", url)
		}
		return nil, perr.Unavailablef("source %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// Opener resolves refs to readers
type Opener struct {
	Fetcher Fetcher
	Stdin   io.Reader
}

// NewOpener uses an http fetcher with timeout and os.Stdin
func NewOpener(timeout time.Duration) *Opener {
	return &Opener{Fetcher: NewHTTPFetcher(timeout), Stdin: os.Stdin}
}

// Open resolves ref, a path, "-" or an http(s) URL, and wraps it in a Reader
func (o *Opener) Open(ctx context.Context, ref string) (*Reader, error) {
	var rc io.ReadCloser
	switch {
	case ref == "":
		return nil, perr.WithField(perr.InvalidArgf("empty source"), "source")
	case ref == Stdin:
		rc = io.NopCloser(o.Stdin)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if o.Fetcher == nil {
			return nil, perr.InvalidArgf("remote sources are disabled")
		}
		var err error
		if rc, err = o.Fetcher.Fetch(ctx, ref); err != nil {
			return nil, err
		}
	default:
		f, err := os.Open(ref)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, perr.WithField(perr.NotFoundf("source %s not found", ref), "source")
			}
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open %s", ref)
		}
		rc = f
	}
	rd, err := NewReader(rc)
	if err != nil {
		return nil, err
	}
	rd.ref = ref
	return rd, nil
}

// Reader is a CSV byte stream with gzip unwrapped and a byte count
type Reader struct {
	ref   string
	src   io.ReadCloser
	gz    *gzip.Reader
	r     io.Reader
	bytes int64
}

// NewReader peeks at rc and transparently gunzips
func NewReader(rc io.ReadCloser) (*Reader, error) {
	br := bufio.NewReader(rc)
	rd := &Reader{src: rc, r: br}
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = rc.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeCSV, "read source")
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = rc.Close()
			return nil, perr.Wrap(err, perr.ErrorCodeCSV, "gzip source")
		}
		rd.gz, rd.r = gz, gz
	}
	return rd, nil
}

// Read counts uncompressed bytes
func (rd *Reader) Read(p []byte) (int, error) {
	n, err := rd.r.Read(p)
	rd.bytes += int64(n)
	return n, err
}

// Bytes is the uncompressed size read so far
func (rd *Reader) Bytes() int64 { return rd.bytes }

// Compressed reports whether the source was gzip
func (rd *Reader) Compressed() bool { return rd.gz != nil }

// Close releases the gzip stream then the source
func (rd *Reader) Close() error {
	var first error
	if rd.gz != nil {
		first = rd.gz.Close()
	}
	if err := rd.src.Close(); err != nil && first == nil {
		first = err
	}
	if first == nil {
		logger.Named("source").Debug().
			Str("ref", rd.ref).
			Int64("bytes", rd.bytes).
			Bool("gzip", rd.gz != nil).
			Msg("source closed")
	}
	return first
}

// String names the source for logs
func (rd *Reader) String() string { return fmt.Sprintf("source(%s)", rd.ref) }
