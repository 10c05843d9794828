package httpkit

import (
	"net/http"
	"time"

	"customerlens/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Timeout time.Duration
	Slow    time.Duration
	CORS    middleware.CORSOptions
}

// CommonStack is the middleware every versioned API router gets
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	stack := middleware.Defaults(o.Timeout)
	return append(stack,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.CORS(o.CORS),
	)
}
