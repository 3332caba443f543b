package httpmiddleware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
)

// Logger creates a logging middleware for http.RoundTripper.
// maxBodySize controls body logging:
//   - 0: no body logging
//   - -1: log entire body
//   - >0: log first N bytes of body
func Logger(logger *slog.Logger, maxBodySize int) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			logRequest(logger, req, maxBodySize)

			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration := time.Since(start)

			if err != nil {
				logger.Warn("Backend request failed",
					slog.String("method", req.Method),
					slog.String("url", req.URL.String()),
					slog.String("request_id", req.Header.Get(RequestIDHeader)),
					slog.Duration("duration", duration),
					slog.Any("error", err))

				return resp, err
			}

			logResponse(logger, req, resp, duration, maxBodySize)

			return resp, nil
		})
	}
}

func logRequest(logger *slog.Logger, req *http.Request, maxBodySize int) {
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
	}

	if len(req.Header) > 0 {
		attrs = append(attrs, slog.Any("headers", headerGroup(req.Header)))
	}

	if maxBodySize != 0 && req.Body != nil && req.Body != http.NoBody {
		body, err := readBody(req.Body)
		if err == nil {
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			if len(body) > 0 {
				attrs = append(attrs, slog.String("body", truncate(body, maxBodySize)))
			}
		}
	}

	logger.LogAttrs(req.Context(), slog.LevelDebug, "📤 Backend request", attrs...)
}

func logResponse(logger *slog.Logger, req *http.Request, resp *http.Response, duration time.Duration, maxBodySize int) {
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	}

	if maxBodySize != 0 && resp.Body != nil {
		body, err := readBody(resp.Body)
		if err == nil {
			resp.Body = io.NopCloser(bytes.NewBuffer(body))
			if len(body) > 0 {
				attrs = append(attrs, slog.String("body", truncate(body, maxBodySize)))
			}
		}
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	if resp.StatusCode >= 500 {
		level = slog.LevelError
	}

	logger.LogAttrs(req.Context(), level, "📥 Backend response", attrs...)
}

func headerGroup(h http.Header) slog.Value {
	attrs := make([]slog.Attr, 0, len(h))
	for k, v := range h {
		if isSensitiveHeader(k) {
			attrs = append(attrs, slog.String(k, "[REDACTED]"))
			continue
		}
		attrs = append(attrs, slog.String(k, strings.Join(v, ", ")))
	}

	return slog.GroupValue(attrs...)
}

// readBody drains the body so it can be restored for the caller.
func readBody(body io.ReadCloser) ([]byte, error) {
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return data, nil
}

// truncate limits the logged part of a body. -1 keeps everything.
func truncate(body []byte, maxBodySize int) string {
	if maxBodySize < 0 || len(body) <= maxBodySize {
		return string(body)
	}

	return string(body[:maxBodySize]) + "…"
}

var sensitiveHeaders = []string{
	"authorization",
	"cookie",
	"set-cookie",
	"x-api-key",
	"x-auth-token",
}

func isSensitiveHeader(name string) bool {
	return slices.Contains(sensitiveHeaders, strings.ToLower(name))
}
