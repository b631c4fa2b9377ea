package web

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"

	"github.com/JonMunkholm/SheetUpload/internal/logging"
)

// clientIP returns the request's client address without the port.
// RemoteAddr is already rewritten by middleware.TrustedRealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// withUploadLogger attaches a logger carrying the upload's metadata to ctx,
// so engine log lines for this request share the same fields.
func withUploadLogger(ctx context.Context, r *http.Request, header *multipart.FileHeader) (context.Context, *slog.Logger) {
	return logging.WithFields(ctx,
		"file", header.Filename,
		"size", header.Size,
		"ip", clientIP(r),
	)
}
