package web

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/SheetUpload/internal/core"
	"github.com/JonMunkholm/SheetUpload/internal/metrics"
	"github.com/JonMunkholm/SheetUpload/internal/web/templates"
	"github.com/JonMunkholm/SheetUpload/internal/workbook"
)

// multipartMemory is how much of the form is buffered in memory; the rest
// spills to temporary files.
const multipartMemory = 1 << 20

// handleExcelUpload validates every sheet of an uploaded workbook and
// persists the valid rows.
//
// The file is read from the "file" form field. Transport and format
// problems are rejected before any validation runs. A processed workbook
// always answers 200 with imported and skipped rows reported separately;
// only a persistence failure turns the whole request into a 500.
func (s *Server) handleExcelUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := metrics.StatusOK
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveUpload(status, time.Since(start))
		}
	}()

	fail := func(err error) {
		status = uploadStatus(err)
		respondError(w, r, err)
	}

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		fail(formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(core.ErrNoFile)
		return
	}
	defer file.Close()

	if !isWorkbookType(header.Header.Get("Content-Type")) {
		fail(fmt.Errorf("%w: %q", core.ErrUnsupportedType, header.Header.Get("Content-Type")))
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		fail(err)
		return
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()
	ctx, logger := withUploadLogger(ctx, r, header)

	sheets, err := workbook.Read(file, workbook.Options{UnzipSizeLimit: s.cfg.Upload.MaxUnzipSize})
	if err != nil {
		fail(err)
		return
	}
	logger.Info("workbook received", "sheets", len(sheets))

	resp, err := s.orchestrator.RunBatch(ctx, sheets)
	if err != nil {
		fail(err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := templates.UploadSummary(resp).Render(ctx, w); err != nil {
			logger.Error("render upload summary", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// formError classifies a multipart parsing failure.
func formError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
	}
	return fmt.Errorf("%w: %v", core.ErrNoFile, err)
}

// isWorkbookType reports whether a part's declared content type is the
// .xlsx MIME type. Parameters are ignored.
func isWorkbookType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == workbook.ContentType
}

// uploadStatus maps a request failure to its metrics status label.
func uploadStatus(err error) string {
	switch {
	case core.IsRejection(err):
		return metrics.StatusRejected
	case errors.Is(err, core.ErrTooManyUploads):
		return metrics.StatusBusy
	default:
		return metrics.StatusError
	}
}
