package core

// batch.go runs validation across all sheets of an upload and persists the
// valid records.
//
// Validation is in-memory and bounded by the upload size limit, so sheets are
// validated one after another. Persistence is I/O bound: each sheet with
// valid records is written by its own goroutine, one batch per sheet. The
// first persistence failure cancels the remaining writes and fails the whole
// batch; batches that already committed stay committed.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/SheetUpload/internal/logging"
)

// ResponseMessage is the message of a successfully processed batch.
const ResponseMessage = "Files processed"

// PersistError reports a failed batch insert for one sheet.
type PersistError struct {
	Sheet string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist sheet %q: %v", e.Sheet, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Orchestrator validates workbooks sheet by sheet and hands valid records to
// the store.
type Orchestrator struct {
	processor *Processor
	store     Inserter
	recorder  Recorder
	echoLimit int
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) OrchestratorOption {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithEchoLimit caps how many persisted records are echoed per sheet in the
// response. Zero or less echoes all of them.
func WithEchoLimit(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.echoLimit = n
	}
}

// NewOrchestrator creates an orchestrator that writes through store.
func NewOrchestrator(processor *Processor, store Inserter, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		processor: processor,
		store:     store,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate runs the sheet processor over every sheet without persisting.
func (o *Orchestrator) Validate(ctx context.Context, sheets []Sheet) []SheetResult {
	logger := logging.FromContext(ctx)

	results := make([]SheetResult, len(sheets))
	for i, sh := range sheets {
		r := o.processor.Process(sh.Name, sh.Rows)
		if r.Empty {
			r.Message = fmt.Sprintf("Sheet %d (%s) is empty", i+1, sh.Name)
		}
		o.recorder.ObserveSheet(r.Schema, &r)

		logger.Info("sheet validated",
			"sheet", sh.Name,
			"schema", r.Schema,
			"rows", r.Rows(),
			"valid", len(r.Records),
			"rejected", len(r.RowErrors),
			"blank", r.Blank,
			"empty", r.Empty,
		)
		results[i] = r
	}
	return results
}

// RunBatch validates all sheets, persists every sheet that produced valid
// records, and assembles the response. A persistence failure is returned as
// a *PersistError and no response is produced.
func (o *Orchestrator) RunBatch(ctx context.Context, sheets []Sheet) (*BatchResponse, error) {
	results := o.Validate(ctx, sheets)

	uploaded, err := o.persist(ctx, results)
	if err != nil {
		return nil, err
	}

	resp := &BatchResponse{
		Message: ResponseMessage,
		Success: BatchSuccess{UploadedSheets: []UploadedSheet{}},
		Errors:  []SheetErrors{},
		Sheets:  results,
	}

	for i := range results {
		r := &results[i]

		if u := uploaded[i]; u != nil {
			resp.Success.UploadedSheets = append(resp.Success.UploadedSheets, *u)
		}

		if r.Empty || len(r.RowErrors) > 0 {
			resp.Errors = append(resp.Errors, SheetErrors{
				SheetName:    r.SheetName,
				SkippedCount: len(r.RowErrors),
				Details:      r.RowErrors,
				Error:        r.Message,
			})
		}
	}

	return resp, nil
}

// persist writes each sheet's records concurrently. The returned slice is
// indexed like results; sheets without records have a nil entry.
func (o *Orchestrator) persist(ctx context.Context, results []SheetResult) ([]*UploadedSheet, error) {
	uploaded := make([]*UploadedSheet, len(results))
	g, gctx := errgroup.WithContext(ctx)

	for i := range results {
		r := &results[i]
		if len(r.Records) == 0 {
			continue
		}

		g.Go(func() error {
			start := time.Now()
			saved, err := o.store.InsertBatch(gctx, r.SheetName, r.Records)
			o.recorder.ObservePersist(r.Schema, len(r.Records), time.Since(start), err)

			if err != nil {
				logging.FromContext(ctx).Error("sheet persist failed",
					"sheet", r.SheetName,
					"records", len(r.Records),
					"error", err,
				)
				return &PersistError{Sheet: r.SheetName, Err: err}
			}

			echo := saved
			if o.echoLimit > 0 && len(echo) > o.echoLimit {
				echo = echo[:o.echoLimit]
			}
			uploaded[i] = &UploadedSheet{
				SheetName:     r.SheetName,
				UploadedCount: len(saved),
				UploadedData:  echo,
			}

			batchID := ""
			if len(saved) > 0 {
				batchID = saved[0].BatchID
			}
			logging.FromContext(ctx).Info("sheet persisted",
				"sheet", r.SheetName,
				"batch_id", batchID,
				"records", len(saved),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var pe *PersistError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, err
	}
	return uploaded, nil
}
