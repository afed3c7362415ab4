// Package ingest orchestrates loading customer and order files into the
// store: discovery, checksum, schema pre-check, per-record
// normalize/validate/load, per-file commit, and reject artifacts.
//
// Failure handling follows a soft/hard split. One bad record never aborts a
// file: it is skipped, counted, and captured in the reject artifact. A file
// that fails its structural pre-check or cannot be parsed at all is
// rejected whole, and the run moves on to the next file. Only missing
// explicit paths and exhausted discovery retries escalate to the caller; a
// run otherwise always completes and returns a summary.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"orderpulse/internal/model"
	"orderpulse/internal/normalize"
	"orderpulse/internal/source"
	"orderpulse/internal/store"
	"orderpulse/internal/validate"
)

// File outcome statuses.
const (
	StatusLoaded   = "loaded"
	StatusRejected = "rejected"
)

// SchemaRejectReason is the reject-artifact reason for files failing the
// structural pre-check.
const SchemaRejectReason = "schema validation failed"

// FileOutcome is the per-file result of an ingestion run.
type FileOutcome struct {
	FileName       string `json:"file_name"`
	Status         string `json:"status"`
	Checksum       string `json:"checksum,omitempty"`
	RecordsLoaded  int    `json:"records_loaded"`
	RecordsSkipped int    `json:"records_skipped"`
	Reason         string `json:"reason,omitempty"`
}

// RunSummary aggregates one ingestion run. It is produced even when every
// file was rejected; only fatal errors prevent a summary.
type RunSummary struct {
	RunID           string        `json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	Outcomes        []FileOutcome `json:"outcomes"`
	CustomersLoaded int           `json:"customers_loaded"`
	OrdersLoaded    int           `json:"orders_loaded"`
	RecordsSkipped  int           `json:"records_skipped"`
}

// LoadResult reports one file-level load.
type LoadResult struct {
	Loaded  int
	Skipped int
	Rejects []RejectedRecord
}

// Pipeline wires the source readers, normalizer, validator, store, and
// reject writer together. Construct one per invocation; it keeps no state
// between runs.
type Pipeline struct {
	store      *store.Store
	logger     *slog.Logger
	rejects    *RejectWriter
	retryDelay time.Duration
	sleep      func(time.Duration)
	now        func() time.Time
}

// Options configures a Pipeline. Zero values select production defaults.
type Options struct {
	// Logger receives structured progress and data-quality events.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// RejectsDir is where reject artifacts are written.
	// Defaults to "rejects" under the current directory.
	RejectsDir string

	// RetryDelay overrides the discovery retry delay (tests shrink it).
	RetryDelay time.Duration

	// Now overrides wall clock (tests pin it).
	Now func() time.Time
}

// New creates a Pipeline over the given store.
func New(st *store.Store, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rejectsDir := opts.RejectsDir
	if rejectsDir == "" {
		rejectsDir = "rejects"
	}
	retryDelay := opts.RetryDelay
	if retryDelay == 0 {
		retryDelay = discoverDelay
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		store:      st,
		logger:     logger,
		rejects:    &RejectWriter{Dir: rejectsDir, Now: now},
		retryDelay: retryDelay,
		sleep:      time.Sleep,
		now:        now,
	}
}

// IngestDirectory processes every supported file in dir and returns the run
// summary. Discovery errors are retried; once exhausted they are fatal and
// no summary is produced. Everything else is absorbed into the summary.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) (*RunSummary, error) {
	started := p.now()
	summary := &RunSummary{
		RunID:     uuid.Must(uuid.NewV7()).String(),
		StartedAt: started,
	}
	p.logger.Info("ingestion run starting", "run_id", summary.RunID, "dir", dir)

	files, err := p.discover(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		p.logger.Info("no new files detected", "dir", dir)
	}

	for _, path := range files {
		outcome := p.processFile(ctx, path)
		summary.Outcomes = append(summary.Outcomes, outcome)
		summary.RecordsSkipped += outcome.RecordsSkipped
		if outcome.Status == StatusLoaded {
			if strings.EqualFold(filepath.Ext(path), ".csv") {
				summary.CustomersLoaded += outcome.RecordsLoaded
			} else {
				summary.OrdersLoaded += outcome.RecordsLoaded
			}
		}
	}

	summary.Duration = p.now().Sub(started)
	p.logger.Info("ingestion run complete",
		"run_id", summary.RunID,
		"files", len(summary.Outcomes),
		"customers_loaded", summary.CustomersLoaded,
		"orders_loaded", summary.OrdersLoaded,
		"records_skipped", summary.RecordsSkipped)
	return summary, nil
}

// processFile runs one file through checksum, pre-check, and load. All
// failures are absorbed into the outcome; the run continues either way.
func (p *Pipeline) processFile(ctx context.Context, path string) FileOutcome {
	name := filepath.Base(path)
	outcome := FileOutcome{FileName: name}

	sum, err := Checksum(path)
	if err != nil {
		p.logger.Error("checksum failed", "file", name, "error", err)
		outcome.Status = StatusRejected
		outcome.Reason = fmt.Sprintf("unreadable: %v", err)
		return outcome
	}
	outcome.Checksum = sum
	p.logger.Info("file checksum", "file", name, "md5", sum)

	if err := p.precheck(path); err != nil {
		p.logger.Warn("schema validation failed", "file", name, "error", err)
		if _, werr := p.rejects.Write(name, SchemaRejectReason, nil); werr != nil {
			p.logger.Error("reject artifact write failed", "file", name, "error", werr)
		}
		outcome.Status = StatusRejected
		outcome.Reason = SchemaRejectReason
		return outcome
	}

	var res LoadResult
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		res, err = p.LoadCustomersCSV(ctx, path)
	} else {
		res, err = p.LoadOrdersXML(ctx, path)
	}
	if err != nil {
		p.logger.Error("file load failed", "file", name, "error", err)
		outcome.Status = StatusRejected
		outcome.Reason = err.Error()
		return outcome
	}

	if len(res.Rejects) > 0 {
		if _, werr := p.rejects.Write(name, "record validation", res.Rejects); werr != nil {
			p.logger.Error("reject artifact write failed", "file", name, "error", werr)
		}
	}

	outcome.Status = StatusLoaded
	outcome.RecordsLoaded = res.Loaded
	outcome.RecordsSkipped = res.Skipped
	return outcome
}

func (p *Pipeline) precheck(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return source.PrecheckCSV(path)
	}
	return source.PrecheckXML(path)
}

// LoadCustomersCSV loads one customer CSV into the store. The whole file
// commits in one transaction; individual bad records are skipped and
// reported in the result. A missing path or unparseable file is fatal for
// the call and nothing is committed.
func (p *Pipeline) LoadCustomersCSV(ctx context.Context, path string) (LoadResult, error) {
	name := filepath.Base(path)
	p.logger.Info("loading customers", "file", name)

	if _, err := os.Stat(path); err != nil {
		return LoadResult{}, newError(KindSourceNotFound, name, "customer file not found", err)
	}

	records, err := source.ReadCustomersCSV(path)
	if err != nil {
		return LoadResult{}, newError(KindParseFailure, name, "unreadable customer file", err)
	}

	sess, err := p.store.Begin(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load customers: %w", err)
	}
	defer sess.Close()

	var res LoadResult
	for i, rec := range records {
		rowNum := i + 2 // header is row 1
		c := model.Customer{
			CustomerName: normalize.CleanString(rec["customer_name"]),
			MobileNumber: normalize.MobileNumber(rec["mobile_number"]),
			Region:       normalize.CleanString(rec["region"]),
		}

		ok, missing := validate.Required(map[string]string{
			"customer_name": c.CustomerName,
			"mobile_number": c.MobileNumber,
			"region":        c.Region,
		}, validate.CustomerFields)
		if !ok {
			p.logger.Warn("data quality issue",
				"issue", "missing required fields", "file", name, "row", rowNum, "missing", missing)
			res.skip(rec, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
			continue
		}

		if _, err := sess.AddCustomer(ctx, c); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				p.logger.Warn("data quality issue",
					"issue", "duplicate mobile number", "file", name, "row", rowNum, "mobile", c.MobileNumber)
				res.skip(rec, "duplicate mobile number")
				continue
			}
			// Savepoint already rolled this record back; keep going.
			p.logger.Error("customer insert failed", "file", name, "row", rowNum, "error", err)
			res.skip(rec, fmt.Sprintf("insert failed: %v", err))
			continue
		}
		res.Loaded++
	}

	if err := sess.Commit(); err != nil {
		return LoadResult{}, fmt.Errorf("load customers: %w", err)
	}
	p.logger.Info("customers loaded", "file", name, "loaded", res.Loaded, "skipped", res.Skipped)
	return res, nil
}

// LoadOrdersXML loads one order XML into the store, with the same commit
// and failure semantics as LoadCustomersCSV. Orders with order_id 0 are
// rejected; unparseable sku_count/total_amount default to zero and load.
func (p *Pipeline) LoadOrdersXML(ctx context.Context, path string) (LoadResult, error) {
	name := filepath.Base(path)
	p.logger.Info("loading orders", "file", name)

	if _, err := os.Stat(path); err != nil {
		return LoadResult{}, newError(KindSourceNotFound, name, "order file not found", err)
	}

	records, err := source.ReadOrdersXML(path)
	if err != nil {
		return LoadResult{}, newError(KindParseFailure, name, "malformed order file", err)
	}

	sess, err := p.store.Begin(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load orders: %w", err)
	}
	defer sess.Close()

	var res LoadResult
	for _, rec := range records {
		orderID := normalize.SafeInt(rec["order_id"], 0)
		when, whenOK := normalize.DateTime(rec["order_date_time"])
		o := model.Order{
			OrderID:       int64(orderID),
			MobileNumber:  normalize.MobileNumber(rec["mobile_number"]),
			OrderDateTime: when,
			SKUID:         normalize.CleanString(rec["sku_id"]),
			SKUCount:      normalize.SafeInt(rec["sku_count"], 0),
			TotalAmount:   normalize.SafeFloat(rec["total_amount"], 0.0),
		}

		whenField := ""
		if whenOK {
			whenField = when.Format(model.DateTimeLayout)
		}
		ok, missing := validate.Required(map[string]string{
			"order_id":        strconv.Itoa(orderID),
			"mobile_number":   o.MobileNumber,
			"order_date_time": whenField,
			"sku_id":          o.SKUID,
		}, validate.OrderFields)
		if !ok || orderID == 0 {
			p.logger.Warn("data quality issue",
				"issue", "missing or invalid required fields", "file", name, "order_id", orderID, "missing", missing)
			res.skip(rec, "missing or invalid required fields")
			continue
		}

		if err := sess.AddOrder(ctx, o); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				p.logger.Warn("data quality issue",
					"issue", "duplicate order id", "file", name, "order_id", orderID)
				res.skip(rec, "duplicate order id")
				continue
			}
			p.logger.Error("order insert failed", "file", name, "order_id", orderID, "error", err)
			res.skip(rec, fmt.Sprintf("insert failed: %v", err))
			continue
		}
		res.Loaded++
	}

	if err := sess.Commit(); err != nil {
		return LoadResult{}, fmt.Errorf("load orders: %w", err)
	}
	p.logger.Info("orders loaded", "file", name, "loaded", res.Loaded, "skipped", res.Skipped)
	return res, nil
}

func (r *LoadResult) skip(rec map[string]string, reason string) {
	r.Skipped++
	r.Rejects = append(r.Rejects, RejectedRecord{Reason: reason, Record: rec})
}
