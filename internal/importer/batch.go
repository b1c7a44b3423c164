package importer

// batch.go holds the in-memory import batch: raw rows, the resolved
// mapping, and the preview records the operator edits before committing.
// All mutable pipeline state (records, the placeholder counter) lives on
// the batch and dies with it; nothing leaks across batches.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// headerRowIndex is the 1-based source row of the header; the first data
// row is headerRowIndex+1. Used for operator-facing row references.
const headerRowIndex = 1

// Batch is one uploaded file moving through the pipeline. Methods are
// called under the batch mutex by the Service.
type Batch struct {
	ID        string
	Mode      Mode
	CreatedAt time.Time

	mu       sync.Mutex
	state    BatchState
	headers  []string
	rows     [][]string
	mapping  FieldMapping
	resolved *resolvedMapping
	missing  []Field
	records  []*Record
	seq      placeholderSeq
	summary  *CommitSummary
	opts     Options
}

// BatchView is a read-only snapshot of a batch for callers outside this
// package.
type BatchView struct {
	ID            string         `json:"id"`
	State         BatchState     `json:"state"`
	Mode          Mode           `json:"mode"`
	CreatedAt     time.Time      `json:"createdAt"`
	Headers       []string       `json:"headers"`
	Mapping       FieldMapping   `json:"mapping"`
	MissingFields []Field        `json:"missingFields,omitempty"`
	TotalRows     int            `json:"totalRows"`
	Summary       *BatchSummary  `json:"summary,omitempty"`
	Records       []Record       `json:"records,omitempty"`
}

func newBatch(id string, headers []string, rows [][]string, opts Options) *Batch {
	b := &Batch{
		ID:        id,
		Mode:      opts.Mode,
		CreatedAt: opts.now(),
		state:     StateUploaded,
		headers:   headers,
		rows:      rows,
		opts:      opts,
		seq:       placeholderSeq{opts: opts},
	}
	b.mapping = AutoDetectMapping(headers)
	b.tryResolve()
	return b
}

// tryResolve validates the current mapping; on success the batch advances
// to Mapped, otherwise it stays Uploaded with the missing fields recorded.
func (b *Batch) tryResolve() {
	resolved, err := resolveMapping(b.headers, b.mapping, b.Mode)
	if err != nil {
		b.resolved = nil
		if incomplete, ok := err.(*MappingIncompleteError); ok {
			b.missing = incomplete.Missing
		}
		return
	}
	b.resolved = resolved
	b.missing = nil
	if b.state == StateUploaded {
		b.state = StateMapped
	}
}

// applyMapping merges operator overrides into the detected mapping. An
// override always wins over auto-detection for its field; mapping a field
// to an empty header label unmaps it.
func (b *Batch) applyMapping(overrides FieldMapping) error {
	if b.state != StateUploaded && b.state != StateMapped {
		return &StateError{Op: "remap", State: b.state}
	}
	for field, header := range overrides {
		if header == "" {
			delete(b.mapping, field)
			continue
		}
		b.mapping[field] = header
	}

	resolved, err := resolveMapping(b.headers, b.mapping, b.Mode)
	if err != nil {
		if incomplete, ok := err.(*MappingIncompleteError); ok {
			b.missing = incomplete.Missing
			b.resolved = nil
			b.state = StateUploaded
			return incomplete
		}
		return err
	}
	b.resolved = resolved
	b.missing = nil
	b.state = StateMapped
	return nil
}

// generatePreview normalizes and validates every row, then cross-checks
// real CPFs against the store. Regeneration from Previewed is allowed (the
// operator changed their mind about the data, not the mapping).
func (b *Batch) generatePreview(ctx context.Context, dup *DuplicateChecker) error {
	if b.state != StateMapped && b.state != StatePreviewed {
		if b.resolved == nil {
			return &MappingIncompleteError{Missing: b.missing}
		}
		return &StateError{Op: "preview", State: b.state}
	}

	records := make([]*Record, len(b.rows))
	for i, row := range b.rows {
		rec := &Record{RowIndex: headerRowIndex + 1 + i}
		rec.Student = normalizeRecord(row, b.resolved, b.opts)
		rec.Issues = validateRecord(&rec.Student, rec.RowIndex, &b.seq, b.opts)
		records[i] = rec
	}

	// Duplicate detection is a store round trip per candidate; done once
	// here, not on every edit.
	for _, rec := range records {
		if hasIssue(rec.Issues, FieldCPF) {
			continue
		}
		existingID, err := dup.Check(ctx, rec.Student.CPF, "")
		if err != nil {
			slog.Warn("duplicate check failed, skipping row",
				"batch", b.ID, "row", rec.RowIndex, "error", err)
			continue
		}
		if existingID != "" {
			rec.Issues = append(rec.Issues, Issue{FieldCPF, "CPF already registered", SeverityError})
		}
	}

	for _, rec := range records {
		rec.Status = statusOf(rec.Issues)
	}

	b.records = records
	b.state = StatePreviewed
	return nil
}

// edit updates a single field of a single record, then re-runs
// normalization and validation for that record only. Sibling records are
// never touched and the stored duplicate verdict is not refreshed.
func (b *Batch) edit(rowIndex int, field Field, value string) (Record, error) {
	rec, err := b.record(rowIndex, "edit")
	if err != nil {
		return Record{}, err
	}

	applyField(&rec.Student, field, value, b.opts)
	rec.Issues = validateRecord(&rec.Student, rec.RowIndex, &b.seq, b.opts)
	rec.Status = statusOf(rec.Issues)
	return *rec, nil
}

// setContractDelivered is the operator's manual override of the
// auto-detected contract flag. It carries no validation rules, so the
// record's issues and status are left alone.
func (b *Batch) setContractDelivered(rowIndex int, delivered bool) (Record, error) {
	rec, err := b.record(rowIndex, "update")
	if err != nil {
		return Record{}, err
	}
	rec.Student.ContractDelivered = delivered
	return *rec, nil
}

func (b *Batch) record(rowIndex int, op string) (*Record, error) {
	if b.state != StatePreviewed {
		return nil, &StateError{Op: op, State: b.state}
	}
	i := rowIndex - headerRowIndex - 1
	if i < 0 || i >= len(b.records) {
		return nil, fmt.Errorf("row %d out of range", rowIndex)
	}
	return b.records[i], nil
}

// batchSummary derives the preview counts. Placeholder count is computed
// from the records, so it stays correct when an operator types a real CPF
// over a synthesized one.
func (b *Batch) batchSummary() BatchSummary {
	s := BatchSummary{Total: len(b.records)}
	for _, rec := range b.records {
		switch rec.Status {
		case StatusValid:
			s.Valid++
		case StatusWarning:
			s.Warning++
		case StatusError:
			s.Error++
		}
		if IsPlaceholderCPF(rec.Student.CPF) {
			s.PlaceholderCPFs++
		}
	}
	return s
}

// eligibleRecords returns the commit candidates in row order.
func (b *Batch) eligibleRecords() []*Record {
	var out []*Record
	for _, rec := range b.records {
		if rec.Status.Eligible() {
			out = append(out, rec)
		}
	}
	return out
}

func (b *Batch) view() BatchView {
	v := BatchView{
		ID:            b.ID,
		State:         b.state,
		Mode:          b.Mode,
		CreatedAt:     b.CreatedAt,
		Headers:       b.headers,
		Mapping:       b.mapping,
		MissingFields: b.missing,
		TotalRows:     len(b.rows),
	}
	if b.state == StatePreviewed {
		s := b.batchSummary()
		v.Summary = &s
		v.Records = make([]Record, len(b.records))
		for i, rec := range b.records {
			v.Records[i] = *rec
		}
	}
	return v
}

func hasIssue(issues []Issue, field Field) bool {
	for _, is := range issues {
		if is.Field == field {
			return true
		}
	}
	return false
}
