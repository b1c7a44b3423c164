package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommittedBatchTTL is how long a committed batch's summary stays
// retrievable before the batch is dropped.
var CommittedBatchTTL = time.Hour

// MaxRows caps a single batch. The pipeline is an in-memory design for
// operator-sized spreadsheets, not an ETL system.
var MaxRows = 5000

// Service owns the active batches and drives them through the pipeline
// states. Batches are process-local; restarting the service discards them.
type Service struct {
	store    Store
	notifier Notifier
	dup      *DuplicateChecker
	defaults Options

	mu      sync.RWMutex
	batches map[string]*Batch
}

// NewService creates a Service. notifier may be nil when no summary sink
// is configured.
func NewService(store Store, notifier Notifier, defaults Options) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		dup:      NewDuplicateChecker(store),
		defaults: defaults,
		batches:  make(map[string]*Batch),
	}
}

// CreateBatch starts a new batch from parsed headers and rows. Column
// auto-detection runs immediately; overrides, when supplied, take
// precedence per field. The returned view reports whether mapping is
// complete or which required fields still need the operator.
func (s *Service) CreateBatch(headers []string, rows [][]string, mode Mode, overrides FieldMapping) (BatchView, error) {
	if len(headers) == 0 {
		return BatchView{}, fmt.Errorf("file has no header row")
	}
	if len(rows) == 0 {
		return BatchView{}, fmt.Errorf("no data rows after header")
	}
	if len(rows) > MaxRows {
		return BatchView{}, fmt.Errorf("file has %d rows, limit is %d", len(rows), MaxRows)
	}

	opts := s.defaults
	opts.Mode = mode

	b := newBatch(uuid.New().String(), headers, rows, opts)
	if len(overrides) > 0 {
		// Overrides may legitimately leave required fields unmapped; the
		// operator fixes that through SetMapping before previewing.
		if err := b.applyMapping(overrides); err != nil {
			if _, incomplete := err.(*MappingIncompleteError); !incomplete {
				return BatchView{}, err
			}
		}
	}

	s.mu.Lock()
	s.batches[b.ID] = b
	s.mu.Unlock()

	slog.Info("batch created", "batch", b.ID, "mode", mode, "rows", len(rows))
	return s.snapshot(b), nil
}

// Batch returns the current view of a batch.
func (s *Service) Batch(id string) (BatchView, error) {
	b, err := s.get(id)
	if err != nil {
		return BatchView{}, err
	}
	return s.snapshot(b), nil
}

// SetMapping applies operator mapping overrides.
func (s *Service) SetMapping(id string, overrides FieldMapping) (BatchView, error) {
	b, err := s.get(id)
	if err != nil {
		return BatchView{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.applyMapping(overrides); err != nil {
		if _, incomplete := err.(*MappingIncompleteError); !incomplete {
			return BatchView{}, err
		}
	}
	return b.view(), nil
}

// Preview generates (or regenerates) the editable preview, including the
// duplicate cross-check against the store.
func (s *Service) Preview(ctx context.Context, id string) (BatchView, error) {
	b, err := s.get(id)
	if err != nil {
		return BatchView{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.generatePreview(ctx, s.dup); err != nil {
		return BatchView{}, err
	}
	return b.view(), nil
}

// EditCell updates one field of one previewed record and re-validates that
// record only.
func (s *Service) EditCell(id string, rowIndex int, field Field, value string) (Record, error) {
	b, err := s.get(id)
	if err != nil {
		return Record{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.edit(rowIndex, field, value)
}

// SetContractDelivered manually overrides the contract flag for one record.
func (s *Service) SetContractDelivered(id string, rowIndex int, delivered bool) (Record, error) {
	b, err := s.get(id)
	if err != nil {
		return Record{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setContractDelivered(rowIndex, delivered)
}

// Commit persists the batch's eligible records. The preview records are
// destroyed on completion; the summary stays retrievable for
// CommittedBatchTTL. Commit is not re-enterable: a second call returns the
// stored summary's state error.
func (s *Service) Commit(ctx context.Context, id string) (*CommitSummary, error) {
	b, err := s.get(id)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.state != StatePreviewed {
		state := b.state
		b.mu.Unlock()
		return nil, &StateError{Op: "commit", State: state}
	}
	b.state = StateCommitting
	b.mu.Unlock()

	// The loop runs outside the batch mutex; the Committing state keeps
	// every other operation (including a second commit) out.
	summary, commitErr := b.commit(ctx, s.store)

	b.mu.Lock()
	b.state = StateCommitted
	b.summary = summary
	b.records = nil
	b.rows = nil
	b.mu.Unlock()

	if s.notifier != nil {
		s.notifier.BatchCommitted(ctx, *summary)
	}

	time.AfterFunc(CommittedBatchTTL, func() { _ = s.Discard(id) })

	if commitErr != nil {
		return summary, fmt.Errorf("commit interrupted: %w", commitErr)
	}
	return summary, nil
}

// Summary returns the commit summary of a committed batch.
func (s *Service) Summary(id string) (*CommitSummary, error) {
	b, err := s.get(id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateCommitted || b.summary == nil {
		return nil, &StateError{Op: "summarize", State: b.state}
	}
	return b.summary, nil
}

// Discard drops a batch and everything it holds. A batch mid-commit cannot
// be discarded; the operator waits for the summary.
func (s *Service) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return ErrBatchNotFound
	}
	b.mu.Lock()
	committing := b.state == StateCommitting
	b.mu.Unlock()
	if committing {
		return &StateError{Op: "discard", State: StateCommitting}
	}
	delete(s.batches, id)
	return nil
}

func (s *Service) get(id string) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return b, nil
}

func (s *Service) snapshot(b *Batch) BatchView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view()
}
