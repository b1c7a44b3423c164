package importer

// commit.go persists a previewed batch. The loop is deliberately
// sequential and row-ordered: it bounds load on the store and keeps the
// summary's ordering aligned with the source file so failures read as
// "row 7 failed: ...". There is no cross-record or cross-step transaction;
// a record whose enrollment fails stays committed.

import (
	"context"
	"log/slog"
	"strings"
)

// commit runs the batch commit loop. It is called with the batch already
// moved to Committing by the Service. The returned error is only ever a
// context error from the cooperative cancellation check between records;
// per-record persistence failures are captured in the summary.
func (b *Batch) commit(ctx context.Context, store Store) (*CommitSummary, error) {
	start := b.opts.now()
	summary := &CommitSummary{BatchID: b.ID}
	logger := slog.With("batch", b.ID)

	for _, rec := range b.eligibleRecords() {
		if err := ctx.Err(); err != nil {
			logger.Warn("commit cancelled", "attempted", summary.Attempted)
			summary.Duration = b.opts.now().Sub(start)
			return summary, err
		}

		outcome := CommitOutcome{
			RowIndex:       rec.RowIndex,
			Name:           rec.Student.Name,
			PlaceholderCPF: IsPlaceholderCPF(rec.Student.CPF),
		}
		summary.Attempted++

		id, err := store.InsertStudent(ctx, rec.Student)
		if err != nil {
			outcome.Error = err.Error()
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, outcome)
			logger.Warn("insert failed", "row", rec.RowIndex, "error", err)
			continue
		}

		outcome.Success = true
		outcome.StudentID = id
		summary.Succeeded++

		if rec.Student.Group != "" {
			b.enroll(ctx, store, id, rec.Student.Group, &outcome, logger)
		}

		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	summary.Duration = b.opts.now().Sub(start)
	logger.Info("batch committed",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}

// enroll resolves the record's free-text group reference and links the
// committed student to it. Resolution misses and enrollment failures
// degrade to a logged notice on the outcome; they never fail the record.
func (b *Batch) enroll(ctx context.Context, store Store, studentID, groupRef string, outcome *CommitOutcome, logger *slog.Logger) {
	group, ok := resolveGroup(ctx, store, groupRef)
	if !ok {
		logger.Info("group not found, enrollment skipped", "student", studentID, "group", groupRef)
		return
	}
	outcome.Group = group.Name

	if err := store.InsertEnrollment(ctx, studentID, group.ID, b.opts.now()); err != nil {
		outcome.EnrollmentError = err.Error()
		logger.Warn("enrollment failed, student stays committed",
			"student", studentID, "group", group.Name, "error", err)
		return
	}
	outcome.Enrolled = true
}

// resolveGroup matches a free-text reference against the known group
// collection by case-insensitive substring; the store returns candidates
// in its own order and the first one wins. This tie-break is a stated
// rule, not an iteration accident.
func resolveGroup(ctx context.Context, store Store, ref string) (Group, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Group{}, false
	}
	groups, err := store.SearchGroups(ctx, ref)
	if err != nil {
		slog.Warn("group lookup failed", "group", ref, "error", err)
		return Group{}, false
	}
	if len(groups) == 0 {
		return Group{}, false
	}
	return groups[0], true
}
