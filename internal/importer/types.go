// Package importer provides the business logic for the student import and
// reconciliation pipeline. This package has no UI dependencies and consumes
// only parsed headers + rows; file formats and HTTP live elsewhere.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode selects the validation severity profile for a batch.
// Strict treats missing required fields as blocking errors; Permissive
// downgrades most of them to warnings with auto-generated defaults.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModePermissive Mode = "permissive"
)

// ParseMode converts a user-supplied string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeStrict):
		return ModeStrict, nil
	case string(ModePermissive), "flexible":
		return ModePermissive, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", s)
	}
}

// Field identifies a canonical record attribute, independent of the
// source file's column naming.
type Field string

const (
	FieldName              Field = "name"
	FieldCPF               Field = "cpf"
	FieldBirthDate         Field = "birth_date"
	FieldPhone             Field = "phone"
	FieldEmail             Field = "email"
	FieldStreet            Field = "street"
	FieldDistrict          Field = "district"
	FieldCity              Field = "city"
	FieldPostalCode        Field = "postal_code"
	FieldGuardianName      Field = "guardian_name"
	FieldGuardianCPF       Field = "guardian_cpf"
	FieldGuardianPhone     Field = "guardian_phone"
	FieldGroup             Field = "group"
	FieldContractDelivered Field = "contract_delivered"
	FieldNotes             Field = "notes"
)

// StudentRecord is a normalized student row. All text fields are trimmed;
// an empty string means the value is absent from the source data.
// BirthDate is ISO (YYYY-MM-DD) once normalization succeeds; otherwise it
// carries the original text so the validator can report it.
type StudentRecord struct {
	Name              string `json:"name"`
	CPF               string `json:"cpf"`
	BirthDate         string `json:"birthDate"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Street            string `json:"street"`
	District          string `json:"district"`
	City              string `json:"city"`
	State             string `json:"state"`
	PostalCode        string `json:"postalCode"`
	GuardianName      string `json:"guardianName"`
	GuardianCPF       string `json:"guardianCPF"`
	GuardianPhone     string `json:"guardianPhone"`
	Group             string `json:"group"`
	ContractDelivered bool   `json:"contractDelivered"`
	Notes             string `json:"notes"`
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single field-level validation finding attached to a record.
type Issue struct {
	Field    Field    `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// RowStatus is derived from a record's issue list: Error if any issue is an
// error, Warning if any issue is a warning, Valid otherwise. Records with
// Error status are never submitted to the committer.
type RowStatus string

const (
	StatusValid   RowStatus = "valid"
	StatusWarning RowStatus = "warning"
	StatusError   RowStatus = "error"
)

func statusOf(issues []Issue) RowStatus {
	status := StatusValid
	for _, is := range issues {
		if is.Severity == SeverityError {
			return StatusError
		}
		status = StatusWarning
	}
	return status
}

// Eligible reports whether a record with this status may be committed.
func (s RowStatus) Eligible() bool {
	return s == StatusValid || s == StatusWarning
}

// Record pairs one source row with its normalized student and validation
// result. RowIndex is the 1-based row number in the source file (the header
// is row 1, so the first data row is 2), used for operator-facing messages.
type Record struct {
	RowIndex int           `json:"rowIndex"`
	Student  StudentRecord `json:"student"`
	Issues   []Issue       `json:"issues"`
	Status   RowStatus     `json:"status"`
}

// BatchState tracks a batch through its lifecycle. No transition skips a
// state, and Committing is never re-entered once Committed.
type BatchState string

const (
	StateUploaded   BatchState = "uploaded"
	StateMapped     BatchState = "mapped"
	StatePreviewed  BatchState = "previewed"
	StateCommitting BatchState = "committing"
	StateCommitted  BatchState = "committed"
)

// BatchSummary holds the derived counts for a previewed batch.
type BatchSummary struct {
	Total           int `json:"total"`
	Valid           int `json:"valid"`
	Warning         int `json:"warning"`
	Error           int `json:"error"`
	PlaceholderCPFs int `json:"placeholderCPFs"`
}

// CommitOutcome records the result of persisting one record.
type CommitOutcome struct {
	RowIndex        int    `json:"rowIndex"`
	Name            string `json:"name"`
	Success         bool   `json:"success"`
	StudentID       string `json:"studentId,omitempty"`
	Error           string `json:"error,omitempty"`
	PlaceholderCPF  bool   `json:"placeholderCPF,omitempty"`
	Group           string `json:"group,omitempty"`
	Enrolled        bool   `json:"enrolled,omitempty"`
	EnrollmentError string `json:"enrollmentError,omitempty"`
}

// CommitSummary aggregates a batch commit. Attempted always equals the
// number of eligible (Valid or Warning) records submitted, and
// Succeeded + Failed == Attempted.
type CommitSummary struct {
	BatchID   string          `json:"batchId"`
	Attempted int             `json:"attempted"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Outcomes  []CommitOutcome `json:"outcomes"`
	Duration  time.Duration   `json:"-"`
}

// Group is a class group known to the persistence store.
type Group struct {
	ID   string
	Name string
	Code string
}

// Store is the persistence collaborator. All calls may fail; the pipeline
// treats them as network calls.
type Store interface {
	// InsertStudent persists a record and returns its new ID.
	InsertStudent(ctx context.Context, rec StudentRecord) (string, error)
	// FindStudentIDByCPF returns the ID of an existing student with the
	// given CPF, or "" if none exists.
	FindStudentIDByCPF(ctx context.Context, cpf string) (string, error)
	// SearchGroups returns groups whose name contains the given text,
	// case-insensitively, in store order.
	SearchGroups(ctx context.Context, text string) ([]Group, error)
	// InsertEnrollment links a committed student to a group.
	InsertEnrollment(ctx context.Context, studentID, groupID string, enrolledAt time.Time) error
}

// Notifier receives the commit summary after a batch commit completes.
// Implementations must not block the commit path; delivery is best effort.
type Notifier interface {
	BatchCommitted(ctx context.Context, summary CommitSummary)
}

// Options carries the inspectable normalization and validation settings.
type Options struct {
	Mode             Mode
	DefaultCity      string
	DefaultState     string
	DefaultBirthDate string // ISO date substituted in permissive mode

	// Now is the clock used for age computation and placeholder suffixes.
	// Nil means time.Now; tests inject a fixed clock.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// ErrBatchNotFound is returned for unknown or discarded batch IDs.
var ErrBatchNotFound = errors.New("batch not found")

// StateError reports an operation attempted in the wrong batch state.
type StateError struct {
	Op    string
	State BatchState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s batch in state %q", e.Op, e.State)
}

// MappingIncompleteError blocks preview generation while required fields
// remain unmapped.
type MappingIncompleteError struct {
	Missing []Field
}

func (e *MappingIncompleteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("required fields not mapped: %s", strings.Join(names, ", "))
}
