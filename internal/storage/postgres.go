// Package storage implements the import pipeline's persistence
// collaborator on PostgreSQL via pgx.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/escolaplus/importer/internal/importer"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// StudentStore is the pgx-backed importer.Store.
type StudentStore struct {
	db DBTX
}

func NewStudentStore(db DBTX) *StudentStore {
	return &StudentStore{db: db}
}

const insertStudentSQL = `
INSERT INTO students (
	name, cpf, birth_date, phone, email,
	street, district, city, state, postal_code,
	guardian_name, guardian_cpf, guardian_phone,
	contract_delivered, notes, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,'ACTIVE')
RETURNING id`

// InsertStudent persists one record and returns the generated ID. Optional
// text fields are stored as NULL when absent so presence checks stay
// unambiguous in reports.
func (s *StudentStore) InsertStudent(ctx context.Context, rec importer.StudentRecord) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, insertStudentSQL,
		rec.Name,
		rec.CPF,
		toDate(rec.BirthDate),
		toText(rec.Phone),
		toText(rec.Email),
		toText(rec.Street),
		toText(rec.District),
		toText(rec.City),
		toText(rec.State),
		toText(rec.PostalCode),
		toText(rec.GuardianName),
		toText(rec.GuardianCPF),
		toText(rec.GuardianPhone),
		rec.ContractDelivered,
		toText(rec.Notes),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert student: %w", err)
	}
	return id, nil
}

// FindStudentIDByCPF returns "" when no student has the CPF.
func (s *StudentStore) FindStudentIDByCPF(ctx context.Context, cpf string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM students WHERE cpf = $1 LIMIT 1`, cpf).Scan(&id)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query student by cpf: %w", err)
	}
	return id, nil
}

// SearchGroups matches group names by case-insensitive substring, in the
// collection's declared order.
func (s *StudentStore) SearchGroups(ctx context.Context, text string) ([]importer.Group, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, code FROM class_groups WHERE name ILIKE '%' || $1 || '%' ORDER BY position, name`,
		text,
	)
	if err != nil {
		return nil, fmt.Errorf("search groups: %w", err)
	}
	defer rows.Close()

	var groups []importer.Group
	for rows.Next() {
		var g importer.Group
		var code pgtype.Text
		if err := rows.Scan(&g.ID, &g.Name, &code); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.Code = code.String
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// InsertEnrollment links a student to a group with an active status.
func (s *StudentStore) InsertEnrollment(ctx context.Context, studentID, groupID string, enrolledAt time.Time) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO enrollments (student_id, group_id, status, enrolled_at) VALUES ($1, $2, 'ACTIVE', $3)`,
		studentID, groupID, enrolledAt,
	)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func toText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toDate(iso string) pgtype.Date {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}
