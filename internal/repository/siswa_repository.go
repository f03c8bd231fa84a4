package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-siswa-web/internal/models"
)

const siswaColumns = "id, nama, nisn, nik, tingkat, rombel, tgl_masuk, terdaftar, created_at, updated_at"

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var constraintFields = map[string]models.SiswaField{
	"siswa_nama_key": models.FieldNama,
	"siswa_nisn_key": models.FieldNISN,
	"siswa_nik_key":  models.FieldNIK,
}

// SiswaRepository manages persistence for student records in PostgreSQL.
type SiswaRepository struct {
	db *sqlx.DB
}

// NewSiswaRepository constructs a SiswaRepository.
func NewSiswaRepository(db *sqlx.DB) *SiswaRepository {
	return &SiswaRepository{db: db}
}

// FindAll returns every student ordered by insertion.
func (r *SiswaRepository) FindAll(ctx context.Context) ([]models.Siswa, error) {
	query := fmt.Sprintf("SELECT %s FROM siswa ORDER BY created_at ASC", siswaColumns)
	siswa := []models.Siswa{}
	if err := r.db.SelectContext(ctx, &siswa, query); err != nil {
		return nil, fmt.Errorf("list siswa: %w", err)
	}
	return siswa, nil
}

// FindOne returns the first student whose field equals value.
func (r *SiswaRepository) FindOne(ctx context.Context, field models.SiswaField, value string) (*models.Siswa, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("find siswa: unsupported field %q", field)
	}
	query := fmt.Sprintf("SELECT %s FROM siswa WHERE %s = $1 LIMIT 1", siswaColumns, field)
	var s models.Siswa
	if err := r.db.GetContext(ctx, &s, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrSiswaNotFound
		}
		return nil, fmt.Errorf("find siswa by %s: %w", field, err)
	}
	return &s, nil
}

// Insert stores a new student record.
func (r *SiswaRepository) Insert(ctx context.Context, s *models.Siswa) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	const query = `INSERT INTO siswa (id, nama, nisn, nik, tingkat, rombel, tgl_masuk, terdaftar, created_at, updated_at)
        VALUES (:id, :nama, :nisn, :nik, :tingkat, :rombel, :tgl_masuk, :terdaftar, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("insert siswa: %w", mapUniqueViolation(err))
	}
	return nil
}

// UpdateByNISN sets the mutable fields of the record matched by nisn. A
// missing record is not an error.
func (r *SiswaRepository) UpdateByNISN(ctx context.Context, nisn string, upd models.SiswaUpdate) error {
	const query = `UPDATE siswa SET tingkat = $2, rombel = $3, tgl_masuk = $4, terdaftar = $5, updated_at = $6 WHERE nisn = $1`
	if _, err := r.db.ExecContext(ctx, query, nisn, upd.Tingkat, upd.Rombel, upd.TglMasuk, upd.Terdaftar, time.Now().UTC()); err != nil {
		return fmt.Errorf("update siswa: %w", err)
	}
	return nil
}

// DeleteByNISN removes the record matched by nisn, if any.
func (r *SiswaRepository) DeleteByNISN(ctx context.Context, nisn string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM siswa WHERE nisn = $1`, nisn); err != nil {
		return fmt.Errorf("delete siswa: %w", err)
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return err
	}
	if field, ok := constraintFields[pqErr.Constraint]; ok {
		return &models.DuplicateFieldError{Field: field, Err: err}
	}
	return err
}
