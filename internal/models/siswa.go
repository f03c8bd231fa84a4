package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire and display format of tgl_masuk.
const DateLayout = "2006-01-02"

// Siswa represents a student record.
type Siswa struct {
	ID        string     `db:"id" bson:"_id,omitempty" json:"id,omitempty"`
	Nama      string     `db:"nama" bson:"nama" json:"nama"`
	NISN      string     `db:"nisn" bson:"nisn" json:"nisn"`
	NIK       string     `db:"nik" bson:"nik" json:"nik"`
	Tingkat   string     `db:"tingkat" bson:"tingkat" json:"tingkat"`
	Rombel    string     `db:"rombel" bson:"rombel" json:"rombel"`
	TglMasuk  *time.Time `db:"tgl_masuk" bson:"tgl_masuk,omitempty" json:"tgl_masuk,omitempty"`
	Terdaftar string     `db:"terdaftar" bson:"terdaftar" json:"terdaftar"`
	CreatedAt time.Time  `db:"created_at" bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" bson:"updated_at" json:"updated_at"`
}

// TanggalMasuk formats the enrollment date as YYYY-MM-DD, or "" when unset.
func (s Siswa) TanggalMasuk() string {
	if s.TglMasuk == nil || s.TglMasuk.IsZero() {
		return ""
	}
	return s.TglMasuk.UTC().Format(DateLayout)
}

// Form converts the record into the edit form representation.
func (s Siswa) Form() SiswaForm {
	return SiswaForm{
		Nama:      s.Nama,
		NISN:      s.NISN,
		NIK:       s.NIK,
		Tingkat:   s.Tingkat,
		Rombel:    s.Rombel,
		TglMasuk:  s.TanggalMasuk(),
		Terdaftar: s.Terdaftar,
		OldNISN:   s.NISN,
	}
}

// SiswaForm is the URL-encoded payload of the add and edit forms.
type SiswaForm struct {
	Nama      string `form:"nama" json:"nama" validate:"required,max=150"`
	NISN      string `form:"nisn" json:"nisn" validate:"required,max=20"`
	NIK       string `form:"nik" json:"nik" validate:"required,max=20"`
	Tingkat   string `form:"tingkat" json:"tingkat" validate:"max=20"`
	Rombel    string `form:"rombel" json:"rombel" validate:"max=50"`
	TglMasuk  string `form:"tgl_masuk" json:"tgl_masuk" validate:"omitempty,datetime=2006-01-02"`
	Terdaftar string `form:"terdaftar" json:"terdaftar" validate:"max=20"`
	OldNISN   string `form:"oldNisn" json:"oldNisn"`
}

// EnrollmentDate parses TglMasuk, returning nil for an empty value.
func (f SiswaForm) EnrollmentDate() (*time.Time, error) {
	if f.TglMasuk == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, f.TglMasuk, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SiswaUpdate carries the fields the edit flow is allowed to change.
type SiswaUpdate struct {
	Tingkat   string     `db:"tingkat" bson:"tingkat"`
	Rombel    string     `db:"rombel" bson:"rombel"`
	TglMasuk  *time.Time `db:"tgl_masuk" bson:"tgl_masuk"`
	Terdaftar string     `db:"terdaftar" bson:"terdaftar"`
}

// SiswaField names a lookup column. Only these fields may be queried by value.
type SiswaField string

const (
	FieldNama SiswaField = "nama"
	FieldNISN SiswaField = "nisn"
	FieldNIK  SiswaField = "nik"
)

// Valid reports whether f is a known lookup field.
func (f SiswaField) Valid() bool {
	switch f {
	case FieldNama, FieldNISN, FieldNIK:
		return true
	}
	return false
}

// ErrSiswaNotFound is returned by stores when no record matches a lookup.
var ErrSiswaNotFound = errors.New("siswa not found")

// DuplicateFieldError reports a unique constraint violation on Field.
type DuplicateFieldError struct {
	Field SiswaField
	Err   error
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate %s: %v", e.Field, e.Err)
}

func (e *DuplicateFieldError) Unwrap() error { return e.Err }
