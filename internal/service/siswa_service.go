package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-siswa-web/internal/models"
	appErrors "github.com/noah-isme/sma-siswa-web/pkg/errors"
)

// User facing messages.
const (
	MsgNamaTerdaftar     = "Namamu Sudah Terdaftar!"
	MsgNISNTerdaftar     = "NISN Sudah Terdaftar!"
	MsgNIKTerdaftar      = "NIK Sudah Terdaftar!"
	MsgNISNEditTerdaftar = "Nama Sudah Terdaftar!"

	MsgSiswaNotFound = "Siswa tidak ditemukan"
	MsgSaveFailed    = "Terjadi kesalahan saat menyimpan data."
	MsgServerError   = "Terjadi kesalahan pada server"
)

const siswaCacheKey = "siswa:list"

var duplicateMessages = map[models.SiswaField]string{
	models.FieldNama: MsgNamaTerdaftar,
	models.FieldNISN: MsgNISNTerdaftar,
	models.FieldNIK:  MsgNIKTerdaftar,
}

var fieldLabels = map[string]string{
	"nama":      "Nama",
	"nisn":      "NISN",
	"nik":       "NIK",
	"tingkat":   "Tingkat",
	"rombel":    "Rombel",
	"tgl_masuk": "Tanggal masuk",
	"terdaftar": "Status terdaftar",
}

type siswaRepository interface {
	FindAll(ctx context.Context) ([]models.Siswa, error)
	FindOne(ctx context.Context, field models.SiswaField, value string) (*models.Siswa, error)
	Insert(ctx context.Context, s *models.Siswa) error
	UpdateByNISN(ctx context.Context, nisn string, upd models.SiswaUpdate) error
	DeleteByNISN(ctx context.Context, nisn string) error
}

// SiswaService handles student use-cases.
type SiswaService struct {
	repo      siswaRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiswaService constructs the student service. cache and metrics may be nil.
func NewSiswaService(repo siswaRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SiswaService {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(formTagName)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiswaService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// List returns every student. The result is served from cache when enabled.
func (s *SiswaService) List(ctx context.Context) ([]models.Siswa, error) {
	siswa, _, err := Remember(ctx, s.cache, siswaCacheKey, s.findAll)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgServerError)
	}
	return siswa, nil
}

func (s *SiswaService) findAll(ctx context.Context) ([]models.Siswa, error) {
	start := time.Now()
	siswa, err := s.repo.FindAll(ctx)
	s.metrics.ObserveStore("find_all", err, time.Since(start))
	return siswa, err
}

// GetByNISN loads a single student for the edit form.
func (s *SiswaService) GetByNISN(ctx context.Context, nisn string) (*models.Siswa, error) {
	siswa, err := s.findOne(ctx, models.FieldNISN, nisn)
	if err != nil {
		if errors.Is(err, models.ErrSiswaNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, MsgSiswaNotFound)
		}
		s.logger.Error("load siswa failed", zap.String("nisn", nisn), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgServerError)
	}
	return siswa, nil
}

func (s *SiswaService) findOne(ctx context.Context, field models.SiswaField, value string) (*models.Siswa, error) {
	start := time.Now()
	siswa, err := s.repo.FindOne(ctx, field, value)
	if errors.Is(err, models.ErrSiswaNotFound) {
		s.metrics.ObserveStore("find_one", nil, time.Since(start))
	} else {
		s.metrics.ObserveStore("find_one", err, time.Since(start))
	}
	return siswa, err
}

// taken reports whether a record already holds value in field.
func (s *SiswaService) taken(ctx context.Context, field models.SiswaField, value string) (bool, error) {
	_, err := s.findOne(ctx, field, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrSiswaNotFound):
		return false, nil
	default:
		return false, err
	}
}

type uniqueCheck struct {
	field models.SiswaField
	value string
}

// Create validates and stores a new student. Field problems come back as
// appErrors.ValidationErrors in nama, nisn, nik order.
func (s *SiswaService) Create(ctx context.Context, form models.SiswaForm) (*models.Siswa, error) {
	if verrs := s.validate(form); len(verrs) > 0 {
		s.metrics.RecordWrite("create", "invalid")
		return nil, verrs
	}

	checks := []uniqueCheck{
		{field: models.FieldNama, value: form.Nama},
		{field: models.FieldNISN, value: form.NISN},
		{field: models.FieldNIK, value: form.NIK},
	}
	dup := make([]bool, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chk := range checks {
		i, chk := i, chk
		g.Go(func() error {
			taken, err := s.taken(gctx, chk.field, chk.value)
			dup[i] = taken
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.RecordWrite("create", "error")
		s.logger.Error("uniqueness check failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgSaveFailed)
	}

	var verrs appErrors.ValidationErrors
	for i, chk := range checks {
		if dup[i] {
			verrs = append(verrs, appErrors.FieldError{Field: string(chk.field), Value: chk.value, Msg: duplicateMessages[chk.field]})
		}
	}
	if len(verrs) > 0 {
		s.metrics.RecordWrite("create", "invalid")
		return nil, verrs
	}

	masuk, _ := form.EnrollmentDate()
	siswa := &models.Siswa{
		Nama:      form.Nama,
		NISN:      form.NISN,
		NIK:       form.NIK,
		Tingkat:   form.Tingkat,
		Rombel:    form.Rombel,
		TglMasuk:  masuk,
		Terdaftar: form.Terdaftar,
	}

	start := time.Now()
	err := s.repo.Insert(ctx, siswa)
	s.metrics.ObserveStore("insert", err, time.Since(start))
	if err != nil {
		var dupErr *models.DuplicateFieldError
		if errors.As(err, &dupErr) {
			// A concurrent create won the race after our checks passed.
			s.metrics.RecordWrite("create", "invalid")
			return nil, appErrors.ValidationErrors{{Field: string(dupErr.Field), Msg: duplicateMessages[dupErr.Field]}}
		}
		s.metrics.RecordWrite("create", "error")
		s.logger.Error("insert siswa failed", zap.String("nisn", form.NISN), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgSaveFailed)
	}

	s.cache.Invalidate(ctx, "siswa:*")
	s.metrics.RecordWrite("create", "ok")
	return siswa, nil
}

// Update changes tingkat, rombel, tgl_masuk and terdaftar of the record
// matched by form.NISN. The nisn is only checked for collisions when it
// differs from form.OldNISN. nama and nik are never written.
func (s *SiswaService) Update(ctx context.Context, form models.SiswaForm) error {
	if verrs := s.validate(form, "NISN", "Tingkat", "Rombel", "TglMasuk", "Terdaftar"); len(verrs) > 0 {
		s.metrics.RecordWrite("update", "invalid")
		return verrs
	}

	if form.NISN != form.OldNISN {
		taken, err := s.taken(ctx, models.FieldNISN, form.NISN)
		if err != nil {
			s.metrics.RecordWrite("update", "error")
			s.logger.Error("nisn check failed", zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgServerError)
		}
		if taken {
			s.metrics.RecordWrite("update", "invalid")
			return appErrors.ValidationErrors{{Field: string(models.FieldNISN), Value: form.NISN, Msg: MsgNISNEditTerdaftar}}
		}
	}

	masuk, _ := form.EnrollmentDate()
	upd := models.SiswaUpdate{
		Tingkat:   form.Tingkat,
		Rombel:    form.Rombel,
		TglMasuk:  masuk,
		Terdaftar: form.Terdaftar,
	}

	start := time.Now()
	err := s.repo.UpdateByNISN(ctx, form.NISN, upd)
	s.metrics.ObserveStore("update", err, time.Since(start))
	if err != nil {
		s.metrics.RecordWrite("update", "error")
		s.logger.Error("update siswa failed", zap.String("nisn", form.NISN), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgServerError)
	}

	s.cache.Invalidate(ctx, "siswa:*")
	s.metrics.RecordWrite("update", "ok")
	return nil
}

// Delete removes the record matched by nisn. Unknown nisn values are a no-op.
func (s *SiswaService) Delete(ctx context.Context, nisn string) error {
	start := time.Now()
	err := s.repo.DeleteByNISN(ctx, nisn)
	s.metrics.ObserveStore("delete", err, time.Since(start))
	if err != nil {
		s.metrics.RecordWrite("delete", "error")
		s.logger.Error("delete siswa failed", zap.String("nisn", nisn), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgServerError)
	}

	s.cache.Invalidate(ctx, "siswa:*")
	s.metrics.RecordWrite("delete", "ok")
	return nil
}

// validate runs struct tag rules, restricted to fields when given.
func (s *SiswaService) validate(form models.SiswaForm, fields ...string) appErrors.ValidationErrors {
	var err error
	if len(fields) > 0 {
		err = s.validator.StructPartial(form, fields...)
	} else {
		err = s.validator.Struct(form)
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	verrs := make(appErrors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		value, _ := fe.Value().(string)
		verrs = append(verrs, appErrors.FieldError{Field: fe.Field(), Value: value, Msg: ruleMessage(fe)})
	}
	return verrs
}

func ruleMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " wajib diisi!"
	case "max":
		return label + " terlalu panjang!"
	case "datetime":
		return label + " harus berformat YYYY-MM-DD!"
	default:
		return label + " tidak valid!"
	}
}

func formTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
