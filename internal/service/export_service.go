package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-siswa-web/internal/models"
	appErrors "github.com/noah-isme/sma-siswa-web/pkg/errors"
	"github.com/noah-isme/sma-siswa-web/pkg/export"
)

var siswaExportHeaders = []string{"nama", "nisn", "nik", "tingkat", "rombel", "tgl_masuk", "terdaftar"}

type siswaLister interface {
	List(ctx context.Context) ([]models.Siswa, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered listing ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the student listing as a downloadable file.
type ExportService struct {
	siswa  siswaLister
	csv    datasetRenderer
	pdf    datasetRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the package defaults.
func NewExportService(siswa siswaLister, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{siswa: siswa, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders every student in the requested format ("csv" or "pdf").
func (s *ExportService) Export(ctx context.Context, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Format export tidak didukung")
	}

	siswa, err := s.siswa.List(ctx)
	if err != nil {
		return nil, err
	}

	dataset := buildSiswaDataset(siswa)
	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = s.pdf.Render(dataset)
	default:
		body, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.logger.Error("render export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, MsgServerError)
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("data-siswa-%s.%s", s.now().Format("20060102-150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func buildSiswaDataset(siswa []models.Siswa) export.Dataset {
	rows := make([]map[string]string, 0, len(siswa))
	for _, item := range siswa {
		rows = append(rows, map[string]string{
			"nama":      item.Nama,
			"nisn":      item.NISN,
			"nik":       item.NIK,
			"tingkat":   item.Tingkat,
			"rombel":    item.Rombel,
			"tgl_masuk": item.TanggalMasuk(),
			"terdaftar": item.Terdaftar,
		})
	}
	return export.Dataset{Title: "Data Siswa", Headers: siswaExportHeaders, Rows: rows}
}
