package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-siswa-web/internal/middleware"
	"github.com/noah-isme/sma-siswa-web/internal/models"
	"github.com/noah-isme/sma-siswa-web/internal/service"
	"github.com/noah-isme/sma-siswa-web/internal/web"
	appErrors "github.com/noah-isme/sma-siswa-web/pkg/errors"
	"github.com/noah-isme/sma-siswa-web/pkg/response"
)

// Flash messages shown on the listing after a successful write.
const (
	MsgCreated = "Data Contact Berhasil Ditambahkan!"
	MsgUpdated = "Selamat! Data Siswa Berhasil Diubah!"
	MsgDeleted = "Data Siswa Berhasil Dihapus!"
)

type siswaService interface {
	List(ctx context.Context) ([]models.Siswa, error)
	GetByNISN(ctx context.Context, nisn string) (*models.Siswa, error)
	Create(ctx context.Context, form models.SiswaForm) (*models.Siswa, error)
	Update(ctx context.Context, form models.SiswaForm) error
	Delete(ctx context.Context, nisn string) error
}

type exportService interface {
	Export(ctx context.Context, format string) (*service.ExportResult, error)
}

// SiswaHandler serves the student pages and form submissions.
type SiswaHandler struct {
	siswa   siswaService
	exports exportService
	logger  *zap.Logger
}

// NewSiswaHandler constructs SiswaHandler.
func NewSiswaHandler(siswa siswaService, exports exportService, logger *zap.Logger) *SiswaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiswaHandler{siswa: siswa, exports: exports, logger: logger}
}

// List renders every student with the pending success flash.
func (h *SiswaHandler) List(c *gin.Context) {
	siswa, err := h.siswa.List(c.Request.Context())
	if err != nil {
		response.Text(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageSiswa, web.Page{
		Title:   "Daftar Siswa",
		Active:  "siswa",
		Siswa:   siswa,
		Actions: true,
		Flash:   middleware.Flashes(c, middleware.FlashMsg),
	})
}

// AddForm renders the empty create form.
func (h *SiswaHandler) AddForm(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageAddSiswa, web.Page{
		Title:  "Form Mendaftarkan Siswa",
		Active: "siswa",
	})
}

// Create stores a new student. Field errors re-render the add form without
// the submitted values.
func (h *SiswaHandler) Create(c *gin.Context) {
	var form models.SiswaForm
	_ = c.ShouldBind(&form)

	if _, err := h.siswa.Create(c.Request.Context(), form); err != nil {
		if verrs, ok := appErrors.AsValidation(err); ok {
			c.HTML(http.StatusOK, web.PageAddSiswa, web.Page{
				Title:  "Form Tambah Data Contact",
				Active: "siswa",
				Errors: verrs,
			})
			return
		}
		response.Text(c, err)
		return
	}

	h.flash(c, MsgCreated)
	response.Redirect(c, "/dataSiswa")
}

// EditForm renders the edit form for the student matched by :nisn.
func (h *SiswaHandler) EditForm(c *gin.Context) {
	siswa, err := h.siswa.GetByNISN(c.Request.Context(), c.Param("nisn"))
	if err != nil {
		response.Text(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageEditSiswa, web.Page{
		Title:  "Edit Data",
		Active: "siswa",
		Form:   siswa.Form(),
	})
}

// Update applies the edit form. Field errors re-render the form with the
// submitted values.
func (h *SiswaHandler) Update(c *gin.Context) {
	var form models.SiswaForm
	_ = c.ShouldBind(&form)

	if err := h.siswa.Update(c.Request.Context(), form); err != nil {
		if verrs, ok := appErrors.AsValidation(err); ok {
			c.HTML(http.StatusOK, web.PageEditSiswa, web.Page{
				Title:  "Mengubah Data Contact",
				Active: "siswa",
				Errors: verrs,
				Form:   form,
			})
			return
		}
		response.Text(c, err)
		return
	}

	h.flash(c, MsgUpdated)
	response.Redirect(c, "/dataSiswa")
}

// Delete removes the student whose nisn is posted in the form body.
func (h *SiswaHandler) Delete(c *gin.Context) {
	if err := h.siswa.Delete(c.Request.Context(), c.PostForm("nisn")); err != nil {
		response.Text(c, err)
		return
	}

	h.flash(c, MsgDeleted)
	response.Redirect(c, "/dataSiswa")
}

// Export streams the listing as CSV or PDF depending on ?format.
func (h *SiswaHandler) Export(c *gin.Context) {
	result, err := h.exports.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Text(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}

func (h *SiswaHandler) flash(c *gin.Context, msg string) {
	if err := middleware.AddFlash(c, middleware.FlashMsg, msg); err != nil {
		h.logger.Warn("save flash failed", zap.Error(err))
	}
}
