package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-siswa-web/internal/models"
	"github.com/noah-isme/sma-siswa-web/pkg/response"
)

type siswaReader interface {
	List(ctx context.Context) ([]models.Siswa, error)
	GetByNISN(ctx context.Context, nisn string) (*models.Siswa, error)
}

// SiswaAPIHandler exposes the read-only JSON view of the student records.
type SiswaAPIHandler struct {
	siswa siswaReader
}

// NewSiswaAPIHandler constructs SiswaAPIHandler.
func NewSiswaAPIHandler(siswa siswaReader) *SiswaAPIHandler {
	return &SiswaAPIHandler{siswa: siswa}
}

// List godoc
// @Summary List students
// @Tags Siswa
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /siswa [get]
func (h *SiswaAPIHandler) List(c *gin.Context) {
	siswa, err := h.siswa.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, siswa, map[string]interface{}{"total": len(siswa)})
}

// Get godoc
// @Summary Get student by NISN
// @Tags Siswa
// @Produce json
// @Param nisn path string true "Student NISN"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /siswa/{nisn} [get]
func (h *SiswaAPIHandler) Get(c *gin.Context) {
	siswa, err := h.siswa.GetByNISN(c.Request.Context(), c.Param("nisn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, siswa)
}
