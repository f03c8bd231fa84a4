package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-siswa-web/internal/middleware"
	"github.com/noah-isme/sma-siswa-web/internal/models"
	"github.com/noah-isme/sma-siswa-web/internal/web"
	"github.com/noah-isme/sma-siswa-web/pkg/response"
)

type siswaLister interface {
	List(ctx context.Context) ([]models.Siswa, error)
}

// PageHandler serves the dashboard and static pages.
type PageHandler struct {
	siswa siswaLister
}

// NewPageHandler constructs PageHandler.
func NewPageHandler(siswa siswaLister) *PageHandler {
	return &PageHandler{siswa: siswa}
}

// Home renders the dashboard listing for the logged in user.
func (h *PageHandler) Home(c *gin.Context) {
	siswa, err := h.siswa.List(c.Request.Context())
	if err != nil {
		response.Text(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageIndex, web.Page{
		Title:    "Home",
		Active:   "home",
		Username: middleware.CurrentUsername(c),
		Siswa:    siswa,
	})
}

// About renders the about page.
func (h *PageHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageAbout, web.Page{Title: "About me", Active: "about"})
}
