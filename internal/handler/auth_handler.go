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

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) error
}

// AuthHandler serves the login page and session transitions.
type AuthHandler struct {
	auth   authService
	logger *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth authService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, logger: logger}
}

// LoginPage renders the login form with any pending error flash.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageLogin, web.Page{
		Title: "login",
		Flash: middleware.Flashes(c, middleware.FlashError),
	})
}

// Login checks the submitted credentials. Both outcomes redirect.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	_ = c.ShouldBind(&req)
	req.IP = c.ClientIP()

	if err := h.auth.Login(c.Request.Context(), req); err != nil {
		if err := middleware.AddFlash(c, middleware.FlashError, appErrors.FromError(err).Message); err != nil {
			h.logger.Warn("save flash failed", zap.Error(err))
		}
		response.Redirect(c, "/")
		return
	}

	if err := middleware.Login(c, req.Username); err != nil {
		response.Text(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, service.MsgServerError))
		return
	}
	response.Redirect(c, "/home")
}

// Logout drops the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		h.logger.Warn("clear session failed", zap.Error(err))
	}
	response.Redirect(c, "/")
}
