package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-siswa-web/api/swagger"
	"github.com/noah-isme/sma-siswa-web/internal/handler"
	"github.com/noah-isme/sma-siswa-web/internal/middleware"
	"github.com/noah-isme/sma-siswa-web/internal/service"
	"github.com/noah-isme/sma-siswa-web/internal/web"
	"github.com/noah-isme/sma-siswa-web/pkg/config"
	"github.com/noah-isme/sma-siswa-web/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-siswa-web/pkg/middleware/cors"
	"github.com/noah-isme/sma-siswa-web/pkg/middleware/methodoverride"
	reqidmiddleware "github.com/noah-isme/sma-siswa-web/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler mounted by New.
type Handlers struct {
	Auth     *handler.AuthHandler
	Pages    *handler.PageHandler
	Siswa    *handler.SiswaHandler
	SiswaAPI *handler.SiswaAPIHandler
	Metrics  *handler.MetricsHandler
}

// Options carries the shared infrastructure the router needs.
type Options struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *service.MetricsService
	Renderer     *web.Renderer
	SessionStore sessions.Store
}

// New builds the gin engine with every route registered. The returned
// handler applies method override ahead of routing.
func New(opts Options, h Handlers) http.Handler {
	cfg := opts.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HTMLRender = opts.Renderer
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(middleware.Metrics(opts.Metrics))

	r.StaticFS("/static", web.Static())
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	pages := r.Group("/")
	pages.Use(middleware.Sessions(cfg.Session.Name, opts.SessionStore))
	{
		pages.GET("/", h.Auth.LoginPage)
		pages.POST("/login", h.Auth.Login)
		pages.GET("/logout", h.Auth.Logout)
		pages.GET("/home", middleware.RequireLogin(), h.Pages.Home)
		pages.GET("/about", h.Pages.About)

		pages.GET("/dataSiswa", h.Siswa.List)
		pages.GET("/dataSiswa/add", h.Siswa.AddForm)
		pages.GET("/dataSiswa/export", h.Siswa.Export)
		pages.GET("/dataSiswa/edit/:nisn", h.Siswa.EditForm)
		pages.POST("/dataSiswa", h.Siswa.Create)
		pages.PUT("/dataSiswa", h.Siswa.Update)
		pages.DELETE("/dataSiswa", h.Siswa.Delete)
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	{
		api.GET("/siswa", h.SiswaAPI.List)
		api.GET("/siswa/:nisn", h.SiswaAPI.Get)
		// Preflight is answered by the CORS middleware.
		api.OPTIONS("/siswa", func(*gin.Context) {})
		api.OPTIONS("/siswa/:nisn", func(*gin.Context) {})
	}

	return methodoverride.Wrap(r)
}
