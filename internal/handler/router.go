package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahooo22/HannaWhishlist/internal/handler/api"
	"github.com/bahooo22/HannaWhishlist/internal/handler/middleware"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, giftHandler *api.GiftHandler, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, giftHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, giftHandler *api.GiftHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		gifts := apiGroup.Group("/gifts")
		gifts.Use(authMiddleware.RequireAuth())
		{
			addRoutes(gifts, []route{
				{Method: http.MethodGet, Path: "", Handler: giftHandler.List},
				{Method: http.MethodGet, Path: "/paged", Handler: giftHandler.Paged},
				{Method: http.MethodGet, Path: "/:id", Handler: giftHandler.Get},
				{Method: http.MethodPost, Path: "", Handler: giftHandler.Create},
				{Method: http.MethodPut, Path: "/:id", Handler: giftHandler.Update},
				{Method: http.MethodDelete, Path: "/:id", Handler: giftHandler.Delete},
				{Method: http.MethodPost, Path: "/:id/reserve", Handler: giftHandler.Reserve},
				{Method: http.MethodPost, Path: "/:id/unreserve", Handler: giftHandler.Unreserve},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
