package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkoval/milesworth/api"
	"github.com/dkoval/milesworth/config"
	"github.com/dkoval/milesworth/internal/metrics"
	"github.com/dkoval/milesworth/internal/repository"
	"github.com/dkoval/milesworth/internal/service/recommend"
	"github.com/dkoval/milesworth/internal/web"
)

// Deps collects everything the HTTP surface needs. Popular may be nil
// when Redis is disabled.
type Deps struct {
	Recommend recommend.RecommendUseCase
	Airports  repository.AirportRepository
	Popular   api.PopularSource
}

// Run serves the web UI and JSON API, blocking until the context is
// canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	router := newRouter(cfg, deps)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, deps Deps) *gin.Engine {
	metrics.Register()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.Default())
	router.Use(metrics.HTTPMiddleware())

	router.LoadHTMLGlob(cfg.HTTP.TemplatesDir + "/*.tmpl")
	router.Static("/static", cfg.HTTP.StaticDir)

	defaults := api.QueryDefaults{
		MinLayoverMinutes: cfg.Recommend.DefaultMinLayoverMinutes,
		MaxResults:        cfg.Recommend.DefaultMaxResults,
	}

	apiGroup := router.Group("/api")
	api.NewSearchHandler(deps.Recommend, defaults).Register(apiGroup)
	api.NewExportHandler(deps.Recommend, defaults).Register(apiGroup)
	api.NewAirportsHandler(deps.Recommend, deps.Airports, defaults).Register(apiGroup)
	api.NewPopularHandler(deps.Popular, cfg.Worker.PopularRoutesLimit).Register(apiGroup)

	web.NewHandler(deps.Recommend, deps.Popular, defaults).Register(router)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
