package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/service/http/handler"
	"github.com/reusedev/draw-mcp/internal/service/http/middleware"
)

// Serve runs the HTTP transport until ctx is canceled, then drains open
// connections with a short grace period.
func Serve(ctx context.Context, h *handler.Handler, imageDir string) error {
	cfg := config.GConfig
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	e := gin.New()
	initRouter(e, h, imageDir)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: e,
	}
	errCh := make(chan error, 1)
	go func() {
		logs.Logger.Info().Str("addr", srv.Addr).Msg("http transport listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initRouter(e *gin.Engine, h *handler.Handler, imageDir string) {
	e.Use(gin.Recovery())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.ValidateOrigin())
	e.Use(middleware.Auth())

	e.POST(consts.MessagesPath, h.Messages)
	e.GET(consts.MessagesPath, h.Stream)
	e.DELETE(consts.MessagesPath, h.DeleteSession)
	e.GET(consts.HealthPath, h.Health)
	e.Static(consts.ImagesPath, imageDir)
}
