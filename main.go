package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/components/mysql"
	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/notify"
	"github.com/reusedev/draw-mcp/internal/modules/record"
	"github.com/reusedev/draw-mcp/internal/modules/session"
	"github.com/reusedev/draw-mcp/internal/modules/storage/ali"
	"github.com/reusedev/draw-mcp/internal/modules/storage/local"
	"github.com/reusedev/draw-mcp/internal/service/http"
	"github.com/reusedev/draw-mcp/internal/service/http/handler"
	"github.com/reusedev/draw-mcp/internal/service/mcpserver"
	"github.com/reusedev/draw-mcp/internal/service/stdio"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "config.yml", "config file path")
}

func main() {
	flag.Parse()
	godotenv.Load()
	config.Init(configPath)
	logs.InitLogger()
	cfg := config.GConfig

	imageDir, err := local.EnsureDir(cfg.ImageSaveDir)
	if err != nil {
		logs.Logger.Fatal().Err(err).Msg("image save dir unavailable")
	}

	manager, err := mcpserver.BuildProviders(cfg)
	if err != nil {
		logs.Logger.Fatal().Err(err).Msg("provider initialization failed")
	}
	if len(manager.AvailableNames()) == 0 {
		logs.Logger.Warn().Msg("no provider configured, generate_image will fail until reload_config")
	}

	if cfg.MySQLEnabled() {
		if err = mysql.InitMySQL(cfg.MySQL); err != nil {
			logs.Logger.Warn().Err(err).Msg("mysql unavailable, generation history disabled")
		}
	}
	if cfg.OssEnabled() {
		if err = ali.InitOSS(cfg.AliOss); err != nil {
			logs.Logger.Warn().Err(err).Msg("oss unavailable, uploads disabled")
		}
	}

	records := record.NewStore()
	hub := notify.NewHub()
	sessions := session.NewManager(
		time.Duration(cfg.SessionTimeout)*time.Second,
		time.Duration(cfg.SessionCleanupInterval)*time.Second,
		hub.CloseSession,
	)
	core := mcpserver.NewCore(manager, records, hub, imageDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-osSignal
		cancel()
	}()
	go sessions.Run(ctx)

	switch consts.Transport(cfg.Transport) {
	case consts.TransportStdio:
		err = stdio.Serve(ctx, core)
	default:
		err = http.Serve(ctx, handler.New(core, sessions, hub), imageDir)
	}
	if err != nil && err != context.Canceled {
		logs.Logger.Fatal().Err(err).Msg("server exited")
	}
}
