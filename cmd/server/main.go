package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livecast-orchestrator/internal/api"
	"livecast-orchestrator/internal/broadcast"
	"livecast-orchestrator/internal/orchestrate"
	"livecast-orchestrator/internal/platform/config"
	"livecast-orchestrator/internal/platform/logger"
	"livecast-orchestrator/internal/platform/metrics"
	"livecast-orchestrator/internal/platform/web"
	"livecast-orchestrator/internal/relay"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "5000")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	allowedOrigins := config.GetEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"})

	log := logger.New(logLevel, logFormat)

	relayCfg := relay.Config{
		Region:              config.GetEnv("AGORA_REGION", ""),
		AppID:               config.GetEnv("AGORA_APP_ID", ""),
		CustomerKey:         config.GetEnv("AGORA_CUSTOMER_ID", ""),
		CustomerSecret:      config.GetEnv("AGORA_CUSTOMER_SECRET", ""),
		Channel:             config.GetEnv("AGORA_CHANNEL", "queenlive"),
		HostUID:             config.GetEnvInt("AGORA_HOST_UID", 201),
		CoHostUID:           config.GetEnvInt("AGORA_COHOST_UID", 202),
		PlaceholderImageURL: config.GetEnv("PLACEHOLDER_IMAGE_URL", ""),
	}

	broadcastCfg := broadcast.Config{
		ClientID:     config.GetEnv("CLIENT_ID", ""),
		ClientSecret: config.GetEnv("CLIENT_SECRET", ""),
		RefreshToken: config.GetEnv("REFRESH_TOKEN", ""),
		Title:        config.GetEnv("BROADCAST_TITLE", "Live Stream via API"),
		Description:  config.GetEnv("BROADCAST_DESCRIPTION", "Live stream automated via the platform API"),
		LeadTime:     config.GetEnvDuration("BROADCAST_LEAD_TIME", broadcast.DefaultLeadTime),
	}

	relayCtrl := relay.NewController(relayCfg, log)
	provisioner := broadcast.NewProvisioner(broadcastCfg, log)
	orch := orchestrate.New(provisioner, relayCtrl, orchestrate.NewRealClock(), log)
	met := metrics.New()
	h := api.NewHandler(relayCtrl, orch, log, met)

	r := chi.NewRouter()
	r.Use(web.RequestIDMiddleware)
	r.Use(web.CORSMiddleware(allowedOrigins))
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		met.Handler().ServeHTTP(w, req)
	})
	r.Get("/healthz", h.Healthz)
	r.Post("/start-rtmp", h.StartRTMP)
	r.Post("/stop-rtmp", h.StopRTMP)
	r.Post("/orchestrate/start-youtube-stream", h.StartYouTubeStream)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"channel", relayCfg.Channel,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
