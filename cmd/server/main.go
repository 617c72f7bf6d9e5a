package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/app"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/config"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/transport/rest"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New(os.Stderr, "error").Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	log.Infof("started")

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	wsHub := ws.NewHub(log)
	defer wsHub.Close()
	log.Infof("WebSocket hub started")

	// wsHub implements service.Broadcaster
	a.EventsService.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:     a.AuthService,
		AdaptiveService: a.AdaptiveService,
		HeatmapService:  a.HeatmapService,
		EventsService:   a.EventsService,
		Questions:       a.QuestionRepo,
		WSHub:           wsHub,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on :%s", cfg.HTTPPort)
		log.Infof("Endpoints:")
		log.Infof("  GET  /v1/heatmap/{sessionId}[/summary|/cells|/export/{csv,markdown,html}]")
		log.Infof("  GET  /v1/heatmap/{sessionId}/drilldown/{dimensionKey}/{severityBucket}")
		log.Infof("  GET  /v1/heatmap/{sessionId}/priority-gaps | /action-plan")
		log.Infof("  GET  /v1/heatmap/compare/{sessionId}/{baselineSessionId}")
		log.Infof("  DEL  /v1/heatmap/{sessionId}/cache")
		log.Infof("  POST /v1/questionnaires/{questionnaireId}/visible-questions")
		log.Infof("  GET  /v1/questionnaires/{questionnaireId}/dependency-graph")
		log.Infof("  POST /v1/questions/{questionId}/next | /state")
		log.Infof("  GET  /v1/questions/{questionId}/rules")
		log.Infof("  POST /v1/sessions/{sessionId}/adaptive-changes")
		log.Infof("  WS   /v1/ws/sessions/{sessionId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("ListenAndServe: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Infof("Server exited")
}
