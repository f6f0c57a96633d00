package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"farm-assistant/internal/chat"
	"farm-assistant/internal/config"
	"farm-assistant/internal/httpapi"
	"farm-assistant/internal/llm"
	"farm-assistant/internal/pumplog"
	"farm-assistant/internal/scheduler"
	"farm-assistant/internal/telemetry"
	"farm-assistant/internal/transcript"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	llmClient, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider))
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	store, err := transcript.NewFileStore(cfg.HistoryFilePath)
	if err != nil {
		log.Fatalf("failed to init history store: %v", err)
	}

	dataset, closer, err := newDataset(cfg)
	if err != nil {
		log.Fatalf("failed to init dataset: %v", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Printf("failed to close dataset: %v", err)
		}
	}()

	device := telemetry.New(cfg.ESPAddress, cfg.ESPTimeout)
	if device.Address() == "" {
		log.Println("⚠️ ESP_IP not configured, chat will run without live telemetry")
	}
	pumpLogger := pumplog.NewLogger(device, dataset)

	svc := chat.NewService(store, device, llm.NewPrompter(llmClient))
	handler := httpapi.NewHandler(svc, pumpLogger)

	var sched *scheduler.Scheduler
	if cfg.TelemetryPollSchedule != "" {
		sched = scheduler.New(pumplog.IST)
		sched.SetJob(func(ctx context.Context) error {
			_, err := pumpLogger.Refresh(ctx)
			return err
		})
		if err := sched.Start(cfg.TelemetryPollSchedule); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // model replies can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌾 Farm assistant listening on %s (provider %s)", cfg.HTTPAddr, cfg.LLMProvider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if sched != nil {
		sched.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newDataset(cfg *config.Config) (pumplog.Dataset, io.Closer, error) {
	switch cfg.DatasetDriver {
	case config.DatasetSQLite:
		ds, err := pumplog.NewSQLiteDataset(cfg.DatasetDBPath)
		if err != nil {
			return nil, nil, err
		}
		return ds, ds, nil
	default:
		ds, err := pumplog.NewCSVDataset(cfg.DatasetFilePath)
		if err != nil {
			return nil, nil, err
		}
		return ds, nopCloser{}, nil
	}
}
