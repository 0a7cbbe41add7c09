package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rms-sync-service/internal/config"
	"rms-sync-service/internal/db"
	"rms-sync-service/internal/engine"
	httpapi "rms-sync-service/internal/http"
	"rms-sync-service/internal/http/handlers"
	"rms-sync-service/internal/logger"
	"rms-sync-service/internal/payment"
	"rms-sync-service/internal/persist"
	"rms-sync-service/internal/queue"
	"rms-sync-service/internal/textgen"
	"rms-sync-service/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	var adapter persist.Adapter
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()

		adapter, err = persist.NewPostgres(ctx, pool, cfg.SnapshotSlot)
		if err != nil {
			log.Fatal("snapshot table setup failed", zap.Error(err))
		}
		log.Info("snapshot persistence: postgres", zap.String("slot", cfg.SnapshotSlot))
	} else {
		adapter = persist.NewFile(cfg.SnapshotFile)
		log.Info("snapshot persistence: file", zap.String("path", cfg.SnapshotFile))
	}

	eng, err := engine.New(ctx, adapter, log, engine.Options{
		TickInterval:       cfg.DeliveryTickInterval,
		StepFraction:       cfg.DeliveryStepFraction,
		IngredientLowStock: cfg.IngredientLowStock,
		MenuLowStock:       int(cfg.MenuLowStock),
	})
	if err != nil {
		log.Fatal("engine startup failed", zap.Error(err))
	}
	defer eng.Close()

	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := queue.EnsureOrderEventsTopology(qc, engine.EventsExchange); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq topology failed", zap.Error(err))
				}
				log.Warn("rabbitmq topology failed; continuing without events", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}
		if qc != nil {
			defer qc.Close()
			eng.SetEventPublisher(qc)
			log.Info("order events enabled", zap.String("exchange", engine.EventsExchange))

			if cfg.RabbitMQWorkerMode == "daemon" {
				go func() {
					err := qc.ConsumeWithRetry(queue.OrderEventsQueue, queue.LogOrderEvent(log), 5, 5*time.Second)
					if err != nil {
						log.Error("order event consumer stopped", zap.Error(err))
					}
				}()
			}
		}
	} else {
		log.Info("order events disabled (RABBITMQ_URL is empty)")
	}

	wsServer := ws.New(eng, log, cfg.JWTSecret, time.Duration(cfg.JWTExpirySeconds)*time.Second)
	eng.SetBroadcaster(wsServer)

	h := &handlers.Handler{
		Engine:   eng,
		Logger:   log,
		TextGen:  textgen.Template{},
		Payments: payment.AlwaysApprove{},
	}
	if cfg.TextGenBaseURL != "" {
		h.TextGen = textgen.NewHTTPGenerator(cfg.TextGenBaseURL, cfg.TextGenAPIKey)
	}
	if cfg.PaymentBaseURL != "" {
		h.Payments = payment.NewHTTPAuthorizer(cfg.PaymentBaseURL, cfg.PaymentAPIKey)
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, log, cfg, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("sync service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
