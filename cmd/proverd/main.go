// ==============================================================================
// PROVER SERVICE - cmd/proverd/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"umbra/internal/prover"
	"umbra/pkg/config"
	"umbra/pkg/logger"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	log := logger.NewWithWriter("umbra-proverd", os.Stdout, cfg.Log.Level)

	// a prover service forwarding to another one is a misconfiguration
	if cfg.Prover.Backend == prover.BackendRemote {
		log.Fatal("PROVER_BACKEND=remote is not valid for the prover service", nil)
	}

	gateway, err := prover.New(cfg.Prover, log)
	if err != nil {
		log.Fatal("Failed to initialize prover", map[string]interface{}{
			"backend": cfg.Prover.Backend,
			"error":   err.Error(),
		})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := prover.NewHandler(prover.Instrument(gateway, prover.NewMetrics(reg)), log)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Prover service started", map[string]interface{}{
			"address": srv.Addr,
			"backend": cfg.Prover.Backend,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down prover service...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Prover service forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Prover service stopped gracefully", nil)
}
