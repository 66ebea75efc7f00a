// Command seed loads a sample catalog into a running catalog service through
// its REST API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThomasMo54/teaching-shop-example/pkg/httpclient"
	"github.com/ThomasMo54/teaching-shop-example/pkg/logger"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8000", "catalog service base URL")
	views := flag.Int("views", 3, "views to record per product")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logger.New("catalog-seed", *level)
	if *views < 0 {
		log.Error("views must not be negative", slog.Int("views", *views))
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 2*time.Minute)
	defer cancelTimeout()

	client := httpclient.NewBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("catalog"),
		nil, log,
	)

	sum, err := newSeeder(client, *baseURL, log).run(ctx, *views)
	if err != nil {
		log.Error("seed failed", slog.String("error", err.Error()),
			slog.Int("products", sum.Products),
			slog.Int("reviews", sum.Reviews),
		)
		if httpclient.IsCircuitOpen(err) {
			log.Error("catalog service looks down", slog.String("base_url", *baseURL))
		}
		os.Exit(1)
	}

	log.Info("seed complete",
		slog.Int("products", sum.Products),
		slog.Int("reviews", sum.Reviews),
		slog.Int("carriers", sum.Carriers),
		slog.Int("views", sum.Views),
	)
}
