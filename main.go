package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/product-catalog/modules/api"
	"github.com/example/product-catalog/modules/auth"
	"github.com/example/product-catalog/modules/product"
	"github.com/example/product-catalog/modules/webhook"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Product Catalog API ===")

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database Driver: %s", cfg.Database.Driver)
	log.Printf("Webhook Timeout: %s", cfg.Webhook.Timeout)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	productModule := product.NewModule(cfg.Database, app.Logger())
	webhookModule := webhook.NewModule(cfg.Webhook, app.Logger())
	authModule := auth.NewModule(cfg.Auth, app.Logger())
	apiModule := api.NewModule(cfg.HTTPPort, app.Logger())

	// Wire up dependencies
	apiModule.SetProductModule(productModule)
	apiModule.SetWebhookModule(webhookModule)
	apiModule.SetAuthModule(authModule)

	// Registration order is start order: the API starts last.
	app.Register(productModule)
	app.Register(webhookModule)
	app.Register(authModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.HTTPPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d", port)
	log.Println("Endpoints:")
	log.Println("  GET    /up                            - Liveness check")
	log.Println("  GET    /health                        - Module health")
	log.Println("  GET    /api/products                  - List products")
	log.Println("  GET    /api/products/:id              - Show a product")
	log.Println("  POST   /api/products                  - Create a product (auth)")
	log.Println("  PUT    /api/products/:id              - Update a product (auth)")
	log.Println("  DELETE /api/products/:id              - Soft-delete a product (auth)")
	log.Println("  DELETE /api/products/:id/force        - Permanently delete a product (auth)")
	log.Println("  PATCH  /api/products/:id/restore      - Restore a soft-deleted product (auth)")
	log.Println("  POST   /api/webhook/trigger           - Trigger the webhook workflow")
	log.Println("")
	log.Println("Request-reply services: services.product.get, services.product.list")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
