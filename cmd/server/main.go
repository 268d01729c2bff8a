/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Portfolio Analysis Engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load thresholds (defaults, optionally overridden by YAML)
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080)
  -thresholds  Optional YAML thresholds file; absent fields keep defaults

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

EXAMPLES:
  # Run with reference thresholds
  ./server

  # Run with overridden thresholds
  ./server -thresholds=./thresholds.yaml

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  No environment variables currently. All config via flags.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Threshold loading
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/portfolio-engine/api"
	"github.com/warp/portfolio-engine/config"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	thresholdsPath := flag.String("thresholds", "", "Optional YAML thresholds file")
	flag.Parse()

	// Thresholds
	th := config.Default()
	if *thresholdsPath != "" {
		loaded, err := config.Load(*thresholdsPath)
		if err != nil {
			log.Fatalf("Failed to load thresholds: %v", err)
		}
		th = loaded
		log.Printf("Loaded thresholds from %s", *thresholdsPath)
	}

	// Initialize handler and router
	handler := api.NewHandler(th)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
