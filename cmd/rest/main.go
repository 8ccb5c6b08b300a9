package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"strings"

	"secure-docchat-be/internal/bootstrap"
	"secure-docchat-be/internal/config"
	"secure-docchat-be/internal/server"
	"secure-docchat-be/internal/tracer"
	"secure-docchat-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// Without moderation credentials the safety gate fails closed and
	// every question is refused. Running like that is only useful for
	// wiring checks, so make the operator opt in.
	if cfg.ContentSafety.Endpoint == "" || cfg.ContentSafety.Key == "" {
		color.Red("CONTENT_SAFETY_ENDPOINT / CONTENT_SAFETY_KEY are not set.")
		color.Yellow("The safety gate fails closed: every chat question will be refused.")
		if !confirm("Continue anyway? [y/N]: ") {
			log.Fatal("Aborted: configure Azure Content Safety credentials and restart")
		}
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Indexer Service...")
		if err := container.IndexerService.Consume(context.Background()); err != nil {
			log.Printf("Background Indexer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}

func confirm(prompt string) bool {
	color.Cyan(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
