package main

import (
	"context"
	"log"

	"jit-learning-be/internal/bootstrap"
	"jit-learning-be/internal/config"
	"jit-learning-be/internal/server"
	"jit-learning-be/internal/tracer"
	"jit-learning-be/pkg/database"
)

func main() {
	// 0. Tracer (enabled via OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	if container.NatsPublisher != nil {
		defer container.NatsPublisher.Close()
	}

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Preload Worker...")
		if err := container.PreloadWorker.Consume(context.Background()); err != nil {
			log.Printf("Background Preload Worker Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
