package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"

	config "github.com/tokenpulse/community-api/configs"
	"github.com/tokenpulse/community-api/internal/api/handlers"
	"github.com/tokenpulse/community-api/internal/curation"
	"github.com/tokenpulse/community-api/internal/curation/providers"
	"github.com/tokenpulse/community-api/internal/database"
	job "github.com/tokenpulse/community-api/internal/jobs"
	"github.com/tokenpulse/community-api/internal/queue"
	"github.com/tokenpulse/community-api/internal/repository"
	"github.com/tokenpulse/community-api/internal/service"
	"github.com/tokenpulse/community-api/internal/twitter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	if len(cfg.TwitterBearerTokens) == 0 {
		log.Fatal("TWITTER_BEARER_TOKENS must be set")
	}
	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY must be set")
	}

	db, err := database.Connect(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	interval, err := time.ParseDuration(cfg.CurationInterval)
	if err != nil {
		log.Fatalf("Invalid CURATION_INTERVAL: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	batchRepo := repository.NewBatchRepository(db)

	pool := twitter.NewCredentialPool(cfg.TwitterBearerTokens, cfg.TwitterMonthlyCap)
	searchClient := twitter.NewClient(pool)

	provider := providers.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	engine := curation.NewEngine(provider, cfg.CommunityTopic)

	archiveService := service.NewArchiveService(*cfg)
	feedService := service.NewFeedService(batchRepo)

	curationJob := job.NewCurationJob(*cfg, searchClient, engine, batchRepo, archiveService)

	community := handlers.NewCommunityHandler(feedService, curationJob)
	app.Get("/community/batches", community.GetBatches)
	app.Get("/community/batches/cursor", community.GetCursor)
	app.Get("/community/tweets/:batch_id", community.GetBatchTweets)
	app.Post("/community/refresh", community.Refresh)

	queueW := queue.NewQueue(curationJob)

	c := cron.New()
	c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if err := queue.EnqueueCycle(client, interval); err != nil {
			log.Printf("Failed to enqueue curation cycle: %v", err)
		}
	})
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 1,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeCurationCycle, queueW.HandleCurationCycleTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
