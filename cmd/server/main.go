package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"arguepulse/config"
	"arguepulse/controllers"
	"arguepulse/db"
	"arguepulse/internal/ratelimit"
	"arguepulse/internal/tallyfeed"
	"arguepulse/routes"
	"arguepulse/services"
	"arguepulse/utils"
	"arguepulse/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := "./config/config.prod.yml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	mongoClient, database, err := db.ConnectMongoDB(ctx, cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	log.Println("Connected to MongoDB")

	store := db.NewStatementStore(database)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}
	if cfg.SeedOnStart {
		if _, err := utils.SeedStatements(ctx, store); err != nil {
			log.Printf("Failed to seed statements: %v", err)
		}
	}

	var generator services.Generator
	if cfg.Gemini.ApiKey != "" {
		gemini, err := services.NewGeminiGenerator(ctx, cfg.Gemini.ApiKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		defer gemini.Close()
		generator = gemini
	} else {
		log.Println("Gemini API key not set, statements will be stored without quiz or summary")
	}

	hub := websocket.NewTallyHub()

	var limiter services.VoteLimiter
	var publisher services.TallyPublisher = hub
	if cfg.Redis.Addr != "" {
		rdb, err := ratelimit.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("Redis unavailable, vote rate limiting and tally relay disabled: %v", err)
		} else {
			defer rdb.Close()
			limiter = ratelimit.NewVoteLimiter(rdb, ratelimit.Config{
				MaxVotes: cfg.VoteLimit.MaxVotes,
				Window:   cfg.VoteLimit.Window,
			})

			relay := tallyfeed.NewRelay(rdb, hub)
			relayCtx, stopRelay := context.WithCancel(ctx)
			defer stopRelay()
			go relay.Run(relayCtx)
			publisher = relay
		}
	}

	var topics services.TopicSource = services.NewCuratedTopicSource()
	if cfg.NewsAPI.ApiKey != "" {
		topics = &services.FallbackTopicSource{
			Primary:  services.NewNewsTopicSource(cfg.NewsAPI.ApiKey, cfg.NewsAPI.BaseURL),
			Fallback: topics,
		}
	}

	statementService := services.NewStatementService(store, generator)
	voteService := services.NewVoteService(store, limiter, publisher)
	controller := controllers.NewStatementController(statementService, voteService, topics, hub)

	router := setupRouter(cfg, controller)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, controller *controllers.StatementController) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupStatementRoutes(router, controller)
	routes.SetupAdminRoutes(router, controller)

	return router
}
