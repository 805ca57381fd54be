package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/speaksharp/speaksharp/config"
	"github.com/speaksharp/speaksharp/internal/api/handlers"
	"github.com/speaksharp/speaksharp/internal/api/middleware"
	"github.com/speaksharp/speaksharp/internal/api/routes"
	"github.com/speaksharp/speaksharp/internal/assessment"
	"github.com/speaksharp/speaksharp/internal/audio"
	"github.com/speaksharp/speaksharp/internal/cache"
	"github.com/speaksharp/speaksharp/internal/logger"
	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/providers/assess"
	"github.com/speaksharp/speaksharp/internal/providers/llm"
	"github.com/speaksharp/speaksharp/internal/providers/stt"
	mongorepo "github.com/speaksharp/speaksharp/internal/repositories/mongo"
	pgrepo "github.com/speaksharp/speaksharp/internal/repositories/postgres"
	"github.com/speaksharp/speaksharp/internal/services"
	"github.com/speaksharp/speaksharp/internal/storage"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()
	ctx := context.Background()

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	fmt.Println("MongoDB connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	fmt.Println("PostgreSQL connected")

	if err := config.MigratePostgres(
		&models.Unit{}, &models.Skill{}, &models.Lesson{}, &models.Exercise{},
		&models.Attempt{}, &models.SessionSummary{}, &models.Subscription{},
	); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	if err := pgrepo.SeedLearningPath(ctx, config.PostgresDB); err != nil {
		log.Fatalf("learning path seed error: %v", err)
	}

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	fmt.Println("Redis connected")

	// Repositories
	mongoDB := config.MongoClient.Database(config.MongoDBName())
	sessionRepo := mongorepo.NewSessionRepo(mongoDB)
	contentRepo := pgrepo.NewContentRepo(config.PostgresDB)
	subscriptionRepo := pgrepo.NewSubscriptionRepo(config.PostgresDB)
	attemptRepo := pgrepo.NewAttemptRepo(config.PostgresDB)
	kv := cache.NewRedisCache(config.RedisClient)

	// Assessment vendor: Azure when configured, deterministic stand-in
	// otherwise so local development works without credentials.
	var assessor assess.Provider = assess.Mock{}
	if key := os.Getenv("AZURE_SPEECH_KEY"); key != "" {
		az, err := assess.NewAzureSpeech(key, os.Getenv("AZURE_SPEECH_REGION"), os.Getenv("AZURE_SPEECH_LANGUAGE"))
		if err != nil {
			log.Fatalf("Azure Speech init error: %v", err)
		}
		assessor = az
		fmt.Println("Azure Speech configured")
	} else {
		l.Warn("AZURE_SPEECH_KEY not set, using mock assessment provider")
	}
	defer assessor.Close()

	// Optional collaborators
	var recognizer stt.Provider
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		gs, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.Fatalf("Google Speech init error: %v", err)
		}
		recognizer = gs
		defer gs.Close()
	}

	var summarizerLLM llm.Provider
	if project := os.Getenv("VERTEX_PROJECT_ID"); project != "" {
		vg, err := llm.NewVertexGemini(ctx, project, os.Getenv("VERTEX_LOCATION"), os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
		summarizerLLM = vg
		defer vg.Close()
	}

	var archive storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSArchive(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		archive = gcs
		defer gcs.Close()
	}

	// Services
	assessmentSvc := services.NewAssessmentService(
		audio.NewChainTranscoder(), assessor, assessment.NewNormalizer(),
		recognizer, archive, attemptRepo, l,
	)
	progressSvc := services.NewProgressService(kv)
	contentSvc := services.NewContentService(contentRepo, subscriptionRepo, progressSvc)
	sessionSvc := services.NewSessionService(
		sessionRepo, assessmentSvc, assessment.NewSummarizer(summarizerLLM), attemptRepo, l,
	)

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Score:            handlers.NewScoreHandler(assessmentSvc),
		Session:          handlers.NewSessionHandler(sessionSvc, contentSvc, progressSvc),
		Content:          handlers.NewContentHandler(contentSvc),
		Progress:         handlers.NewProgressHandler(progressSvc, contentSvc),
		WS:               handlers.NewWSHandler(sessionSvc),
		VendorConfigured: assessor.Configured(),
		Entitlements:     contentSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
