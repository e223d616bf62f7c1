package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"exam-engine/internal/cache"
	"exam-engine/internal/db"
	"exam-engine/internal/event"
	"exam-engine/internal/handlers"
	"exam-engine/internal/normalize"
	"exam-engine/internal/offline"
	"exam-engine/internal/repository"
	"exam-engine/internal/service"
	"exam-engine/internal/upstream"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	apiURL := os.Getenv("QUESTION_API_URL")
	if apiURL == "" {
		log.Fatal("QUESTION_API_URL is required")
	}
	apiRoot := os.Getenv("QUESTION_API_ROOT")
	if apiRoot == "" {
		apiRoot = strings.TrimSuffix(apiURL, "/api")
	}

	// Question cache: Redis when configured, in-memory otherwise
	var store cache.Store
	redisURI := os.Getenv("REDIS_URI")
	if redisURI != "" {
		redisStore, err := cache.NewRedisStore(context.Background(), redisURI)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Println("REDIS_URI not set, question cache is in-memory only")
		store = cache.NewMemoryStore()
	}

	// Result archive: optional, sessions still run without Mongo
	var resultRepo *repository.ResultRepository
	var correctionRepo *repository.CorrectionRepository
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI != "" {
		db.InitMongo(mongoURI)
		database := db.Client.Database("exam_engine")
		resultRepo = repository.NewResultRepository(database)
		correctionRepo = repository.NewCorrectionRepository(database)
	} else {
		log.Println("MONGO_URI not set, results will not be archived")
	}

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.EventPublisher
	if rabbitURL != "" && eventExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, engine events will not be published")
	}

	source := upstream.NewClient(apiURL, os.Getenv("QUESTION_API_TOKEN"))
	normalizer := normalize.New(apiRoot)
	syncer := offline.NewSyncer(source, store)

	var eventSink event.Publisher
	if publisher != nil {
		eventSink = publisher
	}

	quizService := service.NewQuizService(source, store, normalizer, eventSink, resultRepo, correctionRepo)
	subjectService := service.NewSubjectService(source, store)

	sessionHandler := handlers.NewSessionHandler(quizService)
	resultHandler := handlers.NewResultHandler(quizService)
	subjectHandler := handlers.NewSubjectHandler(subjectService)
	syncHandler := handlers.NewSyncHandler(syncer, eventSink)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID", "X-Premium"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	publicExam := r.Group("/public/exam")
	{
		publicExam.GET("/subjects", subjectHandler.ListSubjects)
		publicExam.GET("/user/:id/results", resultHandler.GetUserResults)
	}

	protectedSync := r.Group("/protected/exam/sync")
	{
		protectedSync.POST("/", syncHandler.StartSync)
		protectedSync.GET("/status", syncHandler.SyncStatus)
	}

	setupSessionRoutes(r, sessionHandler, resultHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "6660"
	}
	r.Run(":" + port)
}

func setupSessionRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler, resultHandler *handlers.ResultHandler) {
	protectedSession := r.Group("/protected/exam/session")
	{
		// === CORE SESSION MANAGEMENT ===
		protectedSession.POST("/", sessionHandler.CreateSession)
		protectedSession.GET("/:id", sessionHandler.GetSession)
		protectedSession.DELETE("/:id", sessionHandler.Abandon)

		// === QUIZ INTERACTION ===
		protectedSession.POST("/:id/answer", sessionHandler.Answer)
		protectedSession.POST("/:id/advance", sessionHandler.Advance)
		protectedSession.POST("/:id/back", sessionHandler.Back)
		protectedSession.POST("/:id/subject", sessionHandler.JumpToSubject)
		protectedSession.POST("/:id/reveal", sessionHandler.ToggleReveal)

		// === SESSION CONTROL ===
		protectedSession.POST("/:id/submit", sessionHandler.Submit)
		protectedSession.GET("/:id/result", resultHandler.GetResult)
		protectedSession.GET("/:id/corrections", resultHandler.GetCorrections)
	}
}
