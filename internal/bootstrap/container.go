package bootstrap

import (
	"context"
	"log"

	"secure-docchat-be/internal/config"
	"secure-docchat-be/internal/controller"
	"secure-docchat-be/internal/handler"
	"secure-docchat-be/internal/pkg/logger"
	"secure-docchat-be/internal/repository/memory"
	"secure-docchat-be/internal/repository/unitofwork"
	"secure-docchat-be/internal/service"
	"secure-docchat-be/internal/websocket"
	"secure-docchat-be/pkg/chat/pipeline"
	"secure-docchat-be/pkg/embedding"
	embeddingJina "secure-docchat-be/pkg/embedding/jina"
	"secure-docchat-be/pkg/llm/factory"
	rerankJina "secure-docchat-be/pkg/rerank/jina"
	"secure-docchat-be/pkg/retrieval"
	"secure-docchat-be/pkg/safety"
	"secure-docchat-be/pkg/safety/azure"

	pkgNats "secure-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// indexTopic is the in-process queue carrying document indexing jobs.
const indexTopic = "INDEX_DOCUMENT"

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = embeddingJina.NewProvider(cfg.Ai.JinaKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	llmBaseURL := cfg.Ai.LLMBaseURL
	if llmBaseURL == "" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Safety Gate. Missing credentials are not fatal here: the gate
	// fails closed and main.go already warned the operator.
	safetyClient := azure.NewClient(cfg.ContentSafety.Endpoint, cfg.ContentSafety.Key)
	gate := safety.NewGate(safetyClient, cfg.ContentSafety.Thresholds(), log.Default())

	// 5. Retrieval stack: recall from the active collection, then rerank
	searcher := service.NewActiveCollectionSearcher(uowFactory)
	reranker := rerankJina.NewProvider(cfg.Ai.JinaKey)
	retriever := retrieval.NewRetriever(
		embeddingProvider,
		searcher,
		reranker,
		retrieval.Config{KRecall: cfg.Retrieval.KRecall, KFinal: cfg.Retrieval.KFinal},
		log.Default(),
	)

	// 6. Session storage
	sessionRepo := memory.NewSessionRepository()

	// 7. Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 8. Services
	publisherService := service.NewPublisherService(pubSub, indexTopic)
	indexerService := service.NewIndexerService(
		pubSub,
		indexTopic,
		uowFactory,
		embeddingProvider,
		sessionRepo,
		natsPub,
	)

	pipelineCfg := pipeline.Config{
		WindowSize:     cfg.Chat.WindowSize,
		ViolationLimit: cfg.Chat.ViolationLimit,
	}
	executor := pipeline.NewExecutor(gate, retriever, llmProvider, pipelineCfg, log.Default())

	chatService := service.NewChatService(sessionRepo, executor, pipelineCfg, natsPub)
	documentService := service.NewDocumentService(uowFactory, publisherService, cfg.Upload.Dir)

	notifService := service.NewNotificationService(natsSub, wsHub, sysLogger) // Hub implements NotificationDelivery
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 9. Controllers
	return &Container{
		ChatController:      controller.NewChatController(chatService),
		DocumentController:  controller.NewDocumentController(documentService),
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		IndexerService: indexerService,
	}
}
