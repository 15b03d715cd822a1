package bootstrap

import (
	"context"
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"doc-chat-be/internal/config"
	"doc-chat-be/internal/controller"
	"doc-chat-be/internal/handler"
	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/pkg/mailer"
	redisrepo "doc-chat-be/internal/repository/redis"
	"doc-chat-be/internal/repository/unitofwork"
	"doc-chat-be/internal/service"
	"doc-chat-be/internal/websocket"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/llm/factory"
	pkgNats "doc-chat-be/pkg/nats"
	"doc-chat-be/pkg/rag/history"
	"doc-chat-be/pkg/rag/pipeline"
	"doc-chat-be/pkg/rag/prompt"
	"doc-chat-be/pkg/rag/retriever"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	SearchController   controller.ISearchController

	// WebSocket
	ChatWsHandler *handler.ChatWsHandler
	Registry      *websocket.Registry

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService service.INotificationService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.BaseURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIBaseURL, cfg.Ai.OpenAIApiKey, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Ai.OpenAIApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	historyStore := redisrepo.NewHistoryStore(rdb)

	// 5. Session Registry
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	registry := websocket.NewRegistry(wsLogger)

	// 6. RAG pipeline
	fragmentRetriever := retriever.NewRetriever(uowFactory)
	promptBuilder := prompt.NewBuilder(cfg.Chat.Persona, cfg.Chat.Tone)
	answerController := pipeline.NewController(
		promptBuilder,
		llmProvider,
		cfg.Chat.MaxAttempts,
		log.New(os.Stdout, "[pipeline] ", log.LstdFlags),
	)
	compactor := history.NewCompactor(history.NewHeuristicEstimator(), cfg.Chat.HistoryTokenCap)

	// 7. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.EmbedTopic)
	consumerService := service.NewConsumerService(pubSub, cfg.Ai.EmbedTopic, uowFactory, embeddingProvider)

	authService := service.NewAuthService(uowFactory, natsPub)
	documentService := service.NewDocumentService(uowFactory, publisherService, cfg.App.UploadDir)
	searchService := service.NewSearchService(uowFactory, embeddingProvider, llmProvider)
	chatService := service.NewChatService(
		historyStore,
		embeddingProvider,
		fragmentRetriever,
		answerController,
		compactor,
		registry,
		cfg.Chat.TopK,
		sysLogger,
	)

	// Inbound websocket chat runs through the same turn pipeline.
	registry.SetInboundHandler(chatService.HandleInbound)
	go registry.Run()

	var notificationService service.INotificationService
	if natsSub != nil {
		notificationService = service.NewNotificationService(natsSub, emailService, sysLogger)
	}

	// 8. Controllers
	return &Container{
		AuthController:      controller.NewAuthController(authService),
		ChatController:      controller.NewChatController(chatService),
		DocumentController:  controller.NewDocumentController(documentService),
		SearchController:    controller.NewSearchController(searchService),
		ChatWsHandler:       handler.NewChatWsHandler(registry, wsLogger),
		Registry:            registry,
		ConsumerService:     consumerService,
		NotificationService: notificationService,
		Logger:              sysLogger,
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.OpenAIBaseURL
}
