package bootstrap

import (
	"context"
	"log"

	"ai-search-be/internal/config"
	"ai-search-be/internal/controller"
	"ai-search-be/internal/handler"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/internal/repository/unitofwork"
	"ai-search-be/internal/service"
	"ai-search-be/internal/websocket"
	"ai-search-be/pkg/answer"
	"ai-search-be/pkg/cache"
	"ai-search-be/pkg/embedding"
	"ai-search-be/pkg/llm/factory"
	"ai-search-be/pkg/search"

	pktNats "ai-search-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController         controller.IChatController
	ImageController        controller.IImageController
	DiscoverController     controller.IDiscoverController
	ConversationController controller.IConversationController
	ModelController        controller.IModelController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Chat activity push
	ChatEventHandler *handler.ChatEventHandler
	WebSocketHub     *websocket.Hub

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)

	c := &Container{}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; without it events are not fanned out.
	var eventPublisher service.EventPublisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		}
	}

	// 3. Caches
	store := newCacheStore(cfg)

	// 4. Search
	searxng := search.NewSearxNG(cfg.Search.SearxngURL, sysLogger)
	tavily := search.NewTavily(cfg.Keys.Tavily, sysLogger)
	merger := search.NewMerger(
		search.NewCachedBackend(searxng, store, cfg.Cache.SearchTTL, sysLogger),
		search.NewCachedBackend(tavily, store, cfg.Cache.SearchTTL, sysLogger),
		sysLogger,
	)
	discoverer := search.NewDiscoverer(searxng, store, cfg.Cache.DiscoverTTL, sysLogger)

	// 5. Models
	chatModels := factory.NewRegistry(factory.Settings{
		DefaultProvider:   cfg.Ai.LLMProvider,
		DefaultModel:      cfg.Ai.LLMModel,
		OllamaBaseURL:     cfg.Ai.OllamaBaseURL,
		OllamaModels:      cfg.Ai.OllamaModels,
		OpenAIAPIKey:      cfg.Keys.OpenAI,
		OpenAIModels:      cfg.Ai.OpenAIModels,
		HuggingFaceAPIKey: cfg.Keys.HuggingFace,
		HuggingFaceModels: cfg.Ai.HuggingFaceModels,
		CustomOpenAIURL:   cfg.Keys.CustomOpenAIURL,
		CustomOpenAIKey:   cfg.Keys.CustomOpenAIKey,
		CustomOpenAIModel: cfg.Keys.CustomOpenAIModel,
	})
	log.Printf("[INFO] Default LLM: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	embeddingModels := embedding.NewRegistry(cfg.Ai.EmbeddingProvider).
		RegisterOllama(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
	if cfg.Keys.OpenAI != "" {
		embeddingModels.RegisterOpenAI(cfg.Keys.OpenAI, "", cfg.Ai.OpenAIEmbeddingModel)
	}

	// 6. Answering
	reranker := answer.NewReranker(service.NewFileStore(uowFactory), sysLogger)
	machine := answer.NewMachine(merger, reranker, sysLogger)

	// 7. Services
	ledgerService := service.NewLedgerService(uowFactory, eventPublisher, store, sysLogger)
	publisherService := service.NewPublisherService(cfg.App.AssistantTurnTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.AssistantTurnTopic,
		ledgerService,
		eventPublisher,
		sysLogger,
	)
	chatService := service.NewChatService(machine, chatModels, embeddingModels, ledgerService, publisherService, streamLogger)
	imageService := service.NewImageService(merger, chatModels, sysLogger)
	discoverService := service.NewDiscoverService(discoverer)
	modelService := service.NewModelService(chatModels, embeddingModels)

	// 8. Chat activity
	wsLogger := logger.NewIsolatedLogger("logs/chat_events.log")
	wsHub := websocket.NewHub(wsLogger)
	chatEvents := handler.NewChatEventHandler(ledgerService, wsHub, wsLogger)
	if natsSub != nil {
		for _, subject := range chatEvents.Subjects() {
			if err := natsSub.Subscribe(subject, "", chatEvents.HandleEvent); err != nil {
				log.Printf("[WARN] Failed to subscribe to %s: %v", subject, err)
			}
		}
		c.closers = append(c.closers, natsSub.Close)
	}

	// 9. Controllers
	c.ChatController = controller.NewChatController(chatService, sysLogger)
	c.ImageController = controller.NewImageController(imageService)
	c.DiscoverController = controller.NewDiscoverController(discoverService, sysLogger)
	c.ConversationController = controller.NewConversationController(ledgerService)
	c.ModelController = controller.NewModelController(modelService)
	c.ConsumerService = consumerService
	c.ChatEventHandler = chatEvents
	c.WebSocketHub = wsHub

	return c
}

// newCacheStore picks the shared search/conversation cache. Redis falls back
// to memory when it is unreachable.
func newCacheStore(cfg *config.Config) cache.Store {
	memory := cache.NewMemoryStore(cfg.Cache.SearchTTL)
	if cfg.Cache.Backend != "redis" {
		return memory
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory cache", err)
		_ = rdb.Close()
		return memory
	}
	return cache.NewRedisStore(rdb)
}

// Close releases the event bus connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
