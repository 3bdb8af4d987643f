package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	logger_adapter "recommendation-service/internal/adapters/logger"
	"recommendation-service/internal/adapters/openaq"
	"recommendation-service/internal/adapters/overpass"
	postgres_adapter "recommendation-service/internal/adapters/postgres"
	rabbitmq_adapter "recommendation-service/internal/adapters/rabbitmq"
	redis_adapter "recommendation-service/internal/adapters/redis"
	"recommendation-service/internal/adapters/rest"
	"recommendation-service/internal/configs"
	"recommendation-service/internal/constants"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/scoring"
	"recommendation-service/internal/core/usecase"
	fluentlogger "recommendation-service/pkg/fluent_logger"
	"recommendation-service/pkg/postgres"
	"recommendation-service/pkg/rabbitmq/rabbitmq_common"
	"recommendation-service/pkg/rabbitmq/rabbitmq_consumer"
	"recommendation-service/pkg/rabbitmq/rabbitmq_producer"
	pkg_redis "recommendation-service/pkg/redis"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Таймауты HTTP-клиентов внешних геосервисов.
const (
	overpassClientTimeout = 30 * time.Second
	openAQClientTimeout   = 10 * time.Second
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	listingEventsListener  port.EventListenerPort
	favoriteEventsListener port.EventListenerPort
	eventsProducer         *rabbitmq_producer.Publisher
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. СОЗДАЕМ БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	redisClient, err := pkg_redis.NewClient(context.Background(), pkg_redis.Config{
		Addr:     appConfig.Redis.Addr,
		Password: appConfig.Redis.Password,
		DB:       appConfig.Redis.DB,
	})
	if err != nil {
		appLogger.Error("Failed to connect to Redis", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	appLogger.Info("Successfully connected to Redis!", nil)

	// --- 4. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	listingStorageAdapter, err := postgres_adapter.NewPostgresListingStorageAdapter(dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres listing storage adapter", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create postgres listing storage adapter: %w", err)
	}

	favoritesReader, err := postgres_adapter.NewPostgresFavoritesReader(dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres favorites reader", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create postgres favorites reader: %w", err)
	}

	preferencesRepository, err := postgres_adapter.NewPostgresPreferencesRepository(dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres preferences repository", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create postgres preferences repository: %w", err)
	}
	appLogger.Info("Postgres adapters initialized.", nil)

	recommendationCache, err := redis_adapter.NewRedisRecommendationCache(redisClient)
	if err != nil {
		appLogger.Error("Failed to create redis recommendation cache", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create redis recommendation cache: %w", err)
	}

	overpassClient := overpass.NewOverpassAPIClient(appConfig.GeoData.OverpassURL, overpassClientTimeout)
	openAQClient := openaq.NewOpenAQAPIClient(appConfig.GeoData.OpenAQURL, appConfig.GeoData.OpenAQKey, openAQClientTimeout)
	appLogger.Info("Geo data clients initialized.", nil)

	connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger)
	connManager, err := rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, connManagerBridge)
	if err != nil {
		appLogger.Error("Failed to create connection manager", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

	producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
	producerCfg := rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		ExchangeName:             constants.EventsExchange,
		ExchangeType:             constants.EventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,

		Logger: rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
	}
	eventsProducer, err := rabbitmq_producer.NewPublisher(producerCfg, connManager)
	if err != nil {
		appLogger.Error("Failed to create events producer", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create events producer: %w", err)
	}
	appLogger.Info("RabbitMQ Events Producer initialized.", nil)

	scoreReporter, err := rabbitmq_adapter.NewScoreReporterAdapter(eventsProducer, constants.RoutingKeyScoresUpdated)
	if err != nil {
		appLogger.Error("Failed to create score reporter", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create score reporter: %w", err)
	}
	appLogger.Info("All outgoing adapters initialized.", nil)

	// --- 5. USE CASES (ядро бизнес-логики) ---
	scoringEngine := scoring.NewEngine(overpassClient, openAQClient)

	calculateScoresUseCase := usecase.NewCalculateLocationScoresUseCase(scoringEngine)
	refreshScoresUseCase := usecase.NewRefreshListingScoresUseCase(listingStorageAdapter, calculateScoresUseCase, scoreReporter)

	popularUseCase := usecase.NewGetPopularListingsUseCase(listingStorageAdapter)
	trendingUseCase := usecase.NewGetTrendingListingsUseCase(listingStorageAdapter)
	highScoreUseCase := usecase.NewGetHighLocationScoreListingsUseCase(listingStorageAdapter)
	locationUseCase := usecase.NewGetLocationBasedRecommendationsUseCase(listingStorageAdapter)
	similarUseCase := usecase.NewGetSimilarToFavoritesUseCase(listingStorageAdapter, favoritesReader)
	nearbyUseCase := usecase.NewGetNearbyRecommendationsUseCase(listingStorageAdapter, favoritesReader)

	buyerRecommendationsUseCase := usecase.NewGetBuyerRecommendationsUseCase(
		similarUseCase,
		locationUseCase,
		popularUseCase,
		highScoreUseCase,
		favoritesReader,
		preferencesRepository,
		recommendationCache,
	)

	updatePreferencesUseCase := usecase.NewUpdateUserPreferencesUseCase(listingStorageAdapter, preferencesRepository)

	appLogger.Info("All use cases initialized.", nil)

	// --- 6. ВХОДЯЩИЕ АДАПТЕРЫ (те, которые ВЫЗЫВАЮТ наше ядро) ---
	listingCreatedConsumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:              rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		QueueName:           constants.QueueListingCreated,
		DurableQueue:        true,
		DeclareQueue:        true,
		ExchangeNameForBind: constants.EventsExchange,
		RoutingKeyForBind:   constants.RoutingKeyListingCreated,
		PrefetchCount:       1,
		ConsumerTag:         "listing-scoring-adapter",

		EnableRetryMechanism: true,
		RetryExchange:        constants.ListingCreatedRetryExchange,
		RetryQueue:           constants.ListingCreatedRetryQueue,
		RetryTTL:             10000, // 10 секунд в миллисекундах
		FinalDLXExchange:     constants.ListingCreatedFinalDLX,
		FinalDLQ:             constants.ListingCreatedFinalDLQ,
		FinalDLQRoutingKey:   constants.ListingCreatedDLQRoutingKey,
		MaxRetries:           3,
	}
	listingEventsListener, err := rabbitmq_adapter.NewListingEventsConsumerAdapter(listingCreatedConsumerCfg, refreshScoresUseCase, baseLogger, connManager)
	if err != nil {
		appLogger.Error("Failed to create Listing Events listener", err, nil)
		dbPool.Close()
		return nil, err
	}
	appLogger.Info("Listing Events Listener initialized.", nil)

	favoriteAddedConsumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:              rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		QueueName:           constants.QueueFavoriteAdded,
		DurableQueue:        true,
		DeclareQueue:        true,
		ExchangeNameForBind: constants.EventsExchange,
		RoutingKeyForBind:   constants.RoutingKeyFavoriteAdded,
		PrefetchCount:       1,
		ConsumerTag:         "favorite-preferences-adapter",

		EnableRetryMechanism: true,
		RetryExchange:        constants.FavoriteAddedRetryExchange,
		RetryQueue:           constants.FavoriteAddedRetryQueue,
		RetryTTL:             10000,
		FinalDLXExchange:     constants.FavoriteAddedFinalDLX,
		FinalDLQ:             constants.FavoriteAddedFinalDLQ,
		FinalDLQRoutingKey:   constants.FavoriteAddedDLQRoutingKey,
		MaxRetries:           3,
	}
	favoriteEventsListener, err := rabbitmq_adapter.NewFavoriteEventsConsumerAdapter(favoriteAddedConsumerCfg, updatePreferencesUseCase, baseLogger, connManager)
	if err != nil {
		appLogger.Error("Failed to create Favorite Events listener", err, nil)
		dbPool.Close()
		return nil, err
	}
	appLogger.Info("Favorite Events Listener initialized.", nil)

	// REST API Server
	scoresHandlers := rest.NewScoresHandler(calculateScoresUseCase, refreshScoresUseCase)
	recommendationsHandlers := rest.NewRecommendationsHandler(
		buyerRecommendationsUseCase,
		similarUseCase,
		nearbyUseCase,
		popularUseCase,
		trendingUseCase,
		highScoreUseCase,
		locationUseCase,
	)

	apiServer := rest.NewServer(appConfig.Rest.PORT, scoresHandlers, recommendationsHandlers, appConfig.Rest.AllowedOrigins, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	// --- 7. СОБИРАЕМ ПРИЛОЖЕНИЕ ---
	application := &App{
		config:      appConfig,
		dbPool:      dbPool,
		redisClient: redisClient,
		apiServer:   apiServer,

		listingEventsListener:  listingEventsListener,
		favoriteEventsListener: favoriteEventsListener,
		eventsProducer:         eventsProducer,

		fluentClient: fluentClient,
		logger:       appLogger,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// Создаем единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// Используем WaitGroup для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		// Ждем завершения всех запущенных горутин (слушателей)
		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		// Теперь безопасно закрываем ресурсы
		if a.listingEventsListener != nil {
			if err := a.listingEventsListener.Close(); err != nil {
				a.logger.Error("Error closing listing events listener", err, nil)
			}
		}

		if a.favoriteEventsListener != nil {
			if err := a.favoriteEventsListener.Close(); err != nil {
				a.logger.Error("Error closing favorite events listener", err, nil)
			}
		}

		if a.eventsProducer != nil {
			if err := a.eventsProducer.Close(); err != nil {
				a.logger.Error("Error closing events producer", err, nil)
			}
		}

		if a.redisClient != nil {
			if err := a.redisClient.Close(); err != nil {
				a.logger.Error("Error closing redis client", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Логируем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	// Функция-хелпер для запуска слушателей
	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	wg.Add(1)
	go startListener("Listing Events Listener", a.listingEventsListener)

	wg.Add(1)
	go startListener("Favorite Events Listener", a.favoriteEventsListener)

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
