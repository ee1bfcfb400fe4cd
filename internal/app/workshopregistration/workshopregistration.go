package workshopregistration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/workshop-registration/internal/cache"
	"github.com/magabrotheeeer/workshop-registration/internal/config"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/jwt"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/metrics"
	"github.com/magabrotheeeer/workshop-registration/internal/migrations"
	"github.com/magabrotheeeer/workshop-registration/internal/notify"
	registrationservice "github.com/magabrotheeeer/workshop-registration/internal/services/registration"
	userservice "github.com/magabrotheeeer/workshop-registration/internal/services/user"
	workshopservice "github.com/magabrotheeeer/workshop-registration/internal/services/workshop"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

// App — HTTP-приложение вместе с ресурсами, которые нужно закрыть при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	redis  *cache.Cache
	amqp   *amqp.Connection
}

// New подключает хранилище, кеш и брокер, применяет миграции и собирает маршруты.
// Пустой адрес redis отключает кеш, пустой URL брокера заменяет уведомления записью в лог.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var workshopCache workshopservice.Cache = cache.Noop{}
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		app.redis = redisCache
		workshopCache = redisCache
	} else {
		logger.Warn("redis address is empty, workshop cache disabled")
	}

	var notifier registrationservice.Notifier = notify.NewLog(logger)
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		app.amqp = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
		if err != nil {
			app.close()
			return nil, err
		}
		notifier = notify.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is empty, notifications are only logged")
	}

	m := metrics.NewRegistration(prometheus.DefaultRegisterer)
	reconciler := registrationservice.NewReconciler(notifier, m, logger)
	registrationService := registrationservice.New(db, reconciler, m, cfg.OverlapTolerance, logger)
	workshopService := workshopservice.New(db, workshopCache, reconciler, cfg.CacheTTL, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:       logger,
		Tokens:       jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		DB:           db.DB,
		Registration: registrationService,
		Workshops:    workshopService,
		Users:        userservice.New(db, logger),
		RateLimit:    cfg.RateLimit,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
