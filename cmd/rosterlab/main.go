package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	analyticsApp "github.com/davicafu/rosterlab/internal/analytics/application"
	analyticsEvents "github.com/davicafu/rosterlab/internal/analytics/infra/inbound/events"
	analyticsHttp "github.com/davicafu/rosterlab/internal/analytics/infra/inbound/http"
	"github.com/davicafu/rosterlab/internal/config"
	consumerApp "github.com/davicafu/rosterlab/internal/consumer/application"
	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	consumerHttp "github.com/davicafu/rosterlab/internal/consumer/infra/inbound/http"
	consumerMongo "github.com/davicafu/rosterlab/internal/consumer/infra/outbound/db/mongodb"
	consumerSQL "github.com/davicafu/rosterlab/internal/consumer/infra/outbound/db/sqlstore"
	identityApp "github.com/davicafu/rosterlab/internal/identity/application"
	"github.com/davicafu/rosterlab/internal/identity/infra/auth"
	identityHttp "github.com/davicafu/rosterlab/internal/identity/infra/inbound/http"
	identitySQL "github.com/davicafu/rosterlab/internal/identity/infra/outbound/db/sqlstore"
	seedApp "github.com/davicafu/rosterlab/internal/seed/application"
	seedHttp "github.com/davicafu/rosterlab/internal/seed/infra/inbound/http"
	"github.com/davicafu/rosterlab/internal/shared/domain/listing"
	sharedHTTP "github.com/davicafu/rosterlab/internal/shared/infra/inbound/http"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/db/sqlstore"
	"github.com/davicafu/rosterlab/internal/shared/infra/platform/storage"
	"github.com/davicafu/rosterlab/internal/shared/infra/relayer"
	studentApp "github.com/davicafu/rosterlab/internal/student/application"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
	studentHttp "github.com/davicafu/rosterlab/internal/student/infra/inbound/http"
	studentSQL "github.com/davicafu/rosterlab/internal/student/infra/outbound/db/sqlstore"
	"github.com/davicafu/rosterlab/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogJSON); err != nil {
		zap.NewExample().Fatal("invalid LOG_LEVEL", zap.Error(err))
	}
	log := logger.Logger()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var closers cleanup
	defer closers.run()

	// ---------------- DB ----------------
	dialect, err := sqlstore.ParseDialect(cfg.DBDriver)
	if err != nil {
		return err
	}
	db, err := sqlstore.Open(ctx, dialect, cfg.DSN())
	if err != nil {
		return err
	}
	closers.add(func() { db.Close() })
	if err := sqlstore.InitSchema(ctx, db); err != nil {
		return err
	}

	studentRepo := studentSQL.NewStudentRepo(db)
	sqlOutbox := sqlstore.NewOutboxRepo(db)

	var consumerRepo consumerDomain.ConsumerRepository = consumerSQL.NewConsumerRepo(db)
	var mongoRepo *consumerMongo.ConsumerRepoMongoDB
	if cfg.UsesMongo() {
		client, err := newMongo(ctx, cfg, &closers)
		if err != nil {
			return err
		}
		if mongoRepo, err = consumerMongo.NewConsumerRepoMongoDB(ctx, client, cfg.MongoDB); err != nil {
			return err
		}
		consumerRepo = mongoRepo
		log.Info("✅ MongoDB conectado para consumers", zap.String("db", cfg.MongoDB))
	}

	// ---------------- Cache / Fotos ----------------
	cache := newCache(ctx, cfg, log, &closers)

	photos, err := storage.NewPhotoStore(afero.NewOsFs(), cfg.UploadDir, log)
	if err != nil {
		return err
	}

	// --------------- Servicios --------------
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	identityService := identityApp.NewIdentityService(identitySQL.NewUserRepo(db), tokens, log)

	studentService := studentApp.NewStudentService(studentRepo, cache, photos, identityService,
		listing.NewEngine[*studentDomain.Student](cfg.PageSize), log).WithCacheTTL(cfg.CacheTTL)
	consumerService := consumerApp.NewConsumerService(consumerRepo, cache, photos, identityService,
		listing.NewEngine[*consumerDomain.Consumer](cfg.PageSize), log).WithCacheTTL(cfg.CacheTTL)

	analyticsService := analyticsApp.NewAnalyticsService(newAnalyticsRepo(ctx, cfg, log, &closers), log)

	seeder := seedApp.NewSeeder(identityService, studentRepo, consumerRepo,
		seedApp.AdminAccount{Email: cfg.AdminEmail, Password: cfg.AdminPassword}, log)
	if cfg.SeedOnStart {
		if _, err := seeder.Run(ctx); err != nil {
			return err
		}
	}

	// ---------------- Events ---------------
	publisher := newBus(ctx, cfg, analyticsEvents.NewRegistrationConsumer(analyticsService, log), log, &closers)

	// ------------ Outbox Worker ------------
	registry := mergeRegistries(studentDomain.NewEventRegistry(), consumerDomain.NewEventRegistry())
	go relayer.NewOutboxWorker(sqlOutbox, publisher, registry, cfg.OutboxPeriod, cfg.OutboxLimit, log).Start(ctx)
	if mongoRepo != nil {
		go relayer.NewOutboxWorker(mongoRepo, publisher, registry, cfg.OutboxPeriod, cfg.OutboxLimit, log).Start(ctx)
	}

	// ---------------- HTTP ----------------
	router := gin.New()
	router.Use(gin.Recovery(), sharedHTTP.RequestLogger(log), sharedHTTP.Authenticate(tokens, log))

	identityHttp.RegisterAuthRoutes(router, identityHttp.NewAuthHandler(identityService, log))
	studentHttp.RegisterStudentRoutes(router, studentHttp.NewStudentHandler(studentService, log))
	consumerHttp.RegisterConsumerRoutes(router, consumerHttp.NewConsumerHandler(consumerService, log))
	analyticsHttp.RegisterAnalyticsRoutes(router, analyticsHttp.NewAnalyticsHandler(analyticsService, log))
	seedHttp.RegisterSeedRoutes(router, seedHttp.NewSeedHandler(seeder, log))
	router.GET("/photos/:name", sharedHTTP.ServePhotos(photos, log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("🛑 Apagando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
