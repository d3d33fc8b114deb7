package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app-registry-cms/config"
	"app-registry-cms/handlers"
	"app-registry-cms/helper"
	"app-registry-cms/jobs"
	"app-registry-cms/logging"
	"app-registry-cms/metrics"
	"app-registry-cms/middleware"
	"app-registry-cms/repositories"
	"app-registry-cms/search"
	"app-registry-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logging.Setup(cfg.LogLevel, os.Stdout)
	log := logging.New(cfg.LogLevel, os.Stdout)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Search index
	var index search.Index
	if len(cfg.ElasticsearchURLs) == 0 {
		log.Warn("ELASTICSEARCH_URLS not set, using the in-memory search index")
		index = search.NewMemoryIndex()
	} else {
		es, err := config.NewElasticsearchClient(cfg)
		if err != nil {
			log.WithError(err).Fatal("Failed to create Elasticsearch client")
		}
		index = search.NewElasticIndex(es)
	}
	dispatcher := search.NewDispatcher(index, cfg.IndexQueueSize, cfg.IndexTimeout, log.WithField("component", "index_dispatcher"), collector)
	synchronizer := search.NewIndexSynchronizer(dispatcher, cfg.IndexPrefix)

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Initialize services
	validator, err := helper.NewStructValidator()
	if err != nil {
		log.WithError(err).Fatal("Failed to create validator")
	}
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.JWTExpiration)
	activityService := services.NewActivityService(repos.Activities)
	mailer := services.NewQueuedDeliverer(services.LogDeliverer{Log: log.WithField("component", "mailer")}, cfg.MailQueueSize, cfg.MailTimeout, log.WithField("component", "mail_queue"))
	notificationService := services.NewNotificationService(repos.Notifications, repos.Users, mailer, log)
	mobileAppService := services.NewMobileAppService(repos, validator, synchronizer, activityService, notificationService, collector, log)
	galleryService := services.NewGalleryService(repos, validator, synchronizer, activityService, notificationService, collector, log)
	searchService := services.NewSearchService(index, cfg.IndexPrefix, repos.MobileApps, repos.Galleries, log)
	exportService := services.NewExportService(repos.MobileApps)
	tagService := services.NewTagService(repos.Tags)
	agencyService := services.NewAgencyService(repos.Agencies)
	counterService := services.NewCounterService(repos.Counters)

	ensureCtx, cancel := context.WithTimeout(context.Background(), cfg.IndexTimeout)
	if err := searchService.EnsureIndices(ensureCtx); err != nil {
		log.WithError(err).Warn("Search indices are not ready, documents will be indexed once the cluster is reachable")
	}
	cancel()

	// Scheduled jobs
	scheduler := jobs.New(searchService, counterService, 30*time.Minute, log)
	if err := scheduler.Start(cfg.ReindexCron, cfg.CounterCacheCron); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}

	// Initialize handlers
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 10*time.Minute)
	router := handlers.SetupRouter(handlers.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		Users:       authService,
		RateLimiter: limiter,
		Log:         log,
		Metrics:     collector,
		Gatherer:    registry,
	}, handlers.Handlers{
		MobileApps: handlers.NewMobileAppHandler(mobileAppService, searchService, exportService, activityService),
		Galleries:  handlers.NewGalleryHandler(galleryService, searchService, activityService),
		Tags:       handlers.NewTagHandler(tagService),
		Agencies:   handlers.NewAgencyHandler(agencyService),
		Admin:      handlers.NewAdminHandler(authService, activityService, notificationService, searchService, counterService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	scheduler.Stop()
	limiter.Stop()
	dispatcher.Close()
	mailer.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}
