package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-core-service/internal/config"
	"github.com/wso2/consent-core-service/internal/dao"
	"github.com/wso2/consent-core-service/internal/database"
	extensionclient "github.com/wso2/consent-core-service/internal/extension-client"
	"github.com/wso2/consent-core-service/internal/router"
	"github.com/wso2/consent-core-service/internal/service"
	"github.com/wso2/consent-core-service/internal/validator"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func timeoutOrDefault(configured, fallback time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	return fallback
}

func main() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Consent Core Service...")

	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"config_path": configPath,
		"log_level":   logger.GetLevel().String(),
	}).Info("Configuration loaded successfully")

	db, err := database.Initialize(&cfg.Database.Consent, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}

	logger.Info("Database connection established successfully")

	consentDAO := dao.NewConsentDAO(db)
	authResourceDAO := dao.NewAuthResourceDAO(db)
	mappingDAO := dao.NewMappingDAO(db)
	attributeDAO := dao.NewConsentAttributeDAO(db)
	statusAuditDAO := dao.NewStatusAuditDAO(db)
	historyDAO := dao.NewHistoryDAO(db)
	fileDAO := dao.NewConsentFileDAO(db)

	logger.Info("DAOs initialized successfully")

	historyRecorder := service.NewHistoryRecorder(historyDAO, logger)

	extensionClient := extensionclient.NewExtensionClient(&cfg.ServiceExtension, logger)
	logger.WithField("enabled", extensionClient.Enabled()).Info("Extension client initialized")

	consentService := service.NewConsentService(
		consentDAO,
		authResourceDAO,
		mappingDAO,
		attributeDAO,
		statusAuditDAO,
		fileDAO,
		historyRecorder,
		extensionClient,
		db,
		cfg,
		logger,
	)

	idempotencyValidator := service.NewIdempotencyValidator(cfg, attributeDAO, consentService, logger)

	consentValidator := validator.NewDefaultConsentValidator(extensionClient, cfg, logger)

	logger.Info("Services initialized successfully")

	ginRouter := router.SetupRouter(consentService, idempotencyValidator, consentValidator, db, cfg)

	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    timeoutOrDefault(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:   timeoutOrDefault(cfg.Server.WriteTimeout, 15*time.Second),
		IdleTimeout:    timeoutOrDefault(cfg.Server.IdleTimeout, 60*time.Second),
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
			"addr":     serverAddr,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("Server is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		logger.WithError(err).Error("Failed to close database connection")
	}

	logger.Info("Server exited gracefully")
}
