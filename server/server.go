package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Daskott/swiftly/server/auditlog"
	"github.com/Daskott/swiftly/server/cron"
	"github.com/Daskott/swiftly/server/dispatch"
	"github.com/Daskott/swiftly/server/gstorage"
	"github.com/Daskott/swiftly/server/logger"
	"github.com/Daskott/swiftly/server/twilio"
	"github.com/Daskott/swiftly/shared"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

var logg = logger.NewLogger()

// Start runs the alert dispatch server until SIGINT or SIGTERM is received.
func Start(config *viper.Viper, devMode bool) {
	serverConfig := loadServerConfig(config)
	ctx := context.Background()

	auditLogPath := serverConfig.Swiftly.AuditLogPath
	if auditLogPath == "" {
		auditLogPath = filepath.Join(configDirectory(devMode), auditlog.DEFAULT_FILE_NAME)
	}

	var backup *auditLogBackup
	if serverConfig.Google.Storage.EnableAuditLogBackup {
		storage, err := gstorage.NewGStorage(ctx, serverConfig.Google.ApplicationCredentials)
		fatalOnError(err)
		defer storage.Close()

		backup = &auditLogBackup{store: storage, config: serverConfig.Google.Storage, logPath: auditLogPath}
		backup.restoreOrStartEmpty(ctx)
	}

	writer := auditlog.NewWriter(auditlog.NewFileStore(auditLogPath), logg)
	writer.Start()

	service := dispatch.NewService(
		twilio.NewClient(serverConfig.Twilio, devMode),
		writer,
		dispatch.WithPolicy(dispatch.Policy{MaxConcurrency: serverConfig.Swiftly.Dispatch.MaxConcurrency}),
		dispatch.WithLogger(logg),
	)

	scheduler := cron.NewCronScheduler(serverConfig.Swiftly.Cron.TimeZone)
	if backup != nil {
		fatalOnError(scheduleAuditLogBackup(scheduler, backup))
	}
	scheduler.StartAsync()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%v", serverConfig.Swiftly.Listener.Port),
		Handler:      newRouter(&handler{service: service, logs: writer}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go serve(server)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logg.Infof("Shutting down swiftly server...")
	cleanup(scheduler, writer, backup, server)
}

func newRouter(h *handler) http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware)

	router.HandleFunc("/", h.health).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(jsonContentTypeMiddleware)
	api.HandleFunc("/sos", h.submitAlert).Methods(http.MethodPost)
	api.HandleFunc("/logs", h.listLogs).Methods(http.MethodGet)

	return corsMiddleware()(router)
}

func loadServerConfig(config *viper.Viper) shared.ServerConfig {
	serverConfig := shared.ServerConfig{}
	fatalOnError(config.Unmarshal(&serverConfig))

	if err := shared.NewValidator().Struct(serverConfig); err != nil {
		logg.Fatalf("invalid server config: %v", err)
	}

	return serverConfig
}
