package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/swiftly/server/auditlog"
	"github.com/Daskott/swiftly/utils"
	"github.com/go-co-op/gocron"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad interface{}, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("Swiftly server is listening on %v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(scheduler *gocron.Scheduler, writer *auditlog.Writer, backup *auditLogBackup, server *http.Server) {
	// Stop scheduled backups, then drain alerts still being recorded
	scheduler.Stop()

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Errorf("Swiftly server shutdown failed:%+s", err)
	}

	writer.Stop()

	if backup != nil {
		if err := backup.backup(context.Background()); err != nil {
			logg.Errorf("final audit log backup failed: %v", err)
		}
	}

	logg.Infof("Swiftly server stopped properly")
}

// configDirectory retrieves the directory to store swiftly data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'swiftly' folder in home directory for prod
	configFolderName := "swiftly"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
