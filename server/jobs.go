package server

import (
	"context"
	"errors"
	"os"
	"path"
	"time"

	"github.com/Daskott/swiftly/colors"
	"github.com/Daskott/swiftly/server/auditlog"
	"github.com/Daskott/swiftly/server/gstorage"
	"github.com/Daskott/swiftly/shared"
	"github.com/Daskott/swiftly/utils"
	"github.com/go-co-op/gocron"
)

const (
	BACKUP_JOB_TAG = "backupAuditLog"
	BACKUP_TIMEOUT = 50 * time.Second
)

// objectStore is satisfied by *gstorage.GStorage
type objectStore interface {
	UploadFile(ctx context.Context, bucket, object, filePath string) error
	DownloadFile(ctx context.Context, bucket, object, destFileName string) error
}

type auditLogBackup struct {
	store   objectStore
	config  shared.StorageConfig
	logPath string
}

func (b *auditLogBackup) objectName() string {
	return path.Join(b.config.Prefix, auditlog.DEFAULT_FILE_NAME)
}

// backup uploads the local audit log, if there is one yet.
func (b *auditLogBackup) backup(ctx context.Context) error {
	exists, err := utils.FileExist(b.logPath)
	if err != nil {
		return err
	}

	if !exists {
		logg.Infof(colors.Blue("[backup] ")+"no audit log at %v yet, skipping backup", b.logPath)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, BACKUP_TIMEOUT)
	defer cancel()

	err = b.store.UploadFile(ctx, b.config.Bucket, b.objectName(), b.logPath)
	if err != nil {
		return err
	}

	logg.Infof(colors.Blue("[backup] ")+"audit log uploaded to gs://%v/%v", b.config.Bucket, b.objectName())
	return nil
}

// restore downloads the last backup when there is no local audit log.
func (b *auditLogBackup) restore(ctx context.Context) error {
	exists, err := utils.FileExist(b.logPath)
	if err != nil || exists {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, BACKUP_TIMEOUT)
	defer cancel()

	err = b.store.DownloadFile(ctx, b.config.Bucket, b.objectName(), b.logPath)
	if err != nil {
		os.Remove(b.logPath)
	}

	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Infof(colors.Blue("[backup] ")+"no audit log backup in gs://%v/%v", b.config.Bucket, b.objectName())
		return nil
	}

	if err != nil {
		return err
	}

	logg.Infof(colors.Blue("[backup] ")+"audit log restored from gs://%v/%v", b.config.Bucket, b.objectName())
	return nil
}

// restoreOrStartEmpty restores the last backup, falling back to the local (or an empty)
// audit log with a warning when the backup can't be fetched.
func (b *auditLogBackup) restoreOrStartEmpty(ctx context.Context) bool {
	if err := b.restore(ctx); err != nil {
		logg.Warnf(colors.Yellow("[backup] ")+"unable to restore audit log, starting without it: %v", err)
		return false
	}

	return true
}

func scheduleAuditLogBackup(scheduler *gocron.Scheduler, backup *auditLogBackup) error {
	_, err := scheduler.Cron(backup.config.AuditLogBackupSchedule).Tag(BACKUP_JOB_TAG).Do(func() {
		if err := backup.backup(context.Background()); err != nil {
			logg.Errorf(colors.Red("[backup] ")+"audit log backup failed: %v", err)
		}
	})

	return err
}
