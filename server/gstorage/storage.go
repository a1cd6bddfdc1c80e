package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var ErrObjectNotExist = storage.ErrObjectNotExist

type GStorage struct {
	storageClient *storage.Client
}

func NewGStorage(ctx context.Context, credentialsFilePath string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("NewGStorage: %v", err)
	}

	return &GStorage{storageClient: client}, nil
}

// UploadFile uploads the local file at filePath to bucket as object.
func (gs *GStorage) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("os.Open: %v", err)
	}
	defer f.Close()

	wc := gs.storageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}

	return nil
}

// DownloadFile downloads object from bucket to destFileName. It returns
// ErrObjectNotExist, unwrapped, when there is nothing to download.
func (gs *GStorage) DownloadFile(ctx context.Context, bucket, object, destFileName string) error {
	rc, err := gs.storageClient.Bucket(bucket).Object(object).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}

	if err != nil {
		return fmt.Errorf("Object(%q).NewReader: %v", object, err)
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destFileName), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll: %v", err)
	}

	f, err := os.OpenFile(destFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile: %v", err)
	}

	// A partial download is removed so it's never mistaken for the real file
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(destFileName)
		return fmt.Errorf("io.Copy: %v", err)
	}

	if err = f.Close(); err != nil {
		os.Remove(destFileName)
		return fmt.Errorf("f.Close: %v", err)
	}

	return nil
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}
