package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GetGCSClient initializes a Google Cloud Storage client.
// ADC is preferred; set GCS_CREDENTIALS_JSON to pass explicit JSON (e.g. locally).
func GetGCSClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// SplitGCSPath splits gs://bucket/object/path into bucket and object.
func SplitGCSPath(path string) (string, string, error) {
	if !strings.HasPrefix(path, "gs://") {
		return "", "", errors.New("not a gs:// path")
	}
	rest := strings.TrimPrefix(path, "gs://")
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", errors.New("gs:// path must be gs://bucket/object")
	}
	return bucket, object, nil
}

func IsGCSPath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// UploadToGCS streams r to a gs://bucket/object path.
func UploadToGCS(ctx context.Context, gcsPath string, r io.Reader, contentType string) error {
	bucket, object, err := SplitGCSPath(gcsPath)
	if err != nil {
		return err
	}
	client, err := GetGCSClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("failed to upload %s: %w", gcsPath, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to upload %s: %w", gcsPath, err)
	}
	return nil
}
