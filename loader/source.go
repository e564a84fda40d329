// Package loader reads the tabular inputs of a run (reference sheets and invoice
// batches) from local files or Cloud Storage into raw rows.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/mmdatafocus/dimension_resolver/utils"
)

// ErrNotFound is returned by Open when the file or object does not exist.
var ErrNotFound = errors.New("input not found")

type gcsObjectReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsObjectReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open returns a reader for a local path or a gs://bucket/object URI.
func Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if !utils.IsGCSPath(p) {
		f, err := os.Open(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return f, err
	}

	bucket, object, err := utils.SplitGCSPath(p)
	if err != nil {
		return nil, err
	}
	client, err := utils.GetGCSClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	return &gcsObjectReader{Reader: r, client: client}, nil
}

// Join appends name to a local directory or a gs:// prefix.
func Join(dir, name string) string {
	if utils.IsGCSPath(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

func extension(p string) string {
	if utils.IsGCSPath(p) {
		return strings.ToLower(path.Ext(p))
	}
	return strings.ToLower(filepath.Ext(p))
}
