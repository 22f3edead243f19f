package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPath = errors.New("invalid object path")

// Storage uploads files to a bucket and returns their public URL
type Storage interface {
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) (string, error)
}

// File is one upload of a multi-file request
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// ObjectPath builds a unique object path for a creator's file, keeping the
// lower-cased extension of the original name
func ObjectPath(creatorID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return creatorID.String() + "/" + uuid.NewString() + ext
}

// UploadAll uploads files one at a time under the creator's prefix. It stops
// at the first failure and returns the URLs uploaded so far along with the error.
func UploadAll(ctx context.Context, s Storage, bucket string, creatorID uuid.UUID, files []File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.Upload(ctx, bucket, ObjectPath(creatorID, f.Name), f.Body, f.ContentType)
		if err != nil {
			return urls, fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// cleanKey joins bucket and object path, rejecting anything that escapes the bucket
func cleanKey(bucket, objectPath string) (string, error) {
	if bucket == "" || objectPath == "" {
		return "", ErrInvalidPath
	}
	key := path.Clean(bucket + "/" + objectPath)
	if strings.HasPrefix(key, "../") || strings.HasPrefix(key, "/") || !strings.HasPrefix(key, path.Clean(bucket)+"/") {
		return "", ErrInvalidPath
	}
	return key, nil
}
