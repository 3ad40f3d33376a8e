// Package upload stores files attached to rooms.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned by Open for a ref that holds no file.
	ErrNotFound = errors.New("upload not found")

	// ErrInvalidRef is returned for a ref outside the upload namespace.
	ErrInvalidRef = errors.New("invalid upload reference")
)

// Prefix is the directory every stored object lives under.
const Prefix = "rooms/"

// Storage persists uploaded files. Save returns the ref that Open accepts.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type Config struct {
	// Driver is one of local, memory, s3 or gridfs.
	Driver string
	// Dir is the root directory of the local driver.
	Dir string
	S3  S3Config
}

// New returns the Storage selected by cfg.Driver. mongoDB is only used by the
// gridfs driver and may be nil otherwise.
func New(ctx context.Context, cfg Config, mongoDB *mongo.Database) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		if cfg.Dir == "" {
			return nil, errors.New("upload dir is required for the local driver")
		}
		return NewLocal(cfg.Dir), nil
	case "memory":
		return NewMemory(), nil
	case "s3":
		return NewS3(ctx, cfg.S3)
	case "gridfs":
		if mongoDB == nil {
			return nil, errors.New("gridfs uploads require db.driver=mongo")
		}
		return NewGridFS(mongoDB), nil
	default:
		return nil, fmt.Errorf("unsupported upload driver: %q", cfg.Driver)
	}
}

// ObjectName returns a fresh ref for a file uploaded as original. Only the
// extension of the client's name survives.
func ObjectName(original string) string {
	return Prefix + uuid.NewString() + cleanExt(original)
}

func cleanExt(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, "/")))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

// checkRef rejects refs that could escape the upload namespace.
func checkRef(ref string) error {
	if !strings.HasPrefix(ref, Prefix) || path.Clean(ref) != ref || strings.Contains(ref, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return nil
}
