package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucket = "uploads"

// GridFSStorage keeps uploads in a MongoDB GridFS bucket. The ref doubles
// as the GridFS file id.
type GridFSStorage struct {
	db *mongo.Database
}

func NewGridFS(db *mongo.Database) *GridFSStorage {
	return &GridFSStorage{db: db}
}

// bucket opens a bucket per call; deadlines are per bucket, not per stream.
func (s *GridFSStorage) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(gridFSBucket))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	if d, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(d); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(d); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *GridFSStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	ref := ObjectName(name)
	stream, err := b.OpenUploadStreamWithID(ref, ref)
	if err != nil {
		return "", fmt.Errorf("open upload stream: %w", err)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("write upload %s: %w", ref, err)
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("close upload %s: %w", ref, err)
	}
	return ref, nil
}

func (s *GridFSStorage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := b.OpenDownloadStream(ref)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open download stream %s: %w", ref, err)
	}
	return stream, nil
}
