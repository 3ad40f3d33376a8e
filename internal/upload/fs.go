package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3fs "github.com/looplj/afero-s3"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/joestump/room-reviews/internal/log"
)

// FSStorage keeps uploads on an afero filesystem.
type FSStorage struct {
	fs afero.Fs
	// mkdir is false for object stores, where directories are implicit.
	mkdir bool
}

// NewFSStorage wraps fs. Parent directories are created before each write.
func NewFSStorage(fs afero.Fs) *FSStorage {
	return &FSStorage{fs: fs, mkdir: true}
}

// NewLocal stores uploads below dir on the host filesystem.
func NewLocal(dir string) *FSStorage {
	return NewFSStorage(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewMemory stores uploads in process memory.
func NewMemory() *FSStorage {
	return NewFSStorage(afero.NewMemMapFs())
}

// NewS3 stores uploads in an S3 bucket. Endpoint may point at any
// S3-compatible service.
func NewS3(ctx context.Context, cfg S3Config) (*FSStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("upload.s3.bucket is required for the s3 driver")
	}

	credProvider := awscredentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credProvider),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = lo.ToPtr(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := s3fs.NewFsFromClient(cfg.Bucket, client)
	return &FSStorage{fs: afero.NewCacheOnReadFs(base, afero.NewMemMapFs(), 5*time.Minute)}, nil
}

func (s *FSStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	ref := ObjectName(name)
	if s.mkdir {
		if err := s.fs.MkdirAll(path.Dir(ref), 0o755); err != nil {
			return "", fmt.Errorf("create upload dir: %w", err)
		}
	}

	f, err := s.fs.Create(ref)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", ref, err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = s.fs.Remove(ref)
		return "", fmt.Errorf("write upload %s: %w", ref, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload %s: %w", ref, err)
	}

	log.Debug(ctx, "upload stored", log.String("ref", ref), log.Int64("bytes", n))
	return ref, nil
}

func (s *FSStorage) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(ref)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", ref, err)
	}
	return f, nil
}
