package config

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ghostline-dev/ghostline/internal/errors"
)

// Store loads and saves the configuration record. A missing record loads as
// New().
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error

	// Location describes where the record lives, for status output.
	Location() string
}

// FileStore keeps the configuration in a local JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the file, returning defaults if it does not exist.
func (s *FileStore) Load(_ context.Context) (*Config, error) {
	cfg, err := LoadFile(s.path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			cfg = New()
			cfg.configPath = s.path
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the file.
func (s *FileStore) Save(_ context.Context, cfg *Config) error {
	return cfg.SaveTo(s.path)
}

// Location returns the file path.
func (s *FileStore) Location() string {
	return s.path
}

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the configuration in a single S3 object, for hosts that
// share one account setup.
//
// Example usage:
//
//	store, err := config.NewS3StoreFromURI(ctx, "s3://my-bucket/ghostline/config.json")
//	cfg, err := store.Load(ctx)
type S3Store struct {
	client S3API
	bucket string
	key    string
}

// NewS3Store creates a store for bucket/key.
func NewS3Store(client S3API, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

// NewS3StoreFromURI resolves AWS credentials from the environment and
// creates a store for an s3://bucket/key URI.
func NewS3StoreFromURI(ctx context.Context, uri string) (*S3Store, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.New("G302").
			WithDetail("Could not load AWS configuration").
			Wrap(err)
	}
	return NewS3Store(s3.NewFromConfig(awsCfg), bucket, key), nil
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", errors.New("G302").WithDetail("Expected an s3://bucket/key URI, got " + uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", errors.New("G302").WithDetail("Expected an s3://bucket/key URI, got " + uri)
	}
	return bucket, key, nil
}

// Load fetches and parses the object, returning defaults if it does not
// exist.
func (s *S3Store) Load(ctx context.Context) (*Config, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nsk) {
			return New(), nil
		}
		return nil, errors.New("G302").
			WithDetail("Could not read " + s.Location()).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("G302").Wrap(err)
	}
	return Parse(data)
}

// Save uploads cfg as the object body.
func (s *S3Store) Save(ctx context.Context, cfg *Config) error {
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.New("G302").
			WithDetail("Could not write " + s.Location()).
			Wrap(err)
	}
	return nil
}

// Location returns the s3:// URI.
func (s *S3Store) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}
