package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/metrics"
)

// MaxImageBytes bounds a decoded recipe image
const MaxImageBytes = 5 << 20

// ErrInvalidImage is returned for data URLs that do not hold a supported image
var ErrInvalidImage = errors.New("invalid image")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageStorage persists image bytes under key and returns their public URL
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Backend() string
}

// S3API is the subset of the S3 client used for uploads
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BreakerSettings configures the circuit breaker around S3 uploads
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// S3ImageStorage uploads images to a bucket. Uploads fail fast while the
// breaker is open.
type S3ImageStorage struct {
	client  S3API
	bucket  string
	url     func(key string) string
	breaker *gobreaker.CircuitBreaker[string]
}

func NewS3ImageStorage(cfg *config.S3Config, settings BreakerSettings) *S3ImageStorage {
	return newS3ImageStorage(cfg.Client, cfg.BucketName, cfg.ObjectURL, settings)
}

func newS3ImageStorage(client S3API, bucket string, url func(string) string, settings BreakerSettings) *S3ImageStorage {
	const name = "s3-images"
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &S3ImageStorage{client: client, bucket: bucket, url: url, breaker: breaker}
}

func (s *S3ImageStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.breaker.Execute(func() (string, error) {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload image to S3: %w", err)
		}
		return s.url(key), nil
	})
}

func (s *S3ImageStorage) Backend() string { return "s3" }

// State reports the breaker state
func (s *S3ImageStorage) State() gobreaker.State {
	return s.breaker.State()
}

// LocalImageStorage writes images below a directory served at baseURL
type LocalImageStorage struct {
	dir     string
	baseURL string
}

func NewLocalImageStorage(dir, baseURL string) *LocalImageStorage {
	return &LocalImageStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *LocalImageStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return l.baseURL + "/" + key, nil
}

func (l *LocalImageStorage) Backend() string { return "local" }

// ImageService decodes recipe images sent as base64 data URLs and stores them
type ImageService struct {
	storage ImageStorage
}

var _ IImageService = (*ImageService)(nil)

func NewImageService(storage ImageStorage) *ImageService {
	return &ImageService{storage: storage}
}

// SaveDataURL stores a "data:image/<type>;base64,<payload>" image and returns
// its URL
func (s *ImageService) SaveDataURL(ctx context.Context, dataURL string) (string, error) {
	data, contentType, err := DecodeDataURL(dataURL)
	if err != nil {
		metrics.ImageUploads.WithLabelValues(s.storage.Backend(), "rejected").Inc()
		return "", err
	}

	key := fmt.Sprintf("recipes/images/%s.%s", uuid.NewString(), imageExtensions[contentType])
	url, err := s.storage.Put(ctx, key, data, contentType)
	if err != nil {
		metrics.ImageUploads.WithLabelValues(s.storage.Backend(), "error").Inc()
		logging.Error().Err(err).Str("key", key).Msg("image upload failed")
		return "", err
	}

	metrics.ImageUploads.WithLabelValues(s.storage.Backend(), "ok").Inc()
	return url, nil
}

// DecodeDataURL returns the bytes and sniffed content type of a base64 image
// data URL
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("%w: expected a base64 data URL", ErrInvalidImage)
	}
	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if _, ok := imageExtensions[declared]; !ok {
		return nil, "", fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, declared)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	sniffed := http.DetectContentType(data)
	if sniffed != declared {
		return nil, "", fmt.Errorf("%w: content is %s, declared %s", ErrInvalidImage, sniffed, declared)
	}
	return data, sniffed, nil
}
