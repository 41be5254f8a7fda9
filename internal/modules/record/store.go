package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/modules/cache"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
)

var ErrNotFound = errors.New("image record not found or expired")

// TooLargeError refuses a retrieval whose payload exceeds the configured
// ceiling; the payload is never truncated.
type TooLargeError struct {
	SizeBytes int
	MaxBytes  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("image payload %d bytes exceeds limit %d", e.SizeBytes, e.MaxBytes)
}

// ImageRecord keeps one generated image retrievable out of band until its
// TTL runs out.
type ImageRecord struct {
	Image     mcp.ImageInfo
	CreatedAt time.Time
}

// Store is the image-record cache behind get_image_data. TTL and size
// ceiling follow the live configuration so a reload applies to new puts
// and reads without a rebuild.
type Store struct {
	cache *cache.Manager[ImageRecord]
}

func NewStore() *Store {
	ttl := time.Duration(config.GConfig.ImageRecordTTL) * time.Second
	return &Store{cache: cache.NewManager[ImageRecord](ttl, 10*time.Minute)}
}

func (s *Store) Put(image mcp.ImageInfo) error {
	rec := ImageRecord{Image: image, CreatedAt: time.Now()}
	ttl := time.Duration(config.GConfig.ImageRecordTTL) * time.Second
	return s.cache.SetWithExpiration(image.Id, rec, ttl)
}

// Get returns the record or ErrNotFound once expired; expiry is evaluated
// by the cache itself at read time. Oversized payloads fail with
// *TooLargeError.
func (s *Store) Get(id string) (ImageRecord, error) {
	rec, found, err := s.cache.Get(id)
	if err != nil {
		return ImageRecord{}, err
	}
	if !found {
		return ImageRecord{}, ErrNotFound
	}
	maxBytes := config.GConfig.GetImageDataMaxBytes
	if maxBytes > 0 && int64(rec.Image.SizeBytes) > maxBytes {
		return ImageRecord{}, &TooLargeError{SizeBytes: rec.Image.SizeBytes, MaxBytes: maxBytes}
	}
	return rec, nil
}
