package nutrition

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const maxImageSize = 8 << 20

// ImageStore keeps meal images on local disk, one folder per identity,
// one file per log id.
type ImageStore struct {
	rootPath string
	mutex    sync.RWMutex
}

func NewImageStore(rootPath string) (*ImageStore, error) {
	if rootPath == "" {
		return nil, errors.New("root path cannot be empty")
	}
	if err := pkg.EnsureDir(rootPath); err != nil {
		return nil, fmt.Errorf("ensure images dir: %w", err)
	}
	return &ImageStore{
		rootPath: rootPath,
	}, nil
}

func (s *ImageStore) Save(ctx context.Context, identity, id string, data []byte) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "imageStore.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("image.size", len(data)))

	filePath, err := s.pathFor(identity, id)
	if err != nil {
		return err
	}
	if len(data) == 0 || len(data) > maxImageSize {
		return fmt.Errorf("%w: size %d", ErrInvalidImage, len(data))
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := pkg.EnsureDir(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	log.Debugf("image store: saved image [%s], %d bytes", id, len(data))
	return nil
}

// Open returns the image bytes and their sniffed content type.
func (s *ImageStore) Open(ctx context.Context, identity, id string) (_ []byte, contentType string, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "imageStore.open")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	filePath, err := s.pathFor(identity, id)
	if err != nil {
		return nil, "", err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrImageMissing
		}
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

func (s *ImageStore) pathFor(identity, id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: bad id", ErrInvalidImage)
	}
	if identity == "" {
		return "", errors.New("identity cannot be empty")
	}
	folder := uuid.NewSHA1(uuid.NameSpaceOID, []byte(identity)).String()
	return filepath.Join(s.rootPath, folder, id), nil
}

// DecodeDataURL splits a "data:<mime>;base64,<payload>" string.
func DecodeDataURL(s string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data url", ErrInvalidImage)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: no payload", ErrInvalidImage)
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: not base64", ErrInvalidImage)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}
	return mimeType, data, nil
}
