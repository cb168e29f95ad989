package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/vision"

	"github.com/gabriel-vasile/mimetype"
)

const uploadModule = "UploadService"

// StoredImage is an uploaded image and its stable, content-addressed URL.
type StoredImage struct {
	Url      string
	Filename string
	Image    vision.Image
}

type IUploadService interface {
	// Save stores data under sha256(data)+ext. Saving identical bytes twice yields the same URL.
	Save(ctx context.Context, data []byte, originalName string) (*StoredImage, error)
}

type uploadService struct {
	dir      string
	baseURL  string
	maxBytes int
	logger   logger.ILogger
}

// NewUploadService serves files from dir under baseURL + "/uploads/".
func NewUploadService(dir, baseURL string, maxBytes int, log logger.ILogger) IUploadService {
	return &uploadService{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		logger:   log,
	}
}

func (us *uploadService) Save(ctx context.Context, data []byte, originalName string) (*StoredImage, error) {
	if len(data) == 0 {
		return nil, apperror.Validation("file is empty")
	}
	if us.maxBytes > 0 && len(data) > us.maxBytes {
		return nil, apperror.Validation("file exceeds the %d byte limit", us.maxBytes)
	}

	img, err := vision.DetectImage(data)
	if err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}

	sum := sha256.Sum256(data)
	filename := hex.EncodeToString(sum[:]) + mimetype.Detect(data).Extension()

	if err := us.write(filename, data); err != nil {
		us.logger.Error(uploadModule, "Failed to store upload", map[string]interface{}{
			"original_name": originalName,
			"error":         err.Error(),
		})
		return nil, apperror.Upload(err)
	}

	us.logger.Info(uploadModule, "Image stored", map[string]interface{}{
		"original_name": originalName,
		"filename":      filename,
		"size":          len(data),
	})

	return &StoredImage{
		Url:      us.baseURL + "/uploads/" + filename,
		Filename: filename,
		Image:    img,
	}, nil
}

func (us *uploadService) write(filename string, data []byte) error {
	if err := os.MkdirAll(us.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	target := filepath.Join(us.dir, filename)
	if _, err := os.Stat(target); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	// Write then rename so readers never see a partial file.
	tmp, err := os.CreateTemp(us.dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
