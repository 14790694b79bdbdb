package storage

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/bookyourstay/stay-api/internal/pkg/apperr"
)

// MaxImageSize is the largest accepted photo upload (10 MB).
const MaxImageSize int64 = 10 << 20

var (
	ErrFileTooLarge    = apperr.New(apperr.KindValidation, "FILE_TOO_LARGE", "file exceeds maximum size")
	ErrInvalidMimeType = apperr.New(apperr.KindValidation, "INVALID_FILE_TYPE", "file type not allowed")
	ErrEmptyFile       = apperr.New(apperr.KindValidation, "EMPTY_FILE", "file is empty")
)

// imageTypes maps the accepted sniffed content types to their extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ReadImage reads at most maxSize bytes (MaxImageSize when maxSize <= 0)
// and sniffs the content. The declared content type of the upload is never
// trusted.
func ReadImage(reader io.Reader, maxSize int64) ([]byte, string, error) {
	if maxSize <= 0 {
		maxSize = MaxImageSize
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, "", ErrEmptyFile
	case int64(len(data)) > maxSize:
		return nil, "", ErrFileTooLarge.Withf("file exceeds %d bytes", maxSize)
	}

	mimeType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return nil, "", ErrInvalidMimeType
	}
	if _, ok := imageTypes[mimeType]; !ok {
		return nil, "", ErrInvalidMimeType
	}
	return data, mimeType, nil
}

// ExtensionFor returns the file extension for an accepted image type, or "".
func ExtensionFor(mimeType string) string {
	return imageTypes[mimeType]
}
