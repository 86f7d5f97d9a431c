package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Image is a validated upload read fully into memory so it can outlive the request
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ImageValidator checks a profile picture. The header is checked first since it
// is cheap, then the actual bytes are sniffed to avoid trusting the client
func ImageValidator(fh *multipart.FileHeader, maxSize int64) (int, *Image, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}
	defer f.Close()

	// Read one extra byte to catch clients lying about the size
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	if int64(len(data)) > maxSize {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	if len(data) == 0 {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), allowedImageTypes...) {
		return http.StatusBadRequest, nil, ErrFileTypeUnsupported
	}

	return 0, &Image{
		Data:        data,
		ContentType: mime.String(),
		Extension:   mime.Extension(),
	}, nil
}
