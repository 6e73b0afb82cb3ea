package answer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrInvalidImage = errors.New("invalid image encoding")

const defaultImageMIME = "image/jpeg"

// Image is a decoded attachment.
type Image struct {
	Data     []byte
	MIMEType string
}

// DecodeImage accepts plain base64 or a data URI. The MIME type is sniffed
// from the bytes and falls back to JPEG.
func DecodeImage(encoded string) (*Image, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(encoded)
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = defaultImageMIME
	}
	return &Image{Data: data, MIMEType: mime}, nil
}

// Base64 re-encodes the image for transports that carry it inline.
func (img *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURI renders the image as a data URI.
func (img *Image) DataURI() string {
	return "data:" + img.MIMEType + ";base64," + img.Base64()
}

// Format is the MIME subtype, e.g. "png".
func (img *Image) Format() string {
	if _, sub, ok := strings.Cut(img.MIMEType, "/"); ok {
		return sub
	}
	return "jpeg"
}
