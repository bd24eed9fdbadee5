package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MaxObjectSize caps the decoded size of a single upload
const MaxObjectSize = 10 << 20

const defaultContentType = "application/octet-stream"

var (
	ErrEmptyPayload    = errors.New("file data is empty")
	ErrInvalidPayload  = errors.New("file data is not valid base64")
	ErrPayloadTooLarge = fmt.Errorf("file exceeds %d MiB", MaxObjectSize>>20)
)

// DecodePayload accepts plain base64 or a data URL ("data:image/png;base64,...").
// The returned content type is contentType if given, else the data URL's type,
// else application/octet-stream.
func DecodePayload(fileData, contentType string) ([]byte, string, error) {
	fileData = strings.TrimSpace(fileData)
	if strings.HasPrefix(fileData, "data:") {
		header, payload, ok := strings.Cut(fileData, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", ErrInvalidPayload
		}
		if contentType == "" {
			contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		fileData = payload
	}
	if fileData == "" {
		return nil, "", ErrEmptyPayload
	}
	if base64.StdEncoding.DecodedLen(len(fileData)) > MaxObjectSize+3 {
		return nil, "", ErrPayloadTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		return nil, "", ErrInvalidPayload
	}
	if len(data) > MaxObjectSize {
		return nil, "", ErrPayloadTooLarge
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	return data, contentType, nil
}
