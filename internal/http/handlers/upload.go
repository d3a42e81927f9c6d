package handlers

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"golang.org/x/image/webp"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/services"
)

// DefaultMaxImageBytes caps an uploaded place image.
const DefaultMaxImageBytes = 500_000

const msgInvalidMimeType = "Invalid mime type!"

var imageExtensions = []struct {
	mime string
	ext  string
}{
	{"image/png", "png"},
	{"image/jpeg", "jpg"},
	{"image/webp", "webp"},
}

// readImage reads the multipart file in field, sniffs its content type and
// returns the bytes with the extension to store them under.
func readImage(c *gin.Context, op, field string, maxBytes int64) ([]byte, string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", domainagg.NewError(domainagg.CodeValidation, op, services.MsgInvalidInputs, err)
	}
	if fh.Size > maxBytes {
		return nil, "", tooLarge(op, maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", domainagg.NewError(domainagg.CodeValidation, op, "Could not read the uploaded image.", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, "", domainagg.NewError(domainagg.CodeValidation, op, "Could not read the uploaded image.", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, "", tooLarge(op, maxBytes)
	}

	mt := mimetype.Detect(raw)
	for _, it := range imageExtensions {
		if !mt.Is(it.mime) {
			continue
		}
		if it.ext == "webp" {
			if _, err := webp.DecodeConfig(bytes.NewReader(raw)); err != nil {
				return nil, "", domainagg.NewError(domainagg.CodeValidation, op, msgInvalidMimeType, err)
			}
		}
		return raw, it.ext, nil
	}
	return nil, "", domainagg.NewError(domainagg.CodeValidation, op, msgInvalidMimeType,
		errors.New("unsupported content type "+mt.String()))
}

func tooLarge(op string, maxBytes int64) error {
	return domainagg.NewError(domainagg.CodeValidation, op,
		"Image is too large, the limit is "+strconv.FormatInt(maxBytes, 10)+" bytes.", nil)
}
