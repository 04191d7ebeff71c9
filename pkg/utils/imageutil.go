package utils

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DetectContentType sniffs the first bytes of data.
func DetectContentType(data []byte) string {
	return http.DetectContentType(data)
}

// IsValidImageType checks if content type is a decodable image type
func IsValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
		"image/tiff",
	}

	ct := strings.ToLower(contentType)
	for _, validType := range validTypes {
		if strings.Contains(ct, validType) {
			return true
		}
	}
	return false
}

// GenerateStorageKey builds the bucket key for a batch archive.
func GenerateStorageKey(batchID, filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filepath.Base(filename), ext)
	name = strings.ReplaceAll(name, ":", "x")
	timestamp := time.Now().Unix()

	return fmt.Sprintf("archives/%s_%d_%s%s", name, timestamp, batchID, ext)
}

// AttachmentDisposition returns a Content-Disposition value that makes
// browsers save the response as filename.
func AttachmentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
