package validation

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/username/ustax/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed request body types.
var AllowedClientContentTypes = map[string]bool{
	"application/json":                  true,
	"text/json":                         true,
	"text/plain":                        false,
	"multipart/form-data":               false,
	"application/x-www-form-urlencoded": false,
}

// ValidateClientContentType checks the Content-Type header of a computation request.
func ValidateClientContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		logger.L.Warn("Unparseable client Content-Type", "contentType", contentType, "error", err)
		return fmt.Errorf("invalid Content-Type '%s'", contentType)
	}
	if allowed, exists := AllowedClientContentTypes[strings.ToLower(mediaType)]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("content type '%s' is not accepted, send application/json", mediaType)
	}
	return nil
}

// ValidateRuleFileContent sniffs the first bytes of a rule file and rejects anything that
// is not plain text. It returns the detected content type.
func ValidateRuleFileContent(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset so the YAML decoder reads the whole file.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	detected = strings.ToLower(strings.Split(detected, ";")[0])

	if detected != "text/plain" {
		logger.L.Warn("Disallowed detected rule file content type", "detectedContentType", detected)
		return detected, fmt.Errorf("detected content type '%s' is not consistent with a YAML rule file", detected)
	}

	logger.L.Debug("Rule file content type validated", "detectedContentType", detected)
	return detected, nil
}
