package media

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// IsDataURL reports whether the string looks like a base64 image payload
// rather than a stored path. Mirrors the lenient client contract: an
// explicit data URL, or any long opaque string, is treated as image data.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image/") || len(s) > 100
}

// DecodeDataURL decodes a base64 image submission and returns the raw
// bytes together with the file extension implied by the declared content
// type. jpeg maps to .jpg; unknown or missing types fall back to .jpg.
func DecodeDataURL(s string) ([]byte, string, error) {
	ext := ".jpg"
	payload := s

	if strings.HasPrefix(s, "data:") {
		semi := strings.Index(s, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("malformed data url")
		}
		mimeType := strings.TrimPrefix(s[:semi], "data:")
		payload = s[semi+len(";base64,"):]

		if sub := strings.TrimPrefix(mimeType, "image/"); sub != mimeType && sub != "" {
			switch sub {
			case "jpeg", "jpg":
				ext = ".jpg"
			case "png", "gif", "webp", "bmp":
				ext = "." + sub
			default:
				ext = ".jpg"
			}
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image data: %w", err)
	}
	return data, ext, nil
}

// ContentTypeForExt maps a filename extension to the image content type
// used when writing to the file store.
func ContentTypeForExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
