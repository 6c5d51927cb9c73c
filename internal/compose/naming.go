package compose

import (
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
)

// fallbackServiceName is used when no usable name can be derived from
// the input path.
const fallbackServiceName = "app"

// ServiceNameFor derives the compose service name from the Dockerfile's
// containing directory: the directory's base name, lowercased and with
// characters outside the Compose service-name alphabet replaced by "-".
// Stdin input and unusable directory names fall back to "app".
func ServiceNameFor(dockerfilePath string) string {
	if dockerfilePath == "" || dockerfilePath == "-" {
		return fallbackServiceName
	}

	abs, err := filepath.Abs(dockerfilePath)
	if err != nil {
		return fallbackServiceName
	}

	name := sanitizeServiceName(filepath.Base(filepath.Dir(abs)))
	if name == "" {
		return fallbackServiceName
	}
	return name
}

// ImageFor returns the image tag recorded for a service, "<service>:latest".
// Names that do not survive Docker reference normalization fall back to
// "app:latest".
func ImageFor(serviceName string) string {
	image := serviceName + ":latest"
	if _, err := reference.ParseNormalizedNamed(image); err != nil {
		return fallbackServiceName + ":latest"
	}
	return image
}

// sanitizeServiceName maps a directory name onto the [a-z0-9._-]
// alphabet Compose accepts for service keys.
func sanitizeServiceName(dir string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, dir)

	return strings.Trim(mapped, "-.")
}
