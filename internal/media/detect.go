package media

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLen is how many leading bytes DetectVideo needs for reliable results.
const SniffLen = 3072

// ErrUnsupportedVideoType is returned when the content is not an allowed video type.
var ErrUnsupportedVideoType = errors.New("unsupported video type")

// DefaultVideoTypes is the container whitelist used when none is configured.
var DefaultVideoTypes = []string{
	"video/mp4",
	"video/quicktime",
	"video/webm",
	"video/x-matroska",
}

// Detected is the result of sniffing a video header.
type Detected struct {
	MIME      string
	Extension string
}

// DetectVideo inspects the leading bytes of a file and returns its type if it
// is one of allowed. The client-supplied content type is never consulted.
func DetectVideo(header []byte, allowed []string) (Detected, error) {
	if len(allowed) == 0 {
		allowed = DefaultVideoTypes
	}
	mt := mimetype.Detect(header)
	for _, a := range allowed {
		if mt.Is(a) {
			return Detected{MIME: a, Extension: mt.Extension()}, nil
		}
	}
	return Detected{}, fmt.Errorf("%w: %s", ErrUnsupportedVideoType, mt.String())
}
