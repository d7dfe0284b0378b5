package mime

import "strings"

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	JSON        MIME = "application/json"
	XML         MIME = "application/xml"
)

// textual lists the content types, besides text/*, whose payloads are character data.
var textual = []string{
	"text/",
	"application/atom+xml",
	"application/ecmascript",
	"application/json",
	"application/javascript",
	"application/rdf+xml",
	"application/rss+xml",
	"application/soap+xml",
	"application/xhtml+xml",
	"application/xml",
	"application/xml-dtd",
	"application/xop+xml",
	"image/svg+xml",
	"message/http",
	"message/imdn+xml",
}

// IsTextual reports whether a body of the content type may be decoded into characters.
// The comparison is a case-insensitive prefix match, so parameters (e.g. charset) are
// ignored.
func IsTextual(contentType string) bool {
	contentType = strings.ToLower(contentType)

	for _, prefix := range textual {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}

	return false
}
