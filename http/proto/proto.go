package proto

import "strings"

type Proto uint8

const (
	Unknown Proto = 0
	HTTP09  Proto = 1 << iota
	HTTP10
	HTTP11

	HTTP1 = HTTP10 | HTTP11
)

// Scheme is the literal prefix every protocol token must carry.
const Scheme = "HTTP/"

func (p Proto) String() string {
	switch p {
	case HTTP09:
		return "HTTP/0.9"
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return ""
	}
}

// HasScheme reports whether the token starts with the HTTP/ prefix. The check is
// case-sensitive, as the protocol token itself is.
func HasScheme(token string) bool {
	return strings.HasPrefix(token, Scheme)
}

// Parse returns the protocol corresponding to the token. Only the exact tokens
// HTTP/0.9, HTTP/1.0 and HTTP/1.1 are recognized, everything else results in Unknown.
func Parse(token string) Proto {
	switch token {
	case "HTTP/1.1":
		return HTTP11
	case "HTTP/1.0":
		return HTTP10
	case "HTTP/0.9":
		return HTTP09
	default:
		return Unknown
	}
}

// PersistentByDefault reports whether connections speaking the protocol are kept alive
// unless explicitly told otherwise. HTTP/1.0 keep-alive opt-in isn't supported.
func (p Proto) PersistentByDefault() bool {
	return p == HTTP11
}
