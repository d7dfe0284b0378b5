package headers

import (
	"strings"

	"github.com/indigo-web/conveyor/kv"
	"github.com/indigo-web/utils/strcomp"
)

// ValueOf returns a value until first semicolon is met. Even if the value after semicolon
// is not a parameter, it will anyway be counted as a parameter
func ValueOf(str string) string {
	if index := strings.IndexByte(str, ';'); index != -1 {
		return strings.TrimSpace(str[:index])
	}

	return strings.TrimSpace(str)
}

// ParamOf looks for a parameter in a value, and if found, returns a parameter value.
// In case parameter is not found, or is returned
func ParamOf(str, key, or string) string {
	for _, param := range strings.Split(str, ";")[1:] {
		name, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if found && strcomp.EqualFold(name, key) {
			return strings.Trim(value, `"`)
		}
	}

	return or
}

// HasToken reports whether any value of the key contains the token in its comma-separated
// list. Tokens are compared case-insensitively.
func HasToken(headers *kv.Storage, key, token string) bool {
	for value := range headers.Values(key) {
		for _, t := range strings.Split(value, ",") {
			if strcomp.EqualFold(ValueOf(t), token) {
				return true
			}
		}
	}

	return false
}
