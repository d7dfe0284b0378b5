package http1

import (
	"strconv"
	"strings"

	"github.com/indigo-web/conveyor/http"
	"github.com/indigo-web/conveyor/http/headers"
	"github.com/indigo-web/conveyor/http/mime"
	"github.com/indigo-web/conveyor/http/status"
	"github.com/indigo-web/conveyor/kv"
	"github.com/indigo-web/utils/strcomp"
	"go.uber.org/zap"
)

// readBody determines the body length out of the headers and reads it. Transfer-Encoding
// takes precedence over Content-Length, except for the identity coding, which is ignored.
// Other codings than chunked aren't supported: the body is considered absent.
func (p *Parser) readBody(hdrs *kv.Storage) ([]byte, error) {
	if te, found := hdrs.Get(headers.TransferEncoding); found && !strcomp.EqualFold(te, headers.Identity) {
		if strcomp.EqualFold(te, headers.Chunked) {
			return ReadChunked(p.client, p.cfg.Headers.MaxNumber, p.cfg.Body.MaxSize)
		}

		p.log.Error("unsupported transfer-encoding, ignoring the body", zap.String("transfer_encoding", te))
		return nil, nil
	}

	length, err := contentLength(hdrs)
	switch {
	case err != nil:
		return nil, err
	case length > p.cfg.Body.MaxSize:
		return nil, status.ErrBodyTooLarge
	case length == 0:
		return nil, nil
	}

	body, err := p.client.ReadFull(int(length))
	if err != nil {
		return nil, unexpected(err)
	}

	return body, nil
}

// contentLength returns the declared body length, or 0 if there's none. The value must
// consist of decimal digits only. Repeated Content-Length fields must agree.
func contentLength(hdrs *kv.Storage) (int64, error) {
	length := int64(-1)

	for value := range hdrs.Values(headers.ContentLength) {
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 63)
		if err != nil || (length != -1 && int64(n) != length) {
			return 0, status.ErrBadContentLength
		}

		length = int64(n)
	}

	return max(length, 0), nil
}

// resolveBody decodes the raw body into characters if its content type is textual or
// absent, unless keepBinary is set.
func resolveBody(hdrs *kv.Storage, raw []byte, keepBinary bool) http.Body {
	if keepBinary {
		return http.Binary(raw)
	}

	if contentType, found := hdrs.Get(headers.ContentType); found && !mime.IsTextual(contentType) {
		return http.Binary(raw)
	}

	return http.Text(http.DecodeText(raw))
}
