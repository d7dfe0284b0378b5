package http1

import (
	"errors"
	"io"
	"strings"

	"github.com/indigo-web/conveyor/config"
	"github.com/indigo-web/conveyor/http"
	"github.com/indigo-web/conveyor/http/headers"
	"github.com/indigo-web/conveyor/http/proto"
	"github.com/indigo-web/conveyor/http/status"
	"go.uber.org/zap"
)

// Parser reads requests off the client, one per call.
type Parser struct {
	client Client
	cfg    *config.Config
	log    *zap.Logger
}

func NewParser(client Client, cfg *config.Config, log *zap.Logger) *Parser {
	return &Parser{
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// Parse reads a single request including its body. If the stream ended before the
// request line, (nil, nil) is returned. Errors, which can be answered, are of the
// status.HTTPError type. Any other error means the connection is unusable.
func (p *Parser) Parse() (*http.Request, error) {
	line, err := p.client.ReadLine()
	switch {
	case errors.Is(err, io.EOF):
		p.log.Debug("end of stream")
		return nil, nil
	case err != nil:
		return nil, err
	}

	p.log.Debug("received request line", zap.String("line", line))

	method, path, protocol, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	hdrs, err := headers.Read(p.client, p.cfg.Headers.MaxNumber)
	if err != nil {
		return nil, err
	}

	p.log.Debug("received headers", zap.Int("count", hdrs.Len()))

	raw, err := p.readBody(hdrs)
	if err != nil {
		return nil, err
	}

	body := resolveBody(hdrs, raw, p.cfg.Body.KeepBinary)
	p.log.Debug("received body", zap.Stringer("kind", body.Kind()), zap.Int("length", body.Len()))

	request, err := http.NewRequest(method, path, protocol, hdrs, body)
	if err != nil {
		return nil, status.ErrBadRequest
	}

	return request, nil
}

// parseRequestLine splits the line by every single space or tab, so repeated whitespace
// produces empty tokens and thereby fails the request.
func parseRequestLine(line string) (method, path string, protocol proto.Proto, err error) {
	tokens := splitWhitespace(line)
	if len(tokens) != 3 {
		return "", "", proto.Unknown, status.ErrBadRequest
	}

	method, path, version := tokens[0], tokens[1], tokens[2]
	if !proto.HasScheme(version) {
		return "", "", proto.Unknown, status.NewPublicError(
			status.BadRequest, "Bad request version %q", version,
		)
	}

	protocol = proto.Parse(version)
	if protocol == proto.Unknown {
		return "", "", proto.Unknown, status.NewPublicError(
			status.HTTPVersionNotSupported, "Invalid HTTP Version %q", version,
		)
	}

	return method, path, protocol, nil
}

func splitWhitespace(line string) []string {
	tokens := make([]string, 0, 3)

	for {
		index := strings.IndexAny(line, " \t")
		if index == -1 {
			return append(tokens, line)
		}

		tokens = append(tokens, line[:index])
		line = line[index+1:]
	}
}
