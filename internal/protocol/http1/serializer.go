package http1

import (
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/indigo-web/conveyor/config"
	"github.com/indigo-web/conveyor/http"
	"github.com/indigo-web/conveyor/http/headers"
	"github.com/indigo-web/conveyor/http/mime"
	"github.com/indigo-web/conveyor/http/proto"
	"github.com/indigo-web/conveyor/internal/timer"
	"github.com/indigo-web/conveyor/kv"
	"go.uber.org/zap"
)

// DateFormat is the IMF-fixdate layout of the Date header. Time must be in UTC.
const DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Serializer writes responses. The status line always carries HTTP/1.1, regardless of the
// request's protocol.
type Serializer struct {
	client   Writer
	cfg      *config.Config
	log      *zap.Logger
	banner   string
	defaults []kv.Pair
	now      func() time.Time
}

func NewSerializer(client Writer, cfg *config.Config, log *zap.Logger, banner string) *Serializer {
	return &Serializer{
		client:   client,
		cfg:      cfg,
		log:      log,
		banner:   banner,
		defaults: sortDefaults(cfg.Headers.Default),
		now:      timer.Now,
	}
}

// Write serializes the response and sends it, flushing after the status line, every
// header line, the end of the header block and every chunk of a chunked body.
func (s *Serializer) Write(response *http.Response) error {
	fields := response.Reveal()
	hdrs := ApplyDefaults(fields, s.banner, s.defaults, s.now())

	statusLine := proto.HTTP11.String() + " " + strconv.Itoa(int(fields.Code)) + " " + fields.Status
	s.log.Debug("sending status line", zap.String("line", statusLine))

	if err := s.writeLine(statusLine); err != nil {
		return err
	}

	for key, value := range hdrs.Pairs() {
		if err := s.writeLine(key + ": " + value); err != nil {
			return err
		}
	}

	if err := s.writeLine(""); err != nil {
		return err
	}

	body := fields.Body.Bytes()
	if headers.HasToken(hdrs, headers.TransferEncoding, headers.Chunked) {
		s.log.Debug("sending chunked body", zap.Int("length", len(body)))
		return WriteChunked(s.client, body, s.cfg.Body.ChunkSize)
	}

	if len(body) == 0 {
		return nil
	}

	s.log.Debug("sending body", zap.Int("length", len(body)))

	if err := s.client.Write(body); err != nil {
		return err
	}

	return s.client.Flush()
}

func (s *Serializer) writeLine(line string) error {
	if err := s.client.WriteString(line); err != nil {
		return err
	}

	if err := s.client.Write(crlf); err != nil {
		return err
	}

	return s.client.Flush()
}

// ApplyDefaults returns a copy of the response headers, completed by the fields the
// server fills implicitly. Present fields are never overridden:
//   - Server and Date are always added;
//   - defaults go next;
//   - Content-Length and Content-Type describe non-empty bodies. Content-Length isn't
//     added if the body is transfer-coded;
//   - Content-Length: 0 is added if there's neither Content-Length nor Transfer-Encoding.
func ApplyDefaults(fields *http.Fields, banner string, defaults []kv.Pair, now time.Time) *kv.Storage {
	hdrs := fields.Headers.Clone()

	addIfAbsent(hdrs, headers.Server, banner)
	addIfAbsent(hdrs, headers.Date, now.UTC().Format(DateFormat))

	for _, pair := range defaults {
		addIfAbsent(hdrs, pair.Key, pair.Value)
	}

	if length := fields.Body.Len(); length > 0 {
		if !hdrs.Has(headers.TransferEncoding) {
			addIfAbsent(hdrs, headers.ContentLength, strconv.Itoa(length))
		}

		contentType := mime.Plain
		if fields.Body.IsBinary() {
			contentType = mime.OctetStream
		}

		addIfAbsent(hdrs, headers.ContentType, contentType)
	}

	if !hdrs.Has(headers.ContentLength) && !hdrs.Has(headers.TransferEncoding) {
		hdrs.Add(headers.ContentLength, "0")
	}

	return hdrs
}

func addIfAbsent(hdrs *kv.Storage, key, value string) {
	if !hdrs.Has(key) {
		hdrs.Add(key, value)
	}
}

func sortDefaults(defaults map[string]string) []kv.Pair {
	pairs := make([]kv.Pair, 0, len(defaults))
	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		pairs = append(pairs, kv.Pair{Key: key, Value: defaults[key]})
	}

	return pairs
}
