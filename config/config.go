package config

import "time"

type (
	NET struct {
		// StopTimeout bounds how long stopping the listener or a connection waits for its
		// goroutine to exit after the stop has been signalled. Once it elapses, the goroutine
		// is abandoned.
		StopTimeout time.Duration `mapstructure:"stop_timeout"`
		// AcceptBackoff caps the delay between retries after a failed Accept() call. The
		// delay starts at 5ms and doubles on every consecutive failure.
		AcceptBackoff time.Duration `mapstructure:"accept_backoff"`
		// WriteBufferSize is the size of the buffer responses are written through. It is
		// flushed after every logical unit (status line, header line, chunk) anyway.
		WriteBufferSize int `mapstructure:"write_buffer_size"`
	}

	Headers struct {
		// MaxLineLength limits the request line, every header line and every chunk-size line.
		MaxLineLength int `mapstructure:"max_line_length"`
		// MaxNumber is the maximal number of header (or trailer) fields per message.
		MaxNumber int `mapstructure:"max_number"`
		// Default headers are included into every response implicitly, unless explicitly
		// overridden.
		Default map[string]string `mapstructure:"default" test:"nullable"`
	}

	Body struct {
		// MaxSize is the maximal size of a request body, either declared via Content-Length
		// or accumulated from chunks.
		MaxSize int64 `mapstructure:"max_size"`
		// ChunkSize is the size of chunks chunked response bodies are split into.
		ChunkSize int `mapstructure:"chunk_size"`
		// KeepBinary disables decoding request bodies of textual content types into
		// characters, so every request body is kept binary.
		KeepBinary bool `mapstructure:"keep_binary" test:"nullable"`
	}

	HTTP struct {
		// ServerName is the product token of the Server response header.
		ServerName string `mapstructure:"server_name"`
	}
)

// Config holds settings used across various parts of conveyor, mainly timeouts, limits and
// response defaults.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because zero values aren't meaningful for most of the fields.
type Config struct {
	NET     NET     `mapstructure:"net"`
	Headers Headers `mapstructure:"headers"`
	Body    Body    `mapstructure:"body"`
	HTTP    HTTP    `mapstructure:"http"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			StopTimeout:     time.Second,
			AcceptBackoff:   time.Second,
			WriteBufferSize: 4 * 1024,
		},
		Headers: Headers{
			MaxLineLength: 64 * 1024,
			MaxNumber:     100,
			Default:       make(map[string]string),
		},
		Body: Body{
			MaxSize:   512 * 1024 * 1024, // 512 megabytes
			ChunkSize: 4096,
		},
		HTTP: HTTP{
			ServerName: "Conveyor",
		},
	}
}

// Fill replaces zero-valued fields of the config by their defaults. Nil is treated as an
// empty config.
func Fill(cfg *Config) *Config {
	def := Default()
	if cfg == nil {
		return def
	}

	filled := *cfg
	fill(&filled.NET.StopTimeout, def.NET.StopTimeout)
	fill(&filled.NET.AcceptBackoff, def.NET.AcceptBackoff)
	fill(&filled.NET.WriteBufferSize, def.NET.WriteBufferSize)
	fill(&filled.Headers.MaxLineLength, def.Headers.MaxLineLength)
	fill(&filled.Headers.MaxNumber, def.Headers.MaxNumber)
	fill(&filled.Body.MaxSize, def.Body.MaxSize)
	fill(&filled.Body.ChunkSize, def.Body.ChunkSize)
	fill(&filled.HTTP.ServerName, def.HTTP.ServerName)

	if filled.Headers.Default == nil {
		filled.Headers.Default = def.Headers.Default
	}

	return &filled
}

func fill[T comparable](field *T, otherwise T) {
	var zero T
	if *field == zero {
		*field = otherwise
	}
}
