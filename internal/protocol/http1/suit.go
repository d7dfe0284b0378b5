package http1

import (
	"github.com/indigo-web/conveyor/config"
	"go.uber.org/zap"
)

// Suit pairs the HTTP/1.x parser and serializer working on the same client.
type Suit struct {
	*Parser
	*Serializer
}

func New(client Client, cfg *config.Config, log *zap.Logger, banner string) *Suit {
	log = log.Named("http1")

	return &Suit{
		Parser:     NewParser(client, cfg, log),
		Serializer: NewSerializer(client, cfg, log, banner),
	}
}
