package main

import (
	"strings"

	"github.com/indigo-web/conveyor/config"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "CONVEYOR"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys unknown to viper are never looked up in the environment, so every one of
	// them has to have a default
	def := config.Default()
	v.SetDefault("net.stop_timeout", def.NET.StopTimeout)
	v.SetDefault("net.accept_backoff", def.NET.AcceptBackoff)
	v.SetDefault("net.write_buffer_size", def.NET.WriteBufferSize)
	v.SetDefault("headers.max_line_length", def.Headers.MaxLineLength)
	v.SetDefault("headers.max_number", def.Headers.MaxNumber)
	v.SetDefault("headers.default", def.Headers.Default)
	v.SetDefault("body.max_size", def.Body.MaxSize)
	v.SetDefault("body.chunk_size", def.Body.ChunkSize)
	v.SetDefault("body.keep_binary", def.Body.KeepBinary)
	v.SetDefault("http.server_name", def.HTTP.ServerName)

	return v
}

// loadConfig reads the config file, if any, and decodes everything viper knows into the
// server config. Durations may be written as strings, e.g. "500ms".
func loadConfig(v *viper.Viper, file string) (*config.Config, error) {
	if len(file) > 0 {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := config.Default()
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc()))
	if err != nil {
		return nil, err
	}

	return config.Fill(cfg), nil
}
