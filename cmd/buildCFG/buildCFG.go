package buildCFG

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) *ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.GetString("server.port")
	}
	if port == "" {
		port = "8080"
	}
	log.Info().Msgf("Server will listen on port %s", port)
	return &ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := os.Getenv("DATABASE_URL")
	if masterDSN == "" {
		masterDSN = cfg.GetString("database.master_dsn")
	}
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("database DSN is not configured (set DATABASE_URL or database.master_dsn)")
	}

	opts := &dbpg.Options{
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}
	if v := cfg.GetInt("database.max_open_conns"); v > 0 {
		opts.MaxOpenConns = v
	}
	if v := cfg.GetInt("database.max_idle_conns"); v > 0 {
		opts.MaxIdleConns = v
	}

	log.Info().
		Int("max_open_conns", opts.MaxOpenConns).
		Int("max_idle_conns", opts.MaxIdleConns).
		Msg("Database config built")
	return masterDSN, nil, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (*RabbitConfig, error) {
	url := os.Getenv("RABBIT_URL")
	if url == "" {
		url = cfg.GetString("rabbit.url")
	}
	if url == "" {
		return nil, fmt.Errorf("rabbit url is not configured (set RABBIT_URL or rabbit.url)")
	}

	rabbitCfg := &RabbitConfig{
		Url:      url,
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rabbitCfg.Exchange == "" {
		rabbitCfg.Exchange = "rsvp.activity"
	}
	if rabbitCfg.Queue == "" {
		rabbitCfg.Queue = "rsvp.activity.feed"
	}

	log.Info().
		Str("exchange", rabbitCfg.Exchange).
		Str("queue", rabbitCfg.Queue).
		Msg("RabbitMQ config built")
	return rabbitCfg, nil
}
