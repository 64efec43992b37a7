package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity
type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32

	// Guard/boot knobs:
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity for the run audit sink
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientName/ClientTag show up in ClickHouse client info for operators
	ClientName string
	ClientTag  string
}
