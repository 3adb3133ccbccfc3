package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/netx"
)

// Config holds runtime settings for the CLI.
type Config struct {
	ServerURL      string
	PublicOrigin   string
	StateDBPath    string
	DownloadDir    string
	RequestTimeout time.Duration
	LogoutTimeout  time.Duration
	LogLevel       string
}

// LoadDefaults populates c with defaults suited to a local development
// server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000/api"
	c.PublicOrigin = ""
	c.StateDBPath = "mycloud.db"
	c.DownloadDir = "downloads"
	c.RequestTimeout = 30 * time.Second
	c.LogoutTimeout = 5 * time.Second
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file, then flags, all taken
// from os.Args. It panics on malformed input.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	cfg.derive()
	return cfg
}

// derive fills PublicOrigin from ServerURL when unset.
func (c *Config) derive() {
	if c.PublicOrigin != "" {
		return
	}
	if origin, err := netx.Origin(c.ServerURL); err == nil {
		c.PublicOrigin = origin
	}
}
