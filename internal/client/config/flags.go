package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/flagx"
)

// parseFlags overlays cfg with the flags listed in the package doc. Unknown
// arguments are filtered out first so other loaders can share args.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-o", "-d", "-l", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the REST API")
	fs.StringVar(&cfg.PublicOrigin, "o", cfg.PublicOrigin, "public origin for share links")
	fs.StringVar(&cfg.StateDBPath, "d", cfg.StateDBPath, "session database file")
	fs.StringVar(&cfg.DownloadDir, "l", cfg.DownloadDir, "download directory")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
