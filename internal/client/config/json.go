package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mycloud/internal/flagx"
	"github.com/dmitrijs2005/mycloud/internal/timex"
)

// JsonConfig is the on-disk shape. Pointer fields tell an absent key from
// an empty one.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	PublicOrigin   *string         `json:"public_origin"`
	StateDBPath    *string         `json:"state_db_path"`
	DownloadDir    *string         `json:"download_dir"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogoutTimeout  *timex.Duration `json:"logout_timeout"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. It
// panics on read or decode errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.PublicOrigin, jc.PublicOrigin)
	setString(&cfg.StateDBPath, jc.StateDBPath)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogoutTimeout != nil {
		cfg.LogoutTimeout = jc.LogoutTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
