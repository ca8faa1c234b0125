package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/authkeep/authkeep/internal/flagx"
	"github.com/authkeep/authkeep/internal/timex"
)

// JsonConfig is the JSON DTO for the client configuration file.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	AppID          string         `json:"app_id"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from the JSON file given via the
// -c or -config flags. If neither is set, nothing is loaded. Only keys
// present in the file override the current values.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerURL != "" {
		config.ServerURL = c.ServerURL
	}
	if c.AppID != "" {
		config.AppID = c.AppID
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
	}
}
