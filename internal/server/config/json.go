package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/authkeep/authkeep/internal/flagx"
	"github.com/authkeep/authkeep/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	Addr        string `json:"addr"`
	DatabaseDSN string `json:"database_dsn"`

	SecretKey        string         `json:"secret_key"`
	JWTAlgorithm     string         `json:"jwt_algorithm"`
	JWTIssuer        string         `json:"jwt_issuer"`
	JWTAudience      string         `json:"jwt_audience"`
	JWTHeaders       map[string]any `json:"jwt_headers"`
	JWTPublicClaims  map[string]any `json:"jwt_public_claims"`
	JWTPrivateClaims map[string]any `json:"jwt_private_claims"`

	AccessTokenValidity  timex.Duration `json:"access_token_validity"`
	RefreshTokenValidity timex.Duration `json:"refresh_token_validity"`
	VerifyTokenValidity  timex.Duration `json:"verify_token_validity"`
	ResetTokenValidity   timex.Duration `json:"reset_token_validity"`

	ScryptN       int `json:"scrypt_n"`
	ScryptR       int `json:"scrypt_r"`
	ScryptP       int `json:"scrypt_p"`
	ScryptSaltLen int `json:"scrypt_salt_len"`
	ScryptKeyLen  int `json:"scrypt_key_len"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	SMTPFrom     string `json:"smtp_from"`
	SMTPSecure   bool   `json:"smtp_secure"`

	VerifyAccountBaseURL string `json:"verify_account_base_url"`
	ResetPasswordBaseURL string `json:"reset_password_base_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags. If
// neither is set, no JSON file is loaded. Only keys present in the file
// override the current values, so a partial file overlays the defaults.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.Addr, c.Addr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.JWTAlgorithm, c.JWTAlgorithm)
	setString(&config.JWTIssuer, c.JWTIssuer)
	setString(&config.JWTAudience, c.JWTAudience)
	if c.JWTHeaders != nil {
		config.JWTHeaders = c.JWTHeaders
	}
	if c.JWTPublicClaims != nil {
		config.JWTPublicClaims = c.JWTPublicClaims
	}
	if c.JWTPrivateClaims != nil {
		config.JWTPrivateClaims = c.JWTPrivateClaims
	}

	setDuration(&config.AccessTokenValidity, c.AccessTokenValidity)
	setDuration(&config.RefreshTokenValidity, c.RefreshTokenValidity)
	setDuration(&config.VerifyTokenValidity, c.VerifyTokenValidity)
	setDuration(&config.ResetTokenValidity, c.ResetTokenValidity)

	setInt(&config.ScryptN, c.ScryptN)
	setInt(&config.ScryptR, c.ScryptR)
	setInt(&config.ScryptP, c.ScryptP)
	setInt(&config.ScryptSaltLen, c.ScryptSaltLen)
	setInt(&config.ScryptKeyLen, c.ScryptKeyLen)

	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	if c.SMTPSecure {
		config.SMTPSecure = true
	}

	setString(&config.VerifyAccountBaseURL, c.VerifyAccountBaseURL)
	setString(&config.ResetPasswordBaseURL, c.ResetPasswordBaseURL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = time.Duration(v.Duration)
	}
}
