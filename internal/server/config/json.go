package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophaccount/internal/flagx"
	"github.com/dmitrijs2005/gophaccount/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "2h" and integer nanoseconds are accepted.
// Fields left out of the file keep their current values.
type JsonConfig struct {
	HTTPAddr           string         `json:"http_addr"`
	HealthAddrGRPC     string         `json:"grpc_health_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	ResetTokenValidity timex.Duration `json:"reset_token_validity"`
	SessionTTL         timex.Duration `json:"session_ttl"`
	RememberSessionTTL timex.Duration `json:"remember_session_ttl"`
	BcryptCost         int            `json:"bcrypt_cost"`
	SessionBackend     string         `json:"session_backend"`
	RedisAddr          string         `json:"redis_addr"`
	RedisPassword      string         `json:"redis_password"`
	RedisDB            int            `json:"redis_db"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUser           string         `json:"smtp_user"`
	SMTPPassword       string         `json:"smtp_password"`
	MailFrom           string         `json:"mail_from"`
	PublicBaseURL      string         `json:"public_base_url"`
	CookieSecure       *bool          `json:"cookie_secure"`
	AllowedOrigins     []string       `json:"allowed_origins"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	OTLPEndpoint       string         `json:"otlp_endpoint"`
	LogLevel           string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config in args, if any, and copies
// the fields it sets into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.ResetTokenValidity.Duration != 0 {
		config.ResetTokenValidity = c.ResetTokenValidity.Duration
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.RememberSessionTTL.Duration != 0 {
		config.RememberSessionTTL = c.RememberSessionTTL.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
