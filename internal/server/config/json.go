package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/movieapi/internal/flagx"
	"github.com/dmitrijs2005/movieapi/internal/timex"
)

// JsonConfig mirrors Config for file decoding. Durations accept "25s" or
// integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	BaseURL          string         `json:"base_url"`
	AccessTokenTTL   timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL  timex.Duration `json:"refresh_token_ttl"`
	OtpTTL           timex.Duration `json:"otp_ttl"`
	PosterStorage    string         `json:"poster_storage"`
	PosterDir        string         `json:"poster_dir"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	MailHost         string         `json:"mail_host"`
	MailPort         int            `json:"mail_port"`
	MailUser         string         `json:"mail_user"`
	MailPassword     string         `json:"mail_password"`
	MailFrom         string         `json:"mail_from"`
}

// parseJson overlays the file named by -c/-config. Keys missing from the
// file keep their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.PosterStorage, c.PosterStorage)
	setString(&config.PosterDir, c.PosterDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.MailHost, c.MailHost)
	setString(&config.MailUser, c.MailUser)
	setString(&config.MailPassword, c.MailPassword)
	setString(&config.MailFrom, c.MailFrom)

	if c.MailPort != 0 {
		config.MailPort = c.MailPort
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.OtpTTL.Duration != 0 {
		config.OtpTTL = c.OtpTTL.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
