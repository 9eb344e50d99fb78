package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/flagx"
)

var knownFlags = []string{
	"-a", "-m", "-d", "-s", "-l", "-t", "-r", "-o",
	"-storage", "-f", "-u", "-p", "-b", "-g", "-e",
	"-mail-host", "-mail-port", "-mail-user", "-mail-password", "-mail-from",
}

// parseFlags overlays command-line flags on config.
//
//	-a string   HTTP bind address
//	-m string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret
//	-l string   public base URL used for poster links
//	-t int      access token lifetime, seconds
//	-r int      refresh token lifetime, seconds
//	-o int      OTP lifetime, seconds
//	-storage    poster storage backend: local or s3
//	-f string   local poster directory
//	-u/-p/-b/-g/-e  S3 user, password, bucket, region, endpoint
//	-mail-*     SMTP host, port, user, password, from
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address")
	fs.StringVar(&config.EndpointAddrGRPC, "m", config.EndpointAddrGRPC, "gRPC health address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	fs.StringVar(&config.BaseURL, "l", config.BaseURL, "public base URL")

	accessTTL := fs.Int("t", int(config.AccessTokenTTL.Seconds()), "access token lifetime (seconds)")
	refreshTTL := fs.Int("r", int(config.RefreshTokenTTL.Seconds()), "refresh token lifetime (seconds)")
	otpTTL := fs.Int("o", int(config.OtpTTL.Seconds()), "OTP lifetime (seconds)")

	fs.StringVar(&config.PosterStorage, "storage", config.PosterStorage, "poster storage: local or s3")
	fs.StringVar(&config.PosterDir, "f", config.PosterDir, "local poster directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 endpoint")

	fs.StringVar(&config.MailHost, "mail-host", config.MailHost, "SMTP host")
	fs.IntVar(&config.MailPort, "mail-port", config.MailPort, "SMTP port")
	fs.StringVar(&config.MailUser, "mail-user", config.MailUser, "SMTP user")
	fs.StringVar(&config.MailPassword, "mail-password", config.MailPassword, "SMTP password")
	fs.StringVar(&config.MailFrom, "mail-from", config.MailFrom, "sender address")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.AccessTokenTTL = time.Duration(*accessTTL) * time.Second
	config.RefreshTokenTTL = time.Duration(*refreshTTL) * time.Second
	config.OtpTTL = time.Duration(*otpTTL) * time.Second
	return nil
}
