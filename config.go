/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowedOrigins    []string
	bind              string
	exclusiveHost     bool
	expirySweep       time.Duration
	maxMessageSize    int64
	passwordTTL       time.Duration
	port              int
	prefix            string
	profile           bool
	rateLimitBurst    int
	rateLimitInterval time.Duration
	staticDir         string
	tlsCert           string
	tlsKey            string
	verbose           bool
	version           bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.passwordTTL <= 0 {
		return fmt.Errorf("invalid password ttl (must be positive): %s", c.passwordTTL)
	}
	if c.expirySweep < 0 {
		return fmt.Errorf("invalid expiry sweep interval (must not be negative): %s", c.expirySweep)
	}
	if c.maxMessageSize < 64 {
		return fmt.Errorf("invalid max message size (must be at least 64 bytes): %d", c.maxMessageSize)
	}
	if c.rateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit burst (must be at least 1): %d", c.rateLimitBurst)
	}
	if c.rateLimitInterval <= 0 {
		return fmt.Errorf("invalid rate limit interval (must be positive): %s", c.rateLimitInterval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PHOLIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "pholight",
		Short:         "Synchronized party lighting: one host picks the colors, every phone in the room shows them.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed to open a websocket; empty allows all (env: PHOLIGHT_ALLOWED_ORIGINS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PHOLIGHT_BIND)")
	fs.BoolVar(&cfg.exclusiveHost, "exclusive-host", false, "demote any other host when a host logs in (env: PHOLIGHT_EXCLUSIVE_HOST)")
	fs.DurationVar(&cfg.expirySweep, "expiry-sweep", 0, "how often to rotate an expired, unused password; 0 rotates only on login (env: PHOLIGHT_EXPIRY_SWEEP)")
	fs.Int64Var(&cfg.maxMessageSize, "max-message-size", 4096, "largest inbound websocket message, in bytes (env: PHOLIGHT_MAX_MESSAGE_SIZE)")
	fs.DurationVar(&cfg.passwordTTL, "password-ttl", 24*time.Hour, "lifetime of each generated host password (env: PHOLIGHT_PASSWORD_TTL)")
	fs.IntVarP(&cfg.port, "port", "p", 3000, "port to listen on (env: PHOLIGHT_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: PHOLIGHT_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: PHOLIGHT_PROFILE)")
	fs.IntVar(&cfg.rateLimitBurst, "rate-limit-burst", 20, "messages a client may send per rate limit interval (env: PHOLIGHT_RATE_LIMIT_BURST)")
	fs.DurationVar(&cfg.rateLimitInterval, "rate-limit-interval", time.Second, "interval over which the rate limit burst refills (env: PHOLIGHT_RATE_LIMIT_INTERVAL)")
	fs.StringVar(&cfg.staticDir, "static-dir", "", "directory of client assets to serve (env: PHOLIGHT_STATIC_DIR)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: PHOLIGHT_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: PHOLIGHT_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: PHOLIGHT_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PHOLIGHT_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pholight v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
