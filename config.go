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
	apiKey         string
	bind           string
	clientTimeout  time.Duration
	countdown      int
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	timer          int
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
	words          string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.apiKey == "" {
		return errors.New("an API key is required (--api-key or INTESA_API_KEY)")
	}
	if c.timer < 1 {
		return fmt.Errorf("invalid play timer (must be at least 1 second): %d", c.timer)
	}
	if c.countdown < 1 {
		return fmt.Errorf("invalid guess countdown (must be at least 1 second): %d", c.countdown)
	}
	if c.clientTimeout < time.Second {
		return fmt.Errorf("invalid client timeout (must be at least 1 second): %s", c.clientTimeout)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
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
	v.SetEnvPrefix("INTESA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "intesa",
		Short:         "Session server for the Intesa Vincente party word-guessing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.apiKey, "api-key", "", "credential required to create or rejoin a session as controller (env: INTESA_API_KEY)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: INTESA_BIND)")
	fs.DurationVar(&cfg.clientTimeout, "client-timeout", 60*time.Second, "time before unresponsive websocket clients are dropped (env: INTESA_CLIENT_TIMEOUT)")
	fs.IntVar(&cfg.countdown, "countdown", 5, "guess countdown length in seconds (env: INTESA_COUNTDOWN)")
	fs.IntVarP(&cfg.port, "port", "p", 8000, "port to listen on (env: INTESA_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: INTESA_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: INTESA_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 30*time.Minute, "time before sessions with no connected clients are ended (env: INTESA_SESSION_TIMEOUT)")
	fs.IntVar(&cfg.timer, "timer", 60, "default play timer length in seconds (env: INTESA_TIMER)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: INTESA_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: INTESA_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: INTESA_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: INTESA_VERSION)")
	fs.StringVar(&cfg.words, "words", "", "path to a JSON array of words to draw from (env: INTESA_WORDS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("intesa v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
