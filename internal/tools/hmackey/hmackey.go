// Package hmackey generates shared secrets for signing inbound webhooks.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// DefaultEnvName is the variable the onboarding service reads its webhook
// secret from.
const DefaultEnvName = "ONBOARDING_WEBHOOK_SECRET"

// minBytes keeps generated secrets at least as long as a SHA-256 block half.
const minBytes = 16

// Config holds configuration for secret generation.
type Config struct {
	Bytes   int
	EnvName string
	Raw     bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32, EnvName: DefaultEnvName}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes")
	fs.StringVar(&cfg.EnvName, "env", cfg.EnvName, "environment variable name to emit")
	fs.BoolVar(&cfg.Raw, "raw", false, "print only the hex secret")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the secret and writes it to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes < minBytes {
		return fmt.Errorf("bytes must be at least %d", minBytes)
	}
	if out == nil {
		return errors.New("output is required")
	}
	name := strings.TrimSpace(cfg.EnvName)
	if !cfg.Raw && name == "" {
		return errors.New("env name is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if cfg.Raw {
		_, err := fmt.Fprintln(out, secret)
		return err
	}
	_, err := fmt.Fprintf(out, "%s=%s\n", name, secret)
	return err
}
