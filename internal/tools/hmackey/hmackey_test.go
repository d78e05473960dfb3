package hmackey

import (
	"bytes"
	"flag"
	"fmt"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("hmackey", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Bytes != 32 {
		t.Fatalf("bytes = %d, want 32", cfg.Bytes)
	}
	if cfg.EnvName != DefaultEnvName {
		t.Fatalf("env name = %q, want %q", cfg.EnvName, DefaultEnvName)
	}
	if cfg.Raw {
		t.Fatal("expected raw output to default off")
	}
}

func TestParseConfigOverride(t *testing.T) {
	fs := flag.NewFlagSet("hmackey", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-bytes", "24", "-env", "GITHUB_SECRET", "-raw"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Bytes != 24 || cfg.EnvName != "GITHUB_SECRET" || !cfg.Raw {
		t.Fatalf("config = %+v, want overrides applied", cfg)
	}
}

func TestParseConfigBadArgs(t *testing.T) {
	fs := flag.NewFlagSet("hmackey", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := ParseConfig(fs, []string{"-invalid"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestRunRejectsShortSecrets(t *testing.T) {
	if err := Run(Config{Bytes: 8, EnvName: DefaultEnvName}, &bytes.Buffer{}, bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestRunWritesEnvLine(t *testing.T) {
	buf := &bytes.Buffer{}
	reader := bytes.NewReader(bytes.Repeat([]byte{0xab}, 16))
	if err := Run(Config{Bytes: 16, EnvName: DefaultEnvName}, buf, reader); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := DefaultEnvName + "=" + strings.Repeat("ab", 16)
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunWritesRawSecret(t *testing.T) {
	buf := &bytes.Buffer{}
	reader := bytes.NewReader(bytes.Repeat([]byte{0x01}, 16))
	if err := Run(Config{Bytes: 16, Raw: true}, buf, reader); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Repeat("01", 16) {
		t.Fatalf("output = %q, want raw hex", got)
	}
}

func TestRunRequiresEnvName(t *testing.T) {
	if err := Run(Config{Bytes: 16, EnvName: " "}, &bytes.Buffer{}, nil); err == nil {
		t.Fatal("expected error for blank env name")
	}
}

func TestRunNilOutput(t *testing.T) {
	if err := Run(Config{Bytes: 16, EnvName: DefaultEnvName}, nil, nil); err == nil {
		t.Fatal("expected error for nil output")
	}
}

func TestRunDefaultReader(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Run(Config{Bytes: 16, EnvName: DefaultEnvName}, buf, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	prefix := DefaultEnvName + "="
	if !strings.HasPrefix(got, prefix) {
		t.Fatalf("output = %q, want env prefix", got)
	}
	if n := len(strings.TrimPrefix(got, prefix)); n != 32 {
		t.Fatalf("hex length = %d, want 32", n)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, fmt.Errorf("read error") }

func TestRunReaderError(t *testing.T) {
	if err := Run(Config{Bytes: 16, EnvName: DefaultEnvName}, &bytes.Buffer{}, errReader{}); err == nil {
		t.Fatal("expected error from failing reader")
	}
}
