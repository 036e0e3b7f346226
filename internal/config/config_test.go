package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Database: DatabaseConfig{Driver: DriverSQLite},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingValkeyAddrs(t *testing.T) {
	for _, driver := range []string{DriverValkey, DriverRedis} {
		cfg := Config{
			HTTP: HTTPConfig{Port: 8080},
			Database: DatabaseConfig{
				Driver: driver,
				Addrs:  []string{},
			},
		}

		err := cfg.Validate()
		if err == nil {
			t.Fatalf("expected error for missing %s addrs", driver)
		}
	}
}

func TestValidate_SQLiteNeedsNoAddrs(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Driver: "postgres"}}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), `got "postgres"`) {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_IncompleteCandidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Inference.Models.NER = []ModelCandidate{{Provider: "huggingface", Model: "dslim/bert-base-NER"}, {Provider: "huggingface"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for candidate without model")
	}
	expected := "inference.models.ner[1] needs provider and model"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_PageSizes(t *testing.T) {
	cfg := Config{Notes: NotesConfig{DefaultPageSize: 200, MaxPageSize: 100}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default page size exceeds max")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8000 {
		t.Errorf("expected Port=8000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected Driver=sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Database.Path != "takenote.db" {
		t.Errorf("expected Path=takenote.db, got %q", cfg.Database.Path)
	}
	if cfg.Inference.HuggingFace.BaseURL != DefaultHuggingFaceURL {
		t.Errorf("expected HF BaseURL default, got %q", cfg.Inference.HuggingFace.BaseURL)
	}
	if cfg.Inference.HuggingFace.TimeoutSec != 30 {
		t.Errorf("expected HF TimeoutSec=30, got %d", cfg.Inference.HuggingFace.TimeoutSec)
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.PeriodSec != 60 {
		t.Errorf("expected rate limit 100/60, got %d/%d", cfg.RateLimit.Requests, cfg.RateLimit.PeriodSec)
	}
	if cfg.Notes.DefaultPageSize != 50 || cfg.Notes.MaxPageSize != 100 {
		t.Errorf("expected page sizes 50/100, got %d/%d", cfg.Notes.DefaultPageSize, cfg.Notes.MaxPageSize)
	}
	if cfg.Storage.KeyPrefix != "takenote:" {
		t.Errorf("expected KeyPrefix='takenote:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Inference.OpenAI.Enabled() {
		t.Error("openai must be disabled without an api key")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{Driver: DriverValkey, ReadinessTimeout: 15},
		RateLimit: RateLimitConfig{Requests: -1, PeriodSec: 10},
		Storage:   StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverValkey {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.RateLimit.Requests != -1 {
		t.Errorf("expected disabled rate limit to stay -1, got %d", cfg.RateLimit.Requests)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TAKENOTE_TEST_HF_KEY", "hf_secret")
	path := writeConfig(t, `
http:
  port: ${TAKENOTE_TEST_PORT:-8081}
database:
  driver: sqlite
  path: ${TAKENOTE_TEST_DB:-/tmp/notes.db}
inference:
  huggingface:
    api_key: ${TAKENOTE_TEST_HF_KEY}
auth:
  tokens:
    tok-a: alice
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("expected default-expanded port 8081, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.Path != "/tmp/notes.db" {
		t.Errorf("expected path /tmp/notes.db, got %q", cfg.Database.Path)
	}
	if cfg.Inference.HuggingFace.APIKey != "hf_secret" {
		t.Errorf("expected api key from env, got %q", cfg.Inference.HuggingFace.APIKey)
	}
	if cfg.Auth.Tokens["tok-a"] != "alice" {
		t.Errorf("expected token mapping, got %v", cfg.Auth.Tokens)
	}
}

func TestLoadFile_ModelLists(t *testing.T) {
	path := writeConfig(t, `
inference:
  openai:
    api_key: sk-test
    model: text-embedding-3-large
  models:
    summarization: []
    similarity:
      - provider: openai
        model: text-embedding-3-large
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	m := cfg.Inference.Models
	if m.Summarization == nil || len(m.Summarization) != 0 {
		t.Errorf("explicit empty list must stay empty and non-nil, got %#v", m.Summarization)
	}
	if m.NER != nil {
		t.Errorf("absent list must stay nil, got %#v", m.NER)
	}
	if len(m.Similarity) != 1 || m.Similarity[0].Provider != "openai" {
		t.Errorf("unexpected similarity list %+v", m.Similarity)
	}
	if !cfg.Inference.OpenAI.Enabled() || cfg.Inference.OpenAI.Model != "text-embedding-3-large" {
		t.Errorf("unexpected openai config %+v", cfg.Inference.OpenAI)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeConfig(t, "http: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFile(writeConfig(t, "database:\n  driver: valkey\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TAKENOTE_TEST_SET", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"${TAKENOTE_TEST_SET}", "value"},
		{"${TAKENOTE_TEST_SET:-other}", "value"},
		{"${TAKENOTE_TEST_UNSET:-fallback}", "fallback"},
		{"${TAKENOTE_TEST_UNSET}", ""},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
