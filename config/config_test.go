package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/kbukum/voxnote/logger"
)

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Transcription struct {
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"transcription"`
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	tests := []struct {
		name      string
		cfg       ServiceConfig
		wantEnv   string
		wantLevel string
	}{
		{"empty", ServiceConfig{Name: "voxnote"}, "development", "info"},
		{"debug lowers level", ServiceConfig{Name: "voxnote", Debug: true}, "development", "debug"},
		{"explicit level wins", ServiceConfig{Name: "voxnote", Debug: true, Logging: logger.Config{Level: "warn"}}, "development", "warn"},
		{"production kept", ServiceConfig{Name: "voxnote", Environment: "production"}, "production", "info"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.ApplyDefaults()
			if cfg.Environment != tc.wantEnv {
				t.Errorf("environment = %q, want %q", cfg.Environment, tc.wantEnv)
			}
			if cfg.Logging.Level != tc.wantLevel {
				t.Errorf("logging.level = %q, want %q", cfg.Logging.Level, tc.wantLevel)
			}
			if cfg.Logging.ServiceName != "voxnote" {
				t.Errorf("expected logging service name to follow Name, got %q", cfg.Logging.ServiceName)
			}
		})
	}
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		c := ServiceConfig{Name: "voxnote", Environment: env}
		c.Logging.ApplyDefaults()
		return c
	}
	badLogging := valid("production")
	badLogging.Logging.Format = "xml"

	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", valid("development"), false, ""},
		{"valid production", valid("production"), false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "voxnote", Environment: "qa"}, true, "config.environment must be one of"},
		{"invalid logging", badLogging, true, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: voxnote
environment: staging
transcription:
  model: whisper-1
  base_url: https://api.openai.com/v1
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := LoadConfig("voxnote", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "voxnote" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config: %+v", cfg.ServiceConfig)
	}
	if cfg.Transcription.Model != "whisper-1" {
		t.Errorf("expected model whisper-1, got %q", cfg.Transcription.Model)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("transcription:\n  model: whisper-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VOXTEST_TRANSCRIPTION_MODEL", "whisper-large")

	var cfg testConfig
	if err := LoadConfig("voxnote", &cfg, WithConfigFile(configPath), WithEnvPrefix("voxtest_")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transcription.Model != "whisper-large" {
		t.Errorf("expected env override, got %q", cfg.Transcription.Model)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("transcription: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := LoadConfig("voxnote", &cfg, WithConfigFile(configPath)); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("voxnote", &cfg,
		WithFileSystem(&mockFS{files: map[string]bool{}}),
		WithConfigFile("/nonexistent/config.yml"),
	)
	if err != nil {
		t.Fatalf("missing config file should not fail, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
	home  string
}

func (m *mockFS) Exists(path string) bool       { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error     { return nil }
func (m *mockFS) UserHomeDir() (string, error) { return m.home, nil }

func TestResolveSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./voxnote.yml":       true,
		"./config.yml":        true,
		"./.env":              true,
		"./config/config.yml": true,
	}}

	src := Resolve("voxnote", LoaderConfig{FileSystem: fs})
	if src.ConfigFile != "./voxnote.yml" {
		t.Errorf("expected the named file to win, got %q", src.ConfigFile)
	}
	if src.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", src.EnvFile)
	}
}

func TestResolveHomeDirFallback(t *testing.T) {
	home := "/home/someone"
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"xdg", []string{filepath.Join(home, ".config", "voxnote", "config.yml"), filepath.Join(home, ".voxnote", "config.yml")}, filepath.Join(home, ".config", "voxnote", "config.yml")},
		{"dot dir", []string{filepath.Join(home, ".voxnote", "config.yml")}, filepath.Join(home, ".voxnote", "config.yml")},
		{"nothing", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}, home: home}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			if got := Resolve("voxnote", LoaderConfig{FileSystem: fs}).ConfigFile; got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResolveExplicitPaths(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./config.yml": true, "./.env": true}}
	src := Resolve("voxnote", LoaderConfig{FileSystem: fs, ConfigFile: "/etc/vox.yml", EnvFile: "/etc/vox.env"})
	if src.ConfigFile != "/etc/vox.yml" || src.EnvFile != "/etc/vox.env" {
		t.Errorf("explicit paths should be kept, got %+v", src)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "vox.env")
	if err := os.WriteFile(envPath, []byte("VOXENV_TRANSCRIPTION_BASE_URL=http://localhost:9000/v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("VOXENV_TRANSCRIPTION_BASE_URL") })

	var cfg testConfig
	err := LoadConfig("voxnote", &cfg,
		WithConfigFile(filepath.Join(dir, "none.yml")),
		WithEnvFile(envPath),
		WithEnvPrefix("VOXENV"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transcription.BaseURL != "http://localhost:9000/v1" {
		t.Errorf("expected base_url from .env, got %q", cfg.Transcription.BaseURL)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	for _, opt := range []LoaderOption{
		WithFileSystem(fs),
		WithConfigFile("/a.yml"),
		WithEnvFile("/a.env"),
		WithEnvPrefix("voxnote_"),
	} {
		opt(&lc)
	}
	if lc.FileSystem != fs || lc.ConfigFile != "/a.yml" || lc.EnvFile != "/a.env" {
		t.Errorf("options not applied: %+v", lc)
	}
	if lc.EnvPrefix != "VOXNOTE" {
		t.Errorf("expected normalized prefix VOXNOTE, got %q", lc.EnvPrefix)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("SERVER_RATE_LIMIT_PATHS")
	if len(got) != 8 {
		t.Errorf("expected 2^3 variants, got %d: %v", len(got), got)
	}
	seen := map[string]bool{}
	for _, v := range got {
		seen[v] = true
	}
	for _, want := range []string{"server_rate_limit_paths", "server.rate.limit.paths", "server.rate_limit.paths", "server.rate_limit_paths"} {
		if !seen[want] {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}

	if got := envKeyVariants("DEBUG"); len(got) != 1 || got[0] != "debug" {
		t.Errorf("single word should map to itself, got %v", got)
	}
	if got := envKeyVariants("A_B_C_D_E_F_G_H_I"); len(got) != 2 {
		t.Errorf("long names should only get flat and dotted forms, got %d", len(got))
	}
}

func TestBindEnvPrefixWins(t *testing.T) {
	v := viper.New()
	bindEnv(v, "VOXNOTE", []string{
		"VOXNOTE_SERVER_PORT=9090",
		"SERVER_PORT=7070",
		"MALFORMED",
	})
	if got := v.GetString("server.port"); got != "9090" {
		t.Errorf("expected prefixed value to win, got %q", got)
	}
}
