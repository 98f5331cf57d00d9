package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// maxNestedParts caps the key variants generated per variable. Longer
// names only bind their flat and fully dotted forms.
const maxNestedParts = 8

// FileSystem is what the loader needs from the OS. Tests replace it.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	UserHomeDir() (string, error)
}

type osFS struct{}

func (osFS) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (osFS) LoadEnv(path string) error { return godotenv.Load(path) }

func (osFS) UserHomeDir() (string, error) { return os.UserHomeDir() }

// Sources names the files a load reads. An empty field means none was found.
type Sources struct {
	ConfigFile string
	EnvFile    string
}

// LoaderConfig collects the LoaderOption values.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix is upper case without the trailing underscore, e.g. "VOXNOTE".
	EnvPrefix string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the OS file system.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile skips the search and reads path. A missing file is not an
// error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile skips the search and loads path into the environment.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix makes PREFIX_SECTION_KEY bind as section.key. Prefixed
// variables win over unprefixed ones.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// Resolve returns the config and .env files LoadConfig would read for name.
//
// Config files are tried in order: ./<name>.yml, ./config.yml,
// ./config/config.yml, ~/.config/<name>/config.yml, ~/.<name>/config.yml.
// Env files: ./.env.<name>, ./.env, ~/.<name>/.env.
func Resolve(name string, lc LoaderConfig) Sources {
	fs := lc.FileSystem
	if fs == nil {
		fs = osFS{}
	}
	home, _ := fs.UserHomeDir()

	src := Sources{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if src.ConfigFile == "" {
		candidates := []string{"./" + name + ".yml", "./config.yml", "./config/config.yml"}
		if home != "" {
			candidates = append(candidates,
				filepath.Join(home, ".config", name, "config.yml"),
				filepath.Join(home, "."+name, "config.yml"))
		}
		src.ConfigFile = firstExisting(fs, candidates)
	}
	if src.EnvFile == "" {
		candidates := []string{"./.env." + name, "./.env"}
		if home != "" {
			candidates = append(candidates, filepath.Join(home, "."+name, ".env"))
		}
		src.EnvFile = firstExisting(fs, candidates)
	}
	return src
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig fills cfg from the resolved config file, then the .env file,
// then the process environment; later sources win. cfg is decoded with
// mapstructure tags, and durations accept strings such as "90s".
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = osFS{}
	}
	src := Resolve(name, lc)

	v := viper.New()
	if src.ConfigFile != "" && lc.FileSystem.Exists(src.ConfigFile) {
		v.SetConfigFile(src.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", src.ConfigFile, err)
		}
	}

	if src.EnvFile != "" && lc.FileSystem.Exists(src.EnvFile) {
		if err := lc.FileSystem.LoadEnv(src.EnvFile); err != nil {
			return fmt.Errorf("config: load %s: %w", src.EnvFile, err)
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: decode %s config: %w", name, err)
	}
	return nil
}

// bindEnv sets every key variant of each variable. Unprefixed variables go
// first so the prefixed form overrides them.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	var prefixed [][2]string
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" && strings.HasPrefix(key, prefix+"_") {
			prefixed = append(prefixed, [2]string{strings.TrimPrefix(key, prefix+"_"), value})
			continue
		}
		setVariants(v, key, value)
	}
	for _, kv := range prefixed {
		setVariants(v, kv[0], kv[1])
	}
}

func setVariants(v *viper.Viper, key, value string) {
	for _, k := range envKeyVariants(key) {
		v.Set(k, value)
	}
}

// envKeyVariants lists the config keys an upper-case variable may stand for:
// each "_" is either a nesting dot or part of a snake_case name.
//
//	SERVER_RATE_LIMIT_PATHS -> server_rate_limit_paths, server.rate_limit.paths,
//	                           server.rate_limit_paths, ...
func envKeyVariants(envKey string) []string {
	parts := strings.Split(strings.ToLower(envKey), "_")
	n := len(parts)
	if n == 1 {
		return parts
	}
	if n > maxNestedParts {
		flat := strings.Join(parts, "_")
		return []string{flat, strings.Join(parts, ".")}
	}

	variants := make([]string, 0, 1<<(n-1))
	for mask := 0; mask < 1<<(n-1); mask++ {
		var b strings.Builder
		b.WriteString(parts[0])
		for i := 1; i < n; i++ {
			if mask&(1<<(i-1)) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(parts[i])
		}
		variants = append(variants, b.String())
	}
	return variants
}
