package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file probes the loader performs so tests can
// resolve against a fake tree.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem is the FileSystem backed by the OS.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

func (RealFileSystem) Getwd() (string, error) { return os.Getwd() }

// Resolver locates the config and env files for a named program.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles is the outcome of a resolution pass. Empty fields mean
// nothing was found; the loader then runs on environment variables
// alone.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths when set and searches the
// standard locations otherwise.
func (cr *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.findFirst(configSearchPaths(name))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.findFirst(envSearchPaths(name))
	}
	return resolved
}

func (cr *Resolver) findFirst(paths []string) string {
	for _, p := range paths {
		if cr.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configSearchPaths lists where config.yml may live, nearest first. The
// cmd layout is tried from the repo root and from one or two levels
// inside it, which covers running tests in package directories.
func configSearchPaths(name string) []string {
	var paths []string
	for _, up := range []string{".", "..", "../.."} {
		paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", up, name))
	}
	paths = append(paths,
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	)
	return paths
}

// envSearchPaths lists where .env files may live. A program-specific
// .env.<name> wins over the shared .env at every level.
func envSearchPaths(name string) []string {
	var paths []string
	for _, file := range []string{".env." + name, ".env"} {
		for _, up := range []string{".", "..", "../.."} {
			paths = append(paths,
				fmt.Sprintf("%s/cmd/%s/%s", up, name, file),
				fmt.Sprintf("%s/config/%s", up, file),
				fmt.Sprintf("%s/%s", up, file),
			)
		}
	}
	return paths
}

// LoaderConfig holds the loader dependencies and optional explicit file
// paths.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile pins the config file instead of searching for it.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile pins the .env file instead of searching for it.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig fills cfg for the named program: YAML file first, then the
// .env overlay, then process environment variables, later sources
// winning. Missing files are not an error; a program can run entirely
// on its environment.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)
	return loadResolved(name, cfg, files, lc.FileSystem)
}

func loadResolved(name string, cfg interface{}, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()

	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "[config] skipping unreadable config file %s: %v\n", files.ConfigFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvironment(v)

	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] skipping unreadable .env file %s: %v\n", files.EnvFile, err)
		} else {
			// Pick up whatever the .env file just exported.
			bindEnvironment(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", name, err)
	}
	return nil
}

// bindEnvironment force-sets every environment variable under all its
// nested key spellings, so DATABASE_DSN reaches both database_dsn and
// database.dsn without explicit BindEnv calls per field.
func bindEnvironment(v *viper.Viper) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants expands one environment key into the viper keys it may
// address. Every split point yields a dotted prefix with the remainder
// kept underscored, covering nested structs whose field names contain
// underscores themselves.
//
//	DATABASE_MAX_OPEN -> [database_max_open, database.max.open,
//	                      database.max_open]
func envKeyVariants(key string) []string {
	lower := strings.ToLower(key)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	var variants []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}

	add(lower)
	add(strings.ReplaceAll(lower, "_", "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
