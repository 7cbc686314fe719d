// Package config loads covercluster settings.
//
// Settings are layered: built-in defaults, then an optional TOML file, then
// environment variables. The CLI applies command-line flags last.
//
//	[cluster]
//	min_size = 50
//	max_size = 300
//	tighten_passes = 100
//	background = "#141414"
//	section = "albums"
//	format = "png"
//
//	[paths]
//	index = "index.txt"
//	covers = "covers"
//	output = "cluster.png"
//
//	[index]
//	encodings = ["utf-8", "windows-1252", "iso-8859-1"]
//
//	[cache]
//	backend = "file"   # file, redis or none
//
//	[spotify]
//	playlists = ["3vgCWrOBB1CCYzdNhHqQWh"]
//
//	[server]
//	addr = ":8080"
//	store = "file"     # file or mongo
//
// Secrets are usually supplied through the environment: SPOTIFY_CLIENT_ID,
// SPOTIFY_CLIENT_SECRET, COVERCLUSTER_REDIS_ADDR and COVERCLUSTER_MONGO_URI
// override the corresponding file settings.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/covercluster/pkg/cluster"
	errs "github.com/matzehuels/covercluster/pkg/errors"
	"github.com/matzehuels/covercluster/pkg/index"
	"github.com/matzehuels/covercluster/pkg/pipeline"
	"github.com/matzehuels/covercluster/pkg/render"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedisAddr           = "COVERCLUSTER_REDIS_ADDR"
	EnvRedisDB             = "COVERCLUSTER_REDIS_DB"
	EnvMongoURI            = "COVERCLUSTER_MONGO_URI"
)

// Config is the complete configuration.
type Config struct {
	Cluster ClusterConfig `toml:"cluster"`
	Paths   PathsConfig   `toml:"paths"`
	Index   IndexConfig   `toml:"index"`
	Cache   CacheConfig   `toml:"cache"`
	Spotify SpotifyConfig `toml:"spotify"`
	Server  ServerConfig  `toml:"server"`
}

// ClusterConfig holds layout and render settings.
type ClusterConfig struct {
	MinSize       int    `toml:"min_size"`
	MaxSize       int    `toml:"max_size"`
	TightenPasses int    `toml:"tighten_passes"`
	Background    string `toml:"background"`
	Section       string `toml:"section"`
	Format        string `toml:"format"`
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	Index  string `toml:"index"`
	Covers string `toml:"covers"`
	Output string `toml:"output"`
}

// IndexConfig holds index decoding settings.
type IndexConfig struct {
	Encodings []string `toml:"encodings"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// SpotifyConfig holds catalog credentials and the playlists to crawl.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	Playlists    []string `toml:"playlists"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	Store         string `toml:"store"`
	StoreDir      string `toml:"store_dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cluster: ClusterConfig{
			MinSize:       cluster.DefaultMinSize,
			MaxSize:       cluster.DefaultMaxSize,
			TightenPasses: cluster.DefaultTightenPasses,
			Background:    render.DefaultBackground,
			Section:       pipeline.DefaultSection,
			Format:        pipeline.DefaultFormat,
		},
		Paths: PathsConfig{
			Index:  pipeline.DefaultIndexFile,
			Covers: pipeline.DefaultCoversDir,
			Output: "cluster.png",
		},
		Index: IndexConfig{
			Encodings: slices.Clone(index.DefaultEncodings),
		},
		Cache: CacheConfig{
			Backend: CacheFile,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			Store:         StoreFile,
			StoreDir:      "builds",
			MongoDatabase: "covercluster",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/covercluster/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "covercluster", "config.toml"), nil
}

// Load returns the defaults overlaid with the file at path and the
// environment. An empty path means [DefaultPath], which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			if explicit || !errs.Is(err, errs.ErrCodeFileNotFound) {
				return cfg, err
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// LoadFile overlays the TOML file at path onto c. Keys the file sets
// replace the current values; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read through
// getenv. Unset or empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvSpotifyClientID); v != "" {
		c.Spotify.ClientID = v
	}
	if v := getenv(EnvSpotifyClientSecret); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := getenv(EnvRedisDB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = n
		}
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Server.MongoURI = v
	}
}

// Validate rejects settings no command could use.
func (c *Config) Validate() error {
	cl := c.Cluster
	if cl.MinSize <= 0 || cl.MaxSize <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cluster sizes must be positive (min_size %d, max_size %d)", cl.MinSize, cl.MaxSize)
	}
	if cl.MinSize > cl.MaxSize {
		return errs.New(errs.ErrCodeInvalidConfig, "min_size %d exceeds max_size %d", cl.MinSize, cl.MaxSize)
	}
	if cl.MaxSize > pipeline.MaxCoverSize {
		return errs.New(errs.ErrCodeInvalidConfig, "max_size %d exceeds the limit of %d", cl.MaxSize, pipeline.MaxCoverSize)
	}
	if cl.TightenPasses < 0 || cl.TightenPasses > pipeline.MaxTightenPasses {
		return errs.New(errs.ErrCodeInvalidConfig, "tighten_passes must be between 0 and %d", pipeline.MaxTightenPasses)
	}
	if _, err := render.ParseFormat(cl.Format); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "cluster.format")
	}
	if _, err := render.ParseColor(cl.Background); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "cluster.background")
	}
	if _, err := index.ParseSection(cl.Section); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "cluster.section")
	}
	for _, enc := range c.Index.Encodings {
		if _, err := index.LookupEncoding(enc); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "index.encodings")
		}
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}

	switch c.Server.Store {
	case StoreFile:
	case StoreMongo:
		if c.Server.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "server.mongo_uri is required for the mongo store")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown store %q (want file or mongo)", c.Server.Store)
	}
	return nil
}

// PipelineOptions converts the cluster, path and index settings into
// pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		IndexFile:     c.Paths.Index,
		Section:       c.Cluster.Section,
		Encodings:     slices.Clone(c.Index.Encodings),
		CoversDir:     c.Paths.Covers,
		MinSize:       c.Cluster.MinSize,
		MaxSize:       c.Cluster.MaxSize,
		TightenPasses: c.Cluster.TightenPasses,
		SkipTighten:   c.Cluster.TightenPasses == 0,
		Background:    c.Cluster.Background,
		Format:        c.Cluster.Format,
	}
}
