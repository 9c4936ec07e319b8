// Package config loads the environment/configuration surface the core
// consumes per spec.md §6: project root, cache directory, worker pool
// size, per-file timeout, per-file size limit, and optional embedding
// model identifier. Everything else (output format, verbosity, colors)
// belongs to the peripheral CLI and is not modeled here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Defaults mirror spec.md §5's stated defaults.
const (
	DefaultMaxFileSize     = 10 * 1024 * 1024
	DefaultPerFileTimeout  = 30 * time.Second
	DefaultCentralityTimeout = 60 * time.Second
	DefaultWorkerPoolCap   = 16
)

// Config is the core's resolved runtime configuration.
type Config struct {
	ProjectRoot      string
	CacheDir         string
	WorkerPoolSize   int
	PerFileTimeout   time.Duration
	CentralityTimeout time.Duration
	MaxFileSize      int64
	EmbeddingModelID string // empty disables the embedding matcher
	Include          []string
	Exclude          []string
}

// Default returns a Config with spec-mandated defaults and a worker pool
// sized to logical CPUs, capped at 16 (spec.md §5).
func Default(projectRoot string) *Config {
	pool := runtime.NumCPU()
	if pool > DefaultWorkerPoolCap {
		pool = DefaultWorkerPoolCap
	}
	if pool < 1 {
		pool = 1
	}
	return &Config{
		ProjectRoot:        projectRoot,
		CacheDir:           filepath.Join(projectRoot, ".codelens"),
		WorkerPoolSize:     pool,
		PerFileTimeout:     DefaultPerFileTimeout,
		CentralityTimeout:  DefaultCentralityTimeout,
		MaxFileSize:        DefaultMaxFileSize,
		Exclude:            []string{"**/node_modules/**", "**/.git/**", "**/vendor/**", "**/dist/**", "**/build/**"},
	}
}

// Load resolves configuration for projectRoot: defaults, overridden by
// .codelens.kdl if present (LoadKDL), overridden by any non-zero fields in
// override. Exclude is the exception: patterns from either source are
// appended to the existing list rather than replacing it.
func Load(projectRoot string, override *Config) (*Config, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if info, statErr := os.Stat(absRoot); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root does not exist: %s", absRoot)
	}

	cfg := Default(absRoot)

	kdlCfg, err := LoadKDL(absRoot)
	if err != nil {
		return nil, err
	}
	if kdlCfg != nil {
		cfg.merge(kdlCfg)
	}
	if override != nil {
		cfg.merge(override)
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.CacheDir != "" {
		c.CacheDir = o.CacheDir
	}
	if o.WorkerPoolSize > 0 {
		c.WorkerPoolSize = o.WorkerPoolSize
	}
	if o.PerFileTimeout > 0 {
		c.PerFileTimeout = o.PerFileTimeout
	}
	if o.CentralityTimeout > 0 {
		c.CentralityTimeout = o.CentralityTimeout
	}
	if o.MaxFileSize > 0 {
		c.MaxFileSize = o.MaxFileSize
	}
	if o.EmbeddingModelID != "" {
		c.EmbeddingModelID = o.EmbeddingModelID
	}
	if len(o.Include) > 0 {
		c.Include = o.Include
	}
	if len(o.Exclude) > 0 {
		c.Exclude = append(c.Exclude, o.Exclude...)
	}
}
