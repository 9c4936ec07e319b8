package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// ConfigFileName is the project-local configuration file the core looks
// for, mirroring the teacher's .lci.kdl.
const ConfigFileName = ".codelens.kdl"

// LoadKDL loads a Config from <projectRoot>/.codelens.kdl if present. A
// missing file is not an error: it returns (nil, nil) and the caller keeps
// its defaults.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}

	cfg := &Config{}
	for _, node := range doc.Nodes {
		switch nodeName(node) {
		case "cache-dir":
			if s, ok := firstStringArg(node); ok {
				cfg.CacheDir = s
			}
		case "worker-pool-size":
			if n, ok := firstIntArg(node); ok {
				cfg.WorkerPoolSize = n
			}
		case "per-file-timeout-sec":
			if secs, ok := firstIntArg(node); ok && secs > 0 {
				cfg.PerFileTimeout = time.Duration(secs) * time.Second
			}
		case "centrality-timeout-sec":
			if secs, ok := firstIntArg(node); ok && secs > 0 {
				cfg.CentralityTimeout = time.Duration(secs) * time.Second
			}
		case "max-file-size":
			if n, ok := firstIntArg(node); ok && n > 0 {
				cfg.MaxFileSize = int64(n)
			}
		case "embedding-model":
			if s, ok := firstStringArg(node); ok {
				cfg.EmbeddingModelID = s
			}
		case "include":
			cfg.Include = collectStringArgs(node)
		case "exclude":
			cfg.Exclude = collectStringArgs(node)
		}
	}
	return cfg, nil
}

// nodeName, firstStringArg, firstIntArg, and collectStringArgs mirror the
// teacher's own kdl-go document-model helpers in internal/config/kdl_config.go.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		if s, ok := arg.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
