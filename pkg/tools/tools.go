// Package tools wraps the external declarative-tooling CLIs behind
// narrow adapters. Each adapter owns its argument builders and its
// env-configurable timeout; all process handling goes through a shared
// toolexec.Runner so pipelines can substitute a fake.
package tools

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	defaultKubectlTimeout     = 60 * time.Second
	defaultHelmTimeout        = 60 * time.Second
	defaultKubeconformTimeout = 120 * time.Second
	defaultFluxTimeout        = 60 * time.Second
	defaultArgocdTimeout      = 60 * time.Second
)

// timeoutFromEnv reads a per-tool timeout in seconds from the
// environment, falling back to the given default.
func timeoutFromEnv(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		slog.Warn("ignoring invalid timeout", "var", name, "value", v)
		return fallback
	}
	return time.Duration(secs) * time.Second
}
