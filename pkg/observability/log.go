package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks forwards batch and cache events to a logger at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that write to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnCorpusStart(_ context.Context, dir string, manifests int) {
	h.logger.Debug("corpus start", "dir", dir, "manifests", manifests)
}

func (h *LogHooks) OnCorpusComplete(_ context.Context, dir string, comparisons int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("corpus failed", "dir", dir, "err", err)
		return
	}
	h.logger.Debug("corpus complete", "dir", dir, "comparisons", comparisons, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnManifestSkipped(_ context.Context, path string, reason error) {
	h.logger.Debug("manifest skipped", "path", path, "reason", reason)
}

func (h *LogHooks) OnFactsDerived(_ context.Context, name string, facts int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fact derivation failed", "manifest", name, "err", err)
		return
	}
	h.logger.Debug("facts derived", "manifest", name, "facts", facts, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnPairCompared(_ context.Context, key string, d time.Duration) {
	h.logger.Debug("pair compared", "key", key, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ BatchHooks = (*LogHooks)(nil)
	_ CacheHooks = (*LogHooks)(nil)
)
