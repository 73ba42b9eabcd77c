package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/metrics"
	"github.com/mkondo/inforadar/internal/pipeline"
)

const maxRobotsBody = 1 << 20

// Gate decides whether the configured crawler identity may fetch a URL,
// caching parsed rule sets per origin for the lifetime of the Gate. The gate
// is advisory, not a security boundary: every error path fails open so a
// malformed URL or an unreachable robots.txt never halts ingestion.
type Gate struct {
	client    *http.Client
	cache     sync.Map
	userAgent string
	logger    *zap.Logger
}

// NewGate builds a Gate for the given crawler identity.
func NewGate(userAgent string, timeout time.Duration, logger *zap.Logger) *Gate {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Check implements pipeline.Gate. The decision note surfaces robots.txt
// fetch degradation so the caller can record it in the run log.
func (g *Gate) Check(ctx context.Context, rawURL string) pipeline.GateDecision {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		g.logger.Warn("invalid target url; allowing access", zap.String("url", rawURL))
		metrics.ObserveRobotsDecision("allowed")
		return pipeline.GateDecision{Allowed: true}
	}

	origin := parsed.Scheme + "://" + parsed.Host
	rules, note := g.rules(ctx, origin)

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	allowed := rules.Allowed(path, g.userAgent)
	if allowed {
		metrics.ObserveRobotsDecision("allowed")
	} else {
		metrics.ObserveRobotsDecision("disallowed")
	}
	return pipeline.GateDecision{Allowed: allowed, Note: note}
}

// IsAllowed reports only the boolean verdict.
func (g *Gate) IsAllowed(ctx context.Context, rawURL string) bool {
	return g.Check(ctx, rawURL).Allowed
}

// rules returns the cached rule set for origin, fetching and parsing
// robots.txt on first sight. A 404 is cached as an empty rule set; any other
// failure is not cached and yields a nil set plus a note for the run log.
func (g *Gate) rules(ctx context.Context, origin string) (RuleSet, string) {
	if cached, ok := g.cache.Load(origin); ok {
		rules, assertOK := cached.(RuleSet)
		if assertOK {
			return rules, ""
		}
		g.logger.Warn("robots cache type mismatch; refetching", zap.String("origin", origin))
	}

	robotsURL := origin + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		g.logger.Warn("robots request build failed; allowing access", zap.String("origin", origin), zap.Error(err))
		return nil, fmt.Sprintf("Failed to fetch robots.txt for %s: %v", origin, err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("robots fetch failed; allowing access", zap.String("origin", origin), zap.Error(err))
		return nil, fmt.Sprintf("Failed to fetch robots.txt for %s: %v", origin, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			g.logger.Debug("failed to close robots response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		// No robots.txt means everything is allowed.
		empty := RuleSet{}
		g.cache.Store(origin, empty)
		return empty, ""
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Warn("robots fetch returned non-success; allowing access",
			zap.String("origin", origin),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Sprintf("Failed to fetch robots.txt for %s: status %d", origin, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		g.logger.Warn("robots body read failed; allowing access", zap.String("origin", origin), zap.Error(err))
		return nil, fmt.Sprintf("Failed to fetch robots.txt for %s: %v", origin, err)
	}

	rules := Parse(string(body))
	g.cache.Store(origin, rules)
	return rules, ""
}

var _ pipeline.Gate = (*Gate)(nil)
