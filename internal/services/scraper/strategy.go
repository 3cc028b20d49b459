package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/common"
	"github.com/rstatelabs/playnews/internal/models"
	"github.com/rstatelabs/playnews/internal/services/browser"
)

// Strategy crawls one news site. Local-news strategies use zipCode to scope
// the crawl; national real-estate strategies ignore it.
type Strategy interface {
	Name() string
	Scrape(ctx context.Context, zipCode string, limit int) ([]*models.RawArticle, error)
}

// Registry maps source configurations to strategies.
type Registry struct {
	strategies map[string]Strategy
	logger     arbor.ILogger
}

// NewRegistry builds the full strategy set against a shared browser session
// and host limiter. Realtor.com gets its own session with a persistent
// profile; its bot detection blocks fresh browser fingerprints.
func NewRegistry(session *browser.Session, realtorSession *browser.Session, cfg *common.ScraperConfig, logger arbor.ILogger) *Registry {
	limiter := NewHostLimiter(1, 1)
	retry := RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBaseDelay, Logger: logger}

	site := site{
		session: session,
		cfg:     cfg,
		limiter: limiter,
		retry:   retry,
		logger:  logger,
	}
	realtorSite := site
	realtorSite.session = realtorSession

	r := &Registry{strategies: make(map[string]Strategy), logger: logger}
	r.register(NewPatch(site))
	r.register(NewNewsbreak(site))
	r.register(NewRedfin(site))
	r.register(NewRealtor(realtorSite))
	r.register(NewNAR(site))
	r.register(NewFreddieMac(site))
	return r
}

func (r *Registry) register(s Strategy) {
	r.strategies[normalizeSourceKey(s.Name())] = s
}

// Lookup resolves the strategy for a source by ID first, then by name.
func (r *Registry) Lookup(source *models.SourceConfig) (Strategy, error) {
	if s, ok := r.strategies[normalizeSourceKey(source.ID)]; ok {
		return s, nil
	}
	if s, ok := r.strategies[normalizeSourceKey(source.SourceName)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no strategy registered for source %q (%s)", source.SourceName, source.ID)
}

// Names returns the registered strategy keys, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}

func normalizeSourceKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, ".com")
	key = strings.ReplaceAll(key, " ", "")
	return key
}
