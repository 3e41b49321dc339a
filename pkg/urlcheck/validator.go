package urlcheck

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travelmind-be/internal/pkg/logger"
	"travelmind-be/pkg/travel"
)

// Config controls how aggressively sources are checked. Well-formedness is
// always enforced; the network probe is opt-in because it adds latency to
// every plan.
type Config struct {
	// ProbeEnabled turns on reachability checks (HEAD, falling back to GET).
	ProbeEnabled bool
	// ProbeTimeout bounds each network probe. Defaults to 5s.
	ProbeTimeout time.Duration
	// MaxProbes caps network calls per plan so a source-heavy plan cannot
	// stall the response. URLs past the cap keep only the syntax check.
	// Defaults to 20.
	MaxProbes int
}

func (c Config) withDefaults() Config {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.MaxProbes <= 0 {
		c.MaxProbes = 20
	}
	return c
}

// Validator drops malformed source URLs and, when probing is enabled,
// unreachable ones. Model output routinely includes invented or truncated
// links, so everything user-facing passes through here.
type Validator struct {
	cfg    Config
	client *http.Client
	logger logger.ILogger
}

func NewValidator(cfg Config, log logger.ILogger) *Validator {
	cfg = cfg.withDefaults()
	return &Validator{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.ProbeTimeout,
		},
		logger: log,
	}
}

// IsWellFormed reports whether raw parses as an absolute http or https URL
// with a host. Other schemes (ftp, mailto, bare paths) are rejected.
func (v *Validator) IsWellFormed(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Filter returns the subset of urls that pass validation, preserving order.
// Duplicates are checked once and kept once.
func (v *Validator) Filter(ctx context.Context, urls []string) []string {
	if len(urls) == 0 {
		return nil
	}

	kept := make([]string, 0, len(urls))
	verdicts := make(map[string]bool, len(urls))
	probes := 0

	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if verdict, done := verdicts[raw]; done {
			if verdict {
				kept = append(kept, raw)
			}
			continue
		}

		ok := v.IsWellFormed(raw)
		if ok && v.cfg.ProbeEnabled && probes < v.cfg.MaxProbes {
			probes++
			ok = v.probe(ctx, raw)
		}
		verdicts[raw] = ok
		if ok {
			kept = append(kept, raw)
		} else if v.logger != nil {
			v.logger.Info("URLCheck", "Dropped source URL", map[string]interface{}{"url": raw})
		}
	}

	if len(kept) == 0 {
		return nil
	}
	return kept
}

// probe checks reachability with HEAD first, then GET for servers that
// reject HEAD. Any status below 400 counts as reachable.
func (v *Validator) probe(ctx context.Context, raw string) bool {
	if ok, decided := v.probeOnce(ctx, http.MethodHead, raw); decided {
		return ok
	}
	ok, _ := v.probeOnce(ctx, http.MethodGet, raw)
	return ok
}

// probeOnce returns (reachable, decided). decided is false when the method
// itself was refused (405 or similar) and a retry with GET makes sense.
func (v *Validator) probeOnce(ctx context.Context, method, raw string) (bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, raw, nil)
	if err != nil {
		return false, true
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return false, true
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		return false, false
	}
	return resp.StatusCode < 400, true
}

// FilterPlan walks every source list a plan can carry and filters each one
// in place: activity enrichments, booking URLs, and transport legs.
func (v *Validator) FilterPlan(ctx context.Context, plan *travel.Plan) {
	if plan == nil {
		return
	}

	for di := range plan.Itinerary {
		for ai := range plan.Itinerary[di].Activities {
			enr := plan.Itinerary[di].Activities[ai].Enrichment
			if enr == nil {
				continue
			}
			v.filterEnrichment(ctx, enr)
		}
	}

	if plan.TransportToDestination != nil {
		v.filterTransport(ctx, plan.TransportToDestination)
	}
	if plan.TransportBackHome != nil {
		v.filterTransport(ctx, plan.TransportBackHome)
	}
}

func (v *Validator) filterEnrichment(ctx context.Context, enr *travel.Enrichment) {
	enr.Sources = v.Filter(ctx, enr.Sources)
	if enr.BookingURL != "" && !v.validateSingle(ctx, enr.BookingURL) {
		enr.BookingURL = ""
	}
	for i := range enr.HotelExamples {
		if enr.HotelExamples[i].BookingURL != "" && !v.validateSingle(ctx, enr.HotelExamples[i].BookingURL) {
			enr.HotelExamples[i].BookingURL = ""
		}
	}
}

func (v *Validator) filterTransport(ctx context.Context, tr *travel.TransportEnrichment) {
	tr.Sources = v.Filter(ctx, tr.Sources)
	for i := range tr.Options {
		if tr.Options[i].BookingURL != "" && !v.validateSingle(ctx, tr.Options[i].BookingURL) {
			tr.Options[i].BookingURL = ""
		}
	}
}

func (v *Validator) validateSingle(ctx context.Context, raw string) bool {
	return len(v.Filter(ctx, []string{raw})) == 1
}
