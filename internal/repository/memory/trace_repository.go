package memory

import (
	"time"

	"travelmind-be/pkg/travel"

	"github.com/patrickmn/go-cache"
)

// TraceRepository keeps pipeline debug traces keyed by plan id. Traces are
// diagnostic, so unlike plans they age out after a day.
type TraceRepository struct {
	cache *cache.Cache
}

func NewTraceRepository() *TraceRepository {
	return &TraceRepository{
		cache: cache.New(24*time.Hour, 1*time.Hour),
	}
}

func (r *TraceRepository) Save(trace *travel.Trace) {
	r.cache.Set(trace.PlanID, trace, cache.DefaultExpiration)
}

func (r *TraceRepository) Get(planID string) (*travel.Trace, bool) {
	if x, found := r.cache.Get(planID); found {
		return x.(*travel.Trace), true
	}
	return nil, false
}
