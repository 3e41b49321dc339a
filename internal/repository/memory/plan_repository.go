package memory

import (
	"travelmind-be/pkg/travel"

	"github.com/patrickmn/go-cache"
)

// PlanRepository keeps generated plans in process memory. Plans never
// expire on their own; the process lifetime is the retention window.
type PlanRepository struct {
	cache *cache.Cache
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *PlanRepository) Save(plan *travel.Plan) {
	r.cache.Set(plan.ID, plan, cache.NoExpiration)
}

func (r *PlanRepository) Get(planID string) (*travel.Plan, bool) {
	if x, found := r.cache.Get(planID); found {
		return x.(*travel.Plan), true
	}
	return nil, false
}

func (r *PlanRepository) Delete(planID string) {
	r.cache.Delete(planID)
}
