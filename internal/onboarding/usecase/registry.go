package usecase

import (
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/onboarding/otpflow"
	"go.uber.org/atomic"
)

type flow struct {
	id        string
	deviceID  string
	ctrl      *otpflow.Controller
	completed *atomic.Bool
	touched   *atomic.Time

	// lastStage is only read and written from the controller's OnChange.
	lastStage entity.Stage
}

func (f *flow) touch(at time.Time) {
	f.touched.Store(at)
}

func (f *flow) navigation(st entity.VerificationState) entity.Navigation {
	return entity.NavigationFor(st.Stage, f.completed.Load())
}

// RegistryStats is a point-in-time view of the flow registry.
type RegistryStats struct {
	Active  int   `json:"active"`
	Started int64 `json:"started"`
	Removed int64 `json:"removed"`
}

type registry struct {
	mu      sync.RWMutex
	flows   map[string]*flow
	started *atomic.Int64
	removed *atomic.Int64
}

func newRegistry() *registry {
	return &registry{
		flows:   make(map[string]*flow),
		started: atomic.NewInt64(0),
		removed: atomic.NewInt64(0),
	}
}

func (r *registry) add(f *flow) {
	r.mu.Lock()
	r.flows[f.id] = f
	r.mu.Unlock()

	r.started.Inc()
}

func (r *registry) get(id string) (*flow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.flows[id]
	return f, ok
}

// remove reports false when the flow was already gone.
func (r *registry) remove(id string) (*flow, bool) {
	r.mu.Lock()
	f, ok := r.flows[id]
	delete(r.flows, id)
	r.mu.Unlock()

	if ok {
		r.removed.Inc()
	}
	return f, ok
}

func (r *registry) snapshot() []*flow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Values(r.flows)
}

func (r *registry) byDevice(deviceID string) []*flow {
	return lo.Filter(r.snapshot(), func(f *flow, _ int) bool {
		return f.deviceID == deviceID
	})
}

// idle returns flows last touched before cutoff.
func (r *registry) idle(cutoff time.Time) []*flow {
	return lo.Filter(r.snapshot(), func(f *flow, _ int) bool {
		return f.touched.Load().Before(cutoff)
	})
}

func (r *registry) stats() RegistryStats {
	r.mu.RLock()
	active := len(r.flows)
	r.mu.RUnlock()

	return RegistryStats{Active: active, Started: r.started.Load(), Removed: r.removed.Load()}
}
