package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
)

// StreamEvent is one state change of a flow sent over SSE.
type StreamEvent struct {
	FlowID     string                   `json:"flow_id"`
	State      entity.VerificationState `json:"state"`
	Navigation entity.Navigation        `json:"navigation"`
	At         time.Time                `json:"at"`
}

type subscriber struct {
	ch   chan StreamEvent
	once sync.Once
}

func (sub *subscriber) close() {
	sub.once.Do(func() { close(sub.ch) })
}

// StreamFlow registers a stream for a flow and closes it when ctx is done or
// the flow is removed. The current state is delivered first.
func (s *Usecase) StreamFlow(ctx context.Context, in FlowInput) (<-chan StreamEvent, error) {
	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	sub := s.subscribe(f)

	go func() {
		<-ctx.Done()
		s.unsubscribe(f.id, sub)
	}()

	return sub.ch, nil
}

// subscribe registers a subscriber primed with the current state. A flow
// removed after lookup yields an already closed subscriber.
func (s *Usecase) subscribe(f *flow) *subscriber {
	sub := &subscriber{ch: make(chan StreamEvent, 10)}
	st := f.ctrl.State()
	sub.ch <- StreamEvent{FlowID: f.id, State: st, Navigation: f.navigation(st), At: s.clock.Now()}

	s.streamMu.Lock()
	defer s.streamMu.Unlock()

	// removeFlow drops the flow from the registry before taking streamMu
	if _, ok := s.flows.get(f.id); !ok {
		sub.close()
		return sub
	}

	if s.streams[f.id] == nil {
		s.streams[f.id] = make(map[*subscriber]struct{})
	}
	s.streams[f.id][sub] = struct{}{}
	return sub
}

func (s *Usecase) unsubscribe(flowID string, sub *subscriber) {
	s.streamMu.Lock()
	defer s.streamMu.Unlock()

	if subs := s.streams[flowID]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(s.streams, flowID)
		}
	}
	sub.close()
}

// broadcast never blocks; a subscriber with a full buffer misses the event.
func (s *Usecase) broadcast(evt StreamEvent) {
	s.streamMu.RLock()
	defer s.streamMu.RUnlock()

	for sub := range s.streams[evt.FlowID] {
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

func (s *Usecase) closeStreams(flowID string) {
	s.streamMu.Lock()
	defer s.streamMu.Unlock()

	for sub := range s.streams[flowID] {
		sub.close()
	}
	delete(s.streams, flowID)
}
