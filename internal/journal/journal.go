package journal

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

// Journal decouples the ledger engine from event consumers. The engine emits
// under its mutex, so Record must never block: events land in a buffered
// channel and a single Run loop persists them and fans them out to
// subscribers (alert notifier, websocket feed). The journal is the sole audit
// trail, so no event is ever discarded: when the channel is full, events
// spill into an overflow slice that Run drains once the channel empties.
// While the overflow holds events, new ones append behind them so emission
// order is preserved.
type Journal struct {
	logger *logger.Logger
	repo   models.Repository

	events chan *models.Event

	mu   sync.RWMutex
	subs []Subscriber

	overflowMu sync.Mutex
	overflow   []*models.Event
}

// Subscriber receives every journaled event in emission order.
type Subscriber interface {
	Notify(event *models.Event)
}

// New creates a journal with the given channel buffer size.
func New(repo models.Repository, log *logger.Logger, buffer int) *Journal {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Journal{
		logger: log,
		repo:   repo,
		events: make(chan *models.Event, buffer),
	}
}

// Subscribe registers a consumer for future events.
func (j *Journal) Subscribe(sub Subscriber) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.subs = append(j.subs, sub)
}

// Record implements models.EventSink. It never blocks and never drops:
// a full channel spills into the overflow slice, and once anything sits in
// the overflow all newer events queue behind it until Run catches up.
func (j *Journal) Record(event *models.Event) {
	j.overflowMu.Lock()
	defer j.overflowMu.Unlock()

	if len(j.overflow) > 0 {
		j.overflow = append(j.overflow, event)
		return
	}
	select {
	case j.events <- event:
	default:
		j.overflow = append(j.overflow, event)
		j.logger.Warn("Event journal buffer full, spilling to overflow ", "kind ", event.Kind, " id ", event.ID)
	}
}

// Run drains the event channel until ctx is cancelled, persisting each event
// and notifying subscribers. Intended to run in its own goroutine.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			j.drain()
			return
		case event := <-j.events:
			j.dispatch(event)
		default:
			// Channel momentarily empty: anything in the overflow is now
			// the oldest pending work.
			if event, ok := j.takeOverflow(); ok {
				j.dispatch(event)
				continue
			}
			select {
			case <-ctx.Done():
				j.drain()
				return
			case event := <-j.events:
				j.dispatch(event)
			}
		}
	}
}

// drain flushes whatever is still buffered at shutdown, channel first since
// overflow events are always newer.
func (j *Journal) drain() {
	for {
		select {
		case event := <-j.events:
			j.dispatch(event)
		default:
			if event, ok := j.takeOverflow(); ok {
				j.dispatch(event)
				continue
			}
			return
		}
	}
}

// takeOverflow pops the oldest spilled event, if any.
func (j *Journal) takeOverflow() (*models.Event, bool) {
	j.overflowMu.Lock()
	defer j.overflowMu.Unlock()
	if len(j.overflow) == 0 {
		return nil, false
	}
	event := j.overflow[0]
	j.overflow = j.overflow[1:]
	if len(j.overflow) == 0 {
		j.overflow = nil
	}
	return event, true
}

func (j *Journal) dispatch(event *models.Event) {
	if j.repo != nil {
		if err := j.repo.SaveEvent(event); err != nil {
			j.logger.Error("Failed to persist event ", "id ", event.ID, " error ", err)
		}
	}

	j.mu.RLock()
	subs := j.subs
	j.mu.RUnlock()
	for _, sub := range subs {
		j.safeNotify(sub, event)
	}
}

// safeNotify delivers to one subscriber with panic recovery so a broken
// consumer cannot take down the journal loop.
func (j *Journal) safeNotify(sub Subscriber, event *models.Event) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("Event subscriber panicked ",
				"kind ", event.Kind,
				" panic ", r,
				" stack ", string(debug.Stack()))
		}
	}()
	sub.Notify(event)
}
