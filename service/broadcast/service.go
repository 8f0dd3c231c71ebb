package broadcast

import (
	"sync"
	"time"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/metrics"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/broadcast"
)

type ServiceCfg struct {
	// Endpoints are the relay websocket urls. At least one is required.
	Endpoints []string
	// Timeout bounds one publish or query across all relays.
	Timeout          time.Duration
	HandshakeTimeout time.Duration
}

type service struct {
	relays  []*relayConn
	timeout time.Duration
	met     metrics.Service
}

// New returns a broadcast.Service fanning out over the configured relays.
// Publish succeeds on the first acknowledging relay; Query merges every
// reachable relay's answer and dedupes by event id.
func New(cfg *ServiceCfg) broadcast.Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	handshake := cfg.HandshakeTimeout
	if handshake == 0 {
		handshake = 5 * time.Second
	}
	relays := make([]*relayConn, 0, len(cfg.Endpoints))
	for _, url := range cfg.Endpoints {
		relays = append(relays, newRelayConn(url, handshake))
	}
	return &service{
		relays:  relays,
		timeout: timeout,
		met:     metrics.New("broadcast"),
	}
}

func (s *service) Publish(c bCtx.Ctx, ev *broadcast.Event) error {
	defer s.met.BumpTime("publish.time").End()

	ctx, cancel := bCtx.WithTimeout(c, s.timeout)
	defer cancel()

	acked := make(chan struct{})
	var once sync.Once
	var wg sync.WaitGroup
	for _, r := range s.relays {
		wg.Add(1)
		go func(r *relayConn) {
			defer wg.Done()
			if err := r.publish(ctx, ev); err != nil {
				ctx.WithFields(log.Fields{
					"relay": r.url,
					"event": ev.Id,
					"err":   err,
				}).Warn("relay publish failed")
				return
			}
			once.Do(func() { close(acked) })
		}(r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-acked:
		// first ack wins; in-flight attempts are cancelled on return
		return nil
	case <-done:
		select {
		case <-acked:
			return nil
		default:
		}
		s.met.BumpSum("publish.err", 1)
		return domain.ErrNoRelayAck
	}
}

func (s *service) Query(c bCtx.Ctx, f *broadcast.Filter) ([]*broadcast.Event, error) {
	defer s.met.BumpTime("query.time").End()

	ctx, cancel := bCtx.WithTimeout(c, s.timeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	merged := map[string]*broadcast.Event{}
	okCount := 0

	for _, r := range s.relays {
		wg.Add(1)
		go func(r *relayConn) {
			defer wg.Done()
			events, err := r.query(ctx, f)
			if err != nil {
				ctx.WithFields(log.Fields{
					"relay": r.url,
					"err":   err,
				}).Warn("relay query failed")
				return
			}
			mu.Lock()
			defer mu.Unlock()
			okCount++
			for _, ev := range events {
				// relays may return the same event; keep one copy by id
				if _, ok := merged[ev.Id]; !ok {
					merged[ev.Id] = ev
				}
			}
		}(r)
	}
	wg.Wait()

	if okCount == 0 {
		s.met.BumpSum("query.err", 1)
		return nil, domain.ErrNoRelayAck
	}

	events := make([]*broadcast.Event, 0, len(merged))
	for _, ev := range merged {
		events = append(events, ev)
	}
	return events, nil
}
