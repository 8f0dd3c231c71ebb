package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/broadcast"
)

type serviceTestSuite struct {
	suite.Suite

	servers []*httptest.Server
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(serviceTestSuite))
}

func (s *serviceTestSuite) TearDownTest() {
	for _, srv := range s.servers {
		srv.Close()
	}
	s.servers = nil
}

// newTestRelay runs an in-process relay speaking the wire protocol: EVENT
// frames are acked with OK, REQ frames replay the canned events then EOSE.
func (s *serviceTestSuite) newTestRelay(events []*broadcast.Event, accept bool) string {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var raw []json.RawMessage
			if json.Unmarshal(msg, &raw) != nil || len(raw) < 2 {
				continue
			}
			var typ string
			if json.Unmarshal(raw[0], &typ) != nil {
				continue
			}
			switch typ {
			case "EVENT":
				ev := &broadcast.Event{}
				if json.Unmarshal(raw[1], ev) != nil {
					continue
				}
				frame, _ := json.Marshal([]interface{}{"OK", ev.Id, accept, ""})
				conn.WriteMessage(websocket.TextMessage, frame)
			case "REQ":
				var sub string
				if json.Unmarshal(raw[1], &sub) != nil {
					continue
				}
				for _, ev := range events {
					frame, _ := json.Marshal([]interface{}{"EVENT", sub, ev})
					conn.WriteMessage(websocket.TextMessage, frame)
				}
				frame, _ := json.Marshal([]interface{}{"EOSE", sub})
				conn.WriteMessage(websocket.TextMessage, frame)
			}
		}
	}))
	s.servers = append(s.servers, srv)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (s *serviceTestSuite) newService(endpoints ...string) broadcast.Service {
	return New(&ServiceCfg{
		Endpoints:        endpoints,
		Timeout:          3 * time.Second,
		HandshakeTimeout: time.Second,
	})
}

func event(id string) *broadcast.Event {
	return &broadcast.Event{
		Id:        id,
		Kind:      broadcast.KindMint,
		Tags:      [][]string{{"t", broadcast.AppTag}},
		CreatedAt: domain.Now(),
	}
}

func (s *serviceTestSuite) TestPublishFirstAckWins() {
	rejecting := s.newTestRelay(nil, false)
	accepting := s.newTestRelay(nil, true)
	svc := s.newService(rejecting, accepting)

	s.Nil(svc.Publish(ctx.Background(), event("ev-1")))
}

func (s *serviceTestSuite) TestPublishNoAck() {
	svc := s.newService(s.newTestRelay(nil, false), s.newTestRelay(nil, false))

	s.ErrorIs(svc.Publish(ctx.Background(), event("ev-1")), domain.ErrNoRelayAck)
}

func (s *serviceTestSuite) TestQueryMergesAndDedupes() {
	a := s.newTestRelay([]*broadcast.Event{event("ev-1"), event("ev-2")}, true)
	b := s.newTestRelay([]*broadcast.Event{event("ev-2"), event("ev-3")}, true)
	svc := s.newService(a, b)

	events, err := svc.Query(ctx.Background(), &broadcast.Filter{Kinds: []broadcast.Kind{broadcast.KindMint}})
	s.Nil(err)

	ids := map[string]bool{}
	for _, ev := range events {
		ids[ev.Id] = true
	}
	s.Len(events, 3)
	s.True(ids["ev-1"] && ids["ev-2"] && ids["ev-3"])
}

func (s *serviceTestSuite) TestQueryToleratesOneDeadRelay() {
	alive := s.newTestRelay([]*broadcast.Event{event("ev-1")}, true)
	dead := s.newTestRelay(nil, true)
	s.servers[len(s.servers)-1].Close()

	svc := s.newService(alive, dead)
	events, err := svc.Query(ctx.Background(), &broadcast.Filter{})
	s.Nil(err)
	s.Len(events, 1)
}

func (s *serviceTestSuite) TestQueryFailsWhenAllRelaysDown() {
	dead := s.newTestRelay(nil, true)
	s.servers[len(s.servers)-1].Close()

	svc := s.newService(dead)
	_, err := svc.Query(ctx.Background(), &broadcast.Filter{})
	s.ErrorIs(err, domain.ErrNoRelayAck)
}
