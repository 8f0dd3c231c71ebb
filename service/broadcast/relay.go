package broadcast

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/domain/broadcast"
)

var (
	ErrRejected = errors.New("relay rejected event")
)

const (
	// writeWait is the time allowed to write a frame to the relay.
	writeWait = 10 * time.Second
)

// relayConn speaks the relay wire protocol over one short-lived websocket
// connection: ["EVENT", ev] answered by ["OK", id, accepted, msg], and
// ["REQ", sub, filter] answered by ["EVENT", sub, ev]... ["EOSE", sub].
type relayConn struct {
	url    string
	dialer *websocket.Dialer
}

func newRelayConn(url string, handshakeTimeout time.Duration) *relayConn {
	return &relayConn{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

func (r *relayConn) dial(c bCtx.Ctx) (*websocket.Conn, error) {
	conn, _, err := r.dialer.DialContext(c, r.url, nil)
	if err != nil {
		return nil, err
	}
	if deadline, ok := c.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	return conn, nil
}

// publish sends one event and waits for the relay's OK frame.
func (r *relayConn) publish(c bCtx.Ctx, ev *broadcast.Event) error {
	conn, err := r.dial(c)
	if err != nil {
		return err
	}
	defer conn.Close()

	frame, err := json.Marshal([]interface{}{"EVENT", ev})
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return err
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(msg, &raw); err != nil || len(raw) < 1 {
			continue
		}
		var typ string
		if err := json.Unmarshal(raw[0], &typ); err != nil || typ != "OK" {
			continue
		}
		if len(raw) < 3 {
			return ErrRejected
		}
		var accepted bool
		if err := json.Unmarshal(raw[2], &accepted); err != nil || !accepted {
			return ErrRejected
		}
		return nil
	}
}

// query requests all events matching the filter and reads until EOSE.
func (r *relayConn) query(c bCtx.Ctx, f *broadcast.Filter) ([]*broadcast.Event, error) {
	conn, err := r.dial(c)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	sub := uuid.NewString()
	frame, err := json.Marshal([]interface{}{"REQ", sub, f})
	if err != nil {
		return nil, err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return nil, err
	}

	events := []*broadcast.Event{}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(msg, &raw); err != nil || len(raw) < 1 {
			continue
		}
		var typ string
		if err := json.Unmarshal(raw[0], &typ); err != nil {
			continue
		}
		switch typ {
		case "EVENT":
			if len(raw) < 3 {
				continue
			}
			ev := &broadcast.Event{}
			if err := json.Unmarshal(raw[2], ev); err != nil {
				c.WithFields(log.Fields{
					"relay": r.url,
					"err":   err,
				}).Warn("dropping malformed event")
				continue
			}
			events = append(events, ev)
		case "EOSE":
			return events, nil
		}
	}
}
