package mqtt

// bufferedMsg is a serialized message waiting for the broker to come back.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox queues messages published while the broker is unreachable.
// Retained messages (transitions, STARTUP, SHUTDOWN) are replayed in order.
// A non-retained message replaces any queued non-retained message on the same
// topic, so after a long outage only the latest heartbeat is sent.
// Callers must synchronize.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	overflow bool
}

func newOutbox(capacity int) *outbox {
	return &outbox{capacity: capacity}
}

// add queues msg, dropping the oldest message when full. It reports true the
// first time a message is dropped since the last drain.
func (o *outbox) add(msg bufferedMsg) bool {
	if !msg.retained {
		for i, queued := range o.msgs {
			if !queued.retained && queued.topic == msg.topic {
				o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
				break
			}
		}
	}

	dropped := false
	if len(o.msgs) >= o.capacity {
		o.msgs = o.msgs[1:]
		dropped = !o.overflow
		o.overflow = true
	}
	o.msgs = append(o.msgs, msg)
	return dropped
}

// drain returns the queued messages oldest first and empties the outbox.
func (o *outbox) drain() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	out := o.msgs
	o.msgs = nil
	o.overflow = false
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
