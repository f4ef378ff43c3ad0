package core

import "context"

// ConnectEvent is one demultiplexed notification from an exec/attach
// session: exactly one of Stdout/Stderr/ErrorStatus/Resize/Other is set,
// or Closed is true once the session has ended, whether normally or with
// an error.
type ConnectEvent struct {
	Stdout      []byte
	Stderr      []byte
	ErrorStatus []byte
	Resize      []byte
	Other       []byte
	Closed      bool
}

// ConnectStream is a full-duplex exec/attach session opened over a
// channel-framed WebSocket, per spec §4.10.
type ConnectStream struct {
	base *RunnerBase
	conn *Conn
	op   Operation

	events chan ConnectEvent
	stdin  chan []byte
	errc   chan error
	cancel context.CancelFunc
}

// NewConnectStream opens the WebSocket upgrade for op (verb must be
// VerbConnect) against conn and begins demultiplexing inbound frames in the
// background. Cancelling ctx closes the underlying socket.
func NewConnectStream(ctx context.Context, base *RunnerBase, conn *Conn, op Operation) *ConnectStream {
	workerCtx, cancel := context.WithCancel(ctx)
	s := &ConnectStream{
		base:   base,
		conn:   conn,
		op:     op,
		events: make(chan ConnectEvent),
		stdin:  make(chan []byte),
		errc:   make(chan error, 1),
		cancel: cancel,
	}
	go s.run(workerCtx)
	return s
}

// WriteStdin sends payload to the session's stdin channel (0x00). It
// blocks until the worker goroutine accepts it or ctx is cancelled.
func (s *ConnectStream) WriteStdin(ctx context.Context, payload []byte) error {
	select {
	case s.stdin <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ConnectStream) run(ctx context.Context) {
	defer close(s.events)

	req, err := s.base.Render(ctx, s.conn, s.op, nil)
	if err != nil {
		s.errc <- err
		return
	}

	err = s.conn.Transport.ConnectWS(ctx, req.URL, req.Headers, s.stdin, func(frame ChannelFrame) error {
		evt := ConnectEvent{}
		switch frame.Channel {
		case 0x01:
			evt.Stdout = frame.Payload
		case 0x02:
			evt.Stderr = frame.Payload
		case 0x03:
			evt.ErrorStatus = frame.Payload
		case 0x04:
			evt.Resize = frame.Payload
		default:
			evt.Other = frame.Payload
		}
		select {
		case s.events <- evt:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		s.errc <- err
		return
	}
	s.errc <- nil
}

// Next blocks for the next demultiplexed event. ok is false once the
// session has ended (check Err for a non-nil terminal error).
func (s *ConnectStream) Next(ctx context.Context) (ConnectEvent, bool) {
	select {
	case evt, open := <-s.events:
		if !open {
			return ConnectEvent{Closed: true}, false
		}
		return evt, true
	case <-ctx.Done():
		return ConnectEvent{}, false
	}
}

// Err returns the terminal error recorded when the session ended, or nil
// for a normal (1000, "") close. Only meaningful after Next has returned
// ok=false.
func (s *ConnectStream) Err() error {
	select {
	case err := <-s.errc:
		return err
	default:
		return nil
	}
}

// Close terminates the session and releases the underlying socket.
func (s *ConnectStream) Close() {
	s.cancel()
}
