// Package telemetry accepts job lifecycle events from external devices over
// TCP and folds completed jobs into a monitoring session. The wire format is
// one JSON object per line.
package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/me/wisched/internal/monitor"
	"github.com/me/wisched/pkg/model"
)

// Event is one reported job lifecycle transition. A "release" event announces
// a job with its release tick and absolute deadline; a "done" event closes it
// with the completion tick. Fields not relevant to the event type are zero.
type Event struct {
	Type     string `json:"type"` // "release" or "done"
	Task     string `json:"task"`
	Number   int    `json:"number"`
	Release  int    `json:"release,omitempty"`
	Start    int    `json:"start,omitempty"`
	Deadline int    `json:"deadline,omitempty"`
	End      int    `json:"end,omitempty"`
}

// Listener is the TCP telemetry endpoint. Release events are held until the
// matching done event arrives; the pair becomes one observed job record.
type Listener struct {
	session *monitor.Session
	logger  *slog.Logger

	ln net.Listener
	wg sync.WaitGroup

	mu      sync.Mutex
	pending map[string]Event
	closed  bool
}

// NewListener creates a telemetry listener feeding the given session.
func NewListener(session *monitor.Session, logger *slog.Logger) *Listener {
	return &Listener{
		session: session,
		logger:  logger.With("component", "telemetry"),
		pending: make(map[string]Event),
	}
}

// Start binds addr and begins accepting connections. It returns once the
// socket is listening; connection handling runs in the background.
func (l *Listener) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", addr, err)
	}
	l.ln = ln
	l.logger.Info("telemetry listening", "addr", ln.Addr().String())

	l.wg.Add(1)
	go l.acceptLoop()
	return nil
}

// Addr returns the bound address, useful when starting on ":0".
func (l *Listener) Addr() string {
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

// Close stops accepting and waits for in-flight connections to drain.
func (l *Listener) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	var err error
	if l.ln != nil {
		err = l.ln.Close()
	}
	l.wg.Wait()
	return err
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Warn("accept failed", "error", err)
			continue
		}
		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	l.logger.Debug("device connected", "remote", remote)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			l.logger.Warn("malformed event", "remote", remote, "error", err)
			continue
		}
		l.handleEvent(ev, remote)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		l.logger.Debug("device read ended", "remote", remote, "error", err)
	}
	l.logger.Debug("device disconnected", "remote", remote)
}

func (l *Listener) handleEvent(ev Event, remote string) {
	key := ev.Task + "_" + fmt.Sprint(ev.Number)
	switch ev.Type {
	case "release":
		l.mu.Lock()
		l.pending[key] = ev
		l.mu.Unlock()
		l.logger.Debug("job released", "job", key, "deadline", ev.Deadline)

	case "done":
		l.mu.Lock()
		rel, ok := l.pending[key]
		if ok {
			delete(l.pending, key)
		}
		l.mu.Unlock()
		if !ok {
			l.logger.Warn("done without matching release", "job", key, "remote", remote)
			return
		}
		start := ev.Start
		if start == 0 {
			start = rel.Start
		}
		rec := model.JobRecord{
			Task:     ev.Task,
			Number:   ev.Number,
			Arrival:  rel.Release,
			Start:    start,
			Finish:   ev.End,
			Deadline: rel.Deadline,
			Response: ev.End - rel.Release,
			Missed:   ev.End > rel.Deadline,
		}
		l.session.Observe(rec)

	default:
		l.logger.Warn("unknown event type", "type", ev.Type, "remote", remote)
	}
}

// Pending returns the number of jobs released but not yet reported done.
func (l *Listener) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}
