package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	serrors "securechat/internal/errors"
	"securechat/pkg/transport"
)

// Handler receives chat room events from the registry's serve loop. All
// callbacks run outside the registry lock; OnMessage runs on the session's
// read goroutine.
type Handler interface {
	// OnJoin fires after an inbound session completes its handshake and is
	// registered.
	OnJoin(session *Session)

	// OnLeave fires after a registered session ends, with the error that
	// ended it (ErrPeerClosed for an orderly disconnect).
	OnLeave(label string, err error)

	// OnMessage fires for each decrypted inbound message.
	OnMessage(label, text string)
}

// DropFunc is notified when a broadcast or directed send evicts a failed
// recipient. Delivery semantics do not change: drops are silent to the other
// participants either way.
type DropFunc func(label string, err error)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Username is the host identity announced in every inbound handshake.
	Username string

	// Listener supplies inbound transports to Run. May be nil when the
	// registry is fed sessions directly through Add.
	Listener transport.Listener

	// Handler receives join/leave/message events from Run. May be nil.
	Handler Handler

	// Logger for lifecycle events. Defaults to a nop logger.
	Logger *zap.Logger

	// OnDrop is the optional eviction hook. May be nil.
	OnDrop DropFunc

	// ObserverFactory builds a per-session observer for inbound sessions.
	// May be nil.
	ObserverFactory ObserverFactory
}

// Registry tracks all live sessions of a chat host, keyed by peer label.
//
// One mutex guards the session map. The lock is held only for map reads and
// writes; message I/O always happens outside it, on a snapshot, so one slow
// or dead peer can never stall the registry or the other peers.
type Registry struct {
	username string
	listener transport.Listener
	handler  Handler
	log      *zap.Logger
	onDrop   DropFunc
	obsFact  ObserverFactory

	mu       sync.Mutex
	sessions map[string]*Session
	pending  map[*Session]struct{}
	stopped  bool

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	handler := cfg.Handler
	if handler == nil {
		handler = nopHandler{}
	}
	return &Registry{
		username: cfg.Username,
		listener: cfg.Listener,
		handler:  handler,
		log:      log,
		onDrop:   cfg.OnDrop,
		obsFact:  cfg.ObserverFactory,
		sessions: make(map[string]*Session),
		pending:  make(map[*Session]struct{}),
	}
}

// Add registers an established session under its peer label. Exactly one
// session per label: a second Add with the same label fails with
// ErrDuplicatePeer and leaves the original untouched.
func (r *Registry) Add(s *Session) error {
	label := s.PeerLabel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return serrors.ErrRegistryStopped
	}
	if _, ok := r.sessions[label]; ok {
		return serrors.ErrDuplicatePeer
	}
	r.sessions[label] = s
	return nil
}

// Remove unregisters the session. Removal is identity-checked: the label's
// entry is deleted only while it still points at s, so a stale removal (a
// read loop cleaning up after an eviction already replaced by a reconnect
// under the same label) cannot unregister the newer live session. Removing
// an absent or replaced session is a no-op. The session itself is not
// closed.
func (r *Registry) Remove(s *Session) {
	label := s.PeerLabel()

	r.mu.Lock()
	if r.sessions[label] == s {
		delete(r.sessions, label)
	}
	r.mu.Unlock()
}

// Get returns the session for label, or nil.
func (r *Registry) Get(label string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[label]
}

// Labels returns the labels of all registered sessions.
func (r *Registry) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	labels := make([]string, 0, len(r.sessions))
	for label := range r.sessions {
		labels = append(labels, label)
	}
	return labels
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Broadcast sends text to every registered session. A recipient whose send
// fails is evicted and closed; delivery to the others proceeds. prefix, when
// non-empty, formats the payload as "prefix: text".
func (r *Registry) Broadcast(prefix, text string) {
	r.broadcast(r.snapshot(), prefix, text)
}

// ForwardFrom relays text to every registered session except the sender's.
// Used by a host to fan a participant's message out to the rest of the room.
func (r *Registry) ForwardFrom(senderLabel, prefix, text string) {
	all := r.snapshot()
	targets := all[:0]
	for _, s := range all {
		if s.PeerLabel() != senderLabel {
			targets = append(targets, s)
		}
	}
	r.broadcast(targets, prefix, text)
}

// SendTo sends text to the single session registered under label. Unlike
// Broadcast, a send failure is reported to the caller; the failed session is
// still evicted and closed.
func (r *Registry) SendTo(label, prefix, text string) error {
	r.mu.Lock()
	s, ok := r.sessions[label]
	r.mu.Unlock()

	if !ok {
		return serrors.ErrTargetNotFound
	}

	if err := s.SendMessage(payload(prefix, text)); err != nil {
		r.evict(label, s, err)
		return err
	}
	return nil
}

// Stop closes the listener and every registered session, clears the
// registry, and waits for the serve goroutines to finish. Idempotent.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		sessions := make([]*Session, 0, len(r.sessions)+len(r.pending))
		for _, s := range r.sessions {
			sessions = append(sessions, s)
		}
		// Half-open handshakes must be closed too, or their serve
		// goroutines stay blocked in a read and Wait never returns.
		for s := range r.pending {
			sessions = append(sessions, s)
		}
		r.sessions = make(map[string]*Session)
		r.pending = make(map[*Session]struct{})
		r.mu.Unlock()

		if r.listener != nil {
			_ = r.listener.Close()
		}
		for _, s := range sessions {
			s.Close()
		}
		r.wg.Wait()
		r.log.Info("registry stopped")
	})
}

// Run accepts inbound transports, handshakes each in its own goroutine, and
// pumps decrypted messages to the Handler. A failed accept or handshake on
// one connection never stops the loop; Run returns when the listener closes
// or ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	if r.listener == nil {
		return serrors.NewProtocolError("registry", serrors.ErrRegistryStopped)
	}

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	r.log.Info("listening", zap.String("addr", r.listener.Addr()))

	for {
		t, err := r.listener.Accept()
		if err != nil {
			if r.isStopped() {
				return nil
			}
			return err
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.serve(ctx, t)
		}()
	}
}

// serve handshakes one inbound transport and runs its read loop.
func (r *Registry) serve(ctx context.Context, t transport.Transport) {
	s := NewSession(t, r.username)
	if r.obsFact != nil {
		s.SetObserver(r.obsFact(s))
	}

	// Track the session while it handshakes so Stop can close it.
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		s.Close()
		return
	}
	r.pending[s] = struct{}{}
	r.mu.Unlock()

	err := s.Handshake(ctx)
	var addErr error
	if err == nil {
		addErr = r.Add(s)
	}
	r.mu.Lock()
	delete(r.pending, s)
	r.mu.Unlock()

	if err != nil {
		r.log.Warn("handshake failed",
			zap.String("remote", t.PeerLabel()),
			zap.Error(err))
		return
	}

	label := s.PeerLabel()
	if addErr != nil {
		r.log.Warn("session rejected",
			zap.String("label", label),
			zap.Error(addErr))
		s.Close()
		return
	}

	r.log.Info("peer joined", zap.String("label", label))
	r.handler.OnJoin(s)

	for {
		text, err := s.RecvMessage()
		if err != nil {
			r.Remove(s)
			s.Close()
			r.log.Info("peer left",
				zap.String("label", label),
				zap.Error(err))
			r.handler.OnLeave(label, err)
			return
		}
		r.handler.OnMessage(label, text)
	}
}

// snapshot copies the current session set under the lock so that message
// I/O can run without it.
func (r *Registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) broadcast(targets []*Session, prefix, text string) {
	msg := payload(prefix, text)
	for _, s := range targets {
		if err := s.SendMessage(msg); err != nil {
			r.evict(s.PeerLabel(), s, err)
		}
	}
}

// evict removes and closes a session that failed a send.
func (r *Registry) evict(label string, s *Session, err error) {
	r.Remove(s)
	s.Close()
	r.log.Debug("peer evicted",
		zap.String("label", label),
		zap.Error(err))
	if r.onDrop != nil {
		r.onDrop(label, err)
	}
}

func (r *Registry) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func payload(prefix, text string) string {
	if prefix == "" {
		return text
	}
	return prefix + ": " + text
}

type nopHandler struct{}

func (nopHandler) OnJoin(*Session) {}

func (nopHandler) OnLeave(string, error) {}

func (nopHandler) OnMessage(string, string) {}
