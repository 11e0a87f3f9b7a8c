// Package diagnostics runs the two independent background analysis
// channels described in the server design: a fast in-process "static"
// analyzer and a slower out-of-process "external" checker. Each channel
// is drained by one dedicated goroutine that debounces bursts of edits
// before publishing, mirroring the debounce-on-burst pattern in
// internal/watch's live-reload worker, repurposed here for diagnostics
// publication instead of browser reloads.
package diagnostics

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// MessageKind discriminates the variants of Message, following the same
// tagged-union-by-struct-field style as the teacher's jobs.Job rather
// than an interface, since neither variant carries distinct behavior.
type MessageKind int

const (
	// KindAnalyze carries a workspace/document snapshot pair to analyze.
	KindAnalyze MessageKind = iota
	// KindShutdown asks the channel's worker to terminate.
	KindShutdown
)

// Message is sent on a diagnostics channel.
type Message struct {
	Kind             MessageKind
	URI              string
	WorkspaceVersion int64
	DocumentText     string
}

// Diagnostic is a single analyzer finding. Severity follows the LSP
// DiagnosticSeverity numbering (1 Error .. 4 Hint) so callers can hand it
// straight to protocol.Diagnostic without remapping.
type Diagnostic struct {
	Line     int
	Column   int
	Severity int
	Message  string
	Source   string
}

// StaticAnalyzer runs the in-process analysis over a document snapshot.
type StaticAnalyzer interface {
	Analyze(uri string, text string) ([]Diagnostic, error)
}

// ExternalChecker spawns an out-of-process checker (e.g. chktex) over a
// document snapshot. Implementations typically shell out via os/exec,
// grounded on internal/tooling/build's external-process invocation
// style.
type ExternalChecker interface {
	Check(uri string, text string) ([]Diagnostic, error)
}

// Publisher delivers merged diagnostics for a URI to the client, e.g. by
// sending a textDocument/publishDiagnostics notification.
type Publisher interface {
	Publish(uri string, diags []Diagnostic)
}

// slot holds the most recently computed diagnostics for one URI from one
// channel.
type slot struct {
	diags []Diagnostic
}

// Manager is the per-URI last-value store, merged across both channels
// before publication, matching the teacher's Metrics struct shape in
// internal/web/jobs/worker.go (a mutex-guarded map of per-key state).
type Manager struct {
	mu       sync.RWMutex
	static   map[string]slot
	external map[string]slot
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		static:   make(map[string]slot),
		external: make(map[string]slot),
	}
}

// SetStatic records the static-channel diagnostics for uri.
func (m *Manager) SetStatic(uri string, diags []Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.static[uri] = slot{diags: diags}
}

// SetExternal records the external-channel diagnostics for uri.
func (m *Manager) SetExternal(uri string, diags []Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.external[uri] = slot{diags: diags}
}

// Merged returns the concatenation of uri's static and external
// diagnostics. Either side may be empty.
func (m *Manager) Merged(uri string) []Diagnostic {
	m.mu.RLock()
	defer m.mu.RUnlock()

	merged := append([]Diagnostic(nil), m.static[uri].diags...)
	merged = append(merged, m.external[uri].diags...)
	return merged
}

// KnownURIs returns every URI the manager has a slot for, on either
// channel.
func (m *Manager) KnownURIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{}, len(m.static)+len(m.external))
	for uri := range m.static {
		seen[uri] = struct{}{}
	}
	for uri := range m.external {
		seen[uri] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for uri := range seen {
		out = append(out, uri)
	}
	return out
}

// Options configures the debounce/no-debounce behavior of each channel.
type Options struct {
	// StaticDelay is the static channel's debounce sleep. Defaults to
	// 300ms if zero.
	StaticDelay time.Duration
	// ChannelBuffer sizes both channels. Defaults to 64 if zero.
	ChannelBuffer int
}

func (o Options) staticDelay() time.Duration {
	if o.StaticDelay <= 0 {
		return 300 * time.Millisecond
	}
	return o.StaticDelay
}

func (o Options) channelBuffer() int {
	if o.ChannelBuffer <= 0 {
		return 64
	}
	return o.ChannelBuffer
}

// Pipeline owns the two diagnostics channels and their worker
// goroutines.
type Pipeline struct {
	Static   chan Message
	External chan Message

	manager   *Manager
	analyzer  StaticAnalyzer
	checker   ExternalChecker
	publisher Publisher
	logger    *zap.Logger
	opts      Options

	wg sync.WaitGroup
}

// NewPipeline constructs a Pipeline but does not start its workers; call
// Start to do so.
func NewPipeline(manager *Manager, analyzer StaticAnalyzer, checker ExternalChecker, publisher Publisher, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		Static:    make(chan Message, opts.channelBuffer()),
		External:  make(chan Message, opts.channelBuffer()),
		manager:   manager,
		analyzer:  analyzer,
		checker:   checker,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// Start launches both channel workers.
func (p *Pipeline) Start() {
	p.wg.Add(2)
	go p.runStatic()
	go p.runExternal()
}

// Shutdown sends a Shutdown message to both channels and waits for their
// workers to terminate.
func (p *Pipeline) Shutdown() {
	p.Static <- Message{Kind: KindShutdown}
	p.External <- Message{Kind: KindShutdown}
	p.wg.Wait()
}

// runStatic implements the Static channel's state machine: Idle --Analyze-->
// Debounce --(drain done)--> Running --(publish)--> Idle, sleeping
// opts.staticDelay() before draining the burst and analyzing the first
// message's snapshot.
func (p *Pipeline) runStatic() {
	defer p.wg.Done()

	for msg := range p.Static {
		if msg.Kind == KindShutdown {
			return
		}

		batchFirst := msg
		timer := time.NewTimer(p.opts.staticDelay())
		terminated := p.drainDuringDebounce(p.Static, timer)
		if terminated {
			return
		}

		p.runAnalysis(batchFirst)
	}
}

// drainDuringDebounce blocks until timer fires, non-blockingly draining
// ch of any messages that arrive in the meantime. Reports whether a
// Shutdown message was observed.
func (p *Pipeline) drainDuringDebounce(ch chan Message, timer *time.Timer) bool {
	for {
		select {
		case <-timer.C:
			for {
				select {
				case next := <-ch:
					if next.Kind == KindShutdown {
						return true
					}
				default:
					return false
				}
			}
		case next := <-ch:
			if next.Kind == KindShutdown {
				timer.Stop()
				return true
			}
			// Collapse: keep waiting for the same timer, the burst's
			// first message is still what gets analyzed.
		}
	}
}

func (p *Pipeline) runAnalysis(msg Message) {
	if p.analyzer == nil {
		return
	}
	diags, err := p.analyzer.Analyze(msg.URI, msg.DocumentText)
	if err != nil {
		p.logger.Warn("static analysis failed", zap.String("uri", msg.URI), zap.Error(err))
		return
	}
	p.manager.SetStatic(msg.URI, diags)
	p.publishAll()
}

// runExternal implements the External channel's state machine: no sleep,
// only an inline non-blocking drain of whatever is immediately
// available.
func (p *Pipeline) runExternal() {
	defer p.wg.Done()

	for msg := range p.External {
		if msg.Kind == KindShutdown {
			return
		}

		batchFirst := msg
		if p.drainAvailable() {
			return
		}

		p.runCheck(batchFirst)
	}
}

func (p *Pipeline) drainAvailable() bool {
	for {
		select {
		case next := <-p.External:
			if next.Kind == KindShutdown {
				return true
			}
		default:
			return false
		}
	}
}

func (p *Pipeline) runCheck(msg Message) {
	if p.checker == nil {
		return
	}
	diags, err := p.checker.Check(msg.URI, msg.DocumentText)
	if err != nil {
		p.logger.Warn("external check failed", zap.String("uri", msg.URI), zap.Error(err))
		return
	}
	p.manager.SetExternal(msg.URI, diags)
	p.publishAll()
}

// publishAll emits a publish notification for every URI the manager
// knows about. Publication failure is logged and swallowed per uri, the
// pipeline stays alive.
func (p *Pipeline) publishAll() {
	if p.publisher == nil {
		return
	}
	for _, uri := range p.manager.KnownURIs() {
		p.publisher.Publish(uri, p.manager.Merged(uri))
	}
}
