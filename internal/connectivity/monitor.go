package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"campus-sync/internal/config"
	"campus-sync/internal/logger"
)

const defaultProbeURL = "http://clients3.google.com/generate_204"

// Monitor polls a probe URL and tracks validated reachability. A link that
// answers the probe counts as online; a captive portal that swallows it
// does not flip the state until the configured success threshold is met.
//
// Events() delivers one signal per offline-to-online transition. Going
// offline raises no event; IsOnline covers the point-in-time question.
type Monitor struct {
	probeURL  string
	threshold int
	client    *http.Client
	interval  time.Duration

	mu        sync.Mutex
	online    bool
	successes int
	started   bool

	events chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMonitor(cfg config.ConnectivityConfig) *Monitor {
	probeURL := cfg.ProbeURL
	if probeURL == "" {
		probeURL = defaultProbeURL
	}

	threshold := cfg.SuccessThreshold
	if threshold < 1 {
		threshold = 1
	}

	// Redirects are not followed: a captive portal that rewrites the
	// probe into its login page must not look like validated internet.
	client := &http.Client{
		Timeout: cfg.GetProbeTimeout(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Monitor{
		probeURL:  probeURL,
		threshold: threshold,
		client:    client,
		interval:  cfg.GetProbeInterval(),
		events:    make(chan struct{}, 1),
	}
}

func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(1)
	go m.run(ctx)

	logger.Log.Info("Started connectivity monitor", zap.String("probe_url", m.probeURL))
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckNow(ctx)

	for {
		select {
		case <-ticker.C:
			m.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// IsOnline reports the last validated reachability state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Events delivers one signal per offline-to-online transition. The channel
// holds at most one pending signal; an unconsumed edge is not duplicated.
func (m *Monitor) Events() <-chan struct{} {
	return m.events
}

// CheckNow runs one probe round synchronously and returns the resulting
// online state.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	reachable := m.probe(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !reachable {
		if m.online {
			logger.Log.Info("Connectivity lost")
		}
		m.online = false
		m.successes = 0
		return false
	}

	m.successes++
	if !m.online && m.successes >= m.threshold {
		m.online = true
		logger.Log.Info("Connectivity restored", zap.Int("probes", m.successes))
		select {
		case m.events <- struct{}{}:
		default:
		}
	}

	return m.online
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// The endpoint's contract is 204 and nothing else. Captive portals
	// intercept the probe with a 3xx to their login page or serve the
	// page directly as a 200; neither counts as validated internet.
	return resp.StatusCode == http.StatusNoContent
}
