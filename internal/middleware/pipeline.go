package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	domrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, o *models.HistoricalObservation) error
}

// IngestPipeline sits between the live grid feed and the storage backend.
// It validates, throttles repeated pre-settlement updates for the same hour,
// and buffers when downstream is unavailable.
type IngestPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.HistoricalObservation
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[int64]time.Time // per-hour last accepted time
	// metrics
	bufDepthGauge func(int)
}

type PipelineOption func(*IngestPipeline)

// WithMaxRPS sets the max accepted updates per second per hour bucket.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   4,   // the feed republishes settling hours; more than this is noise
		bufSize:  500, // default buffer
		bufCh:    make(chan *models.HistoricalObservation, 500),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.HistoricalObservation, p.bufSize)
	}
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	return p
}

// Start launches background flushing of buffered observations.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case o := <-p.bufCh:
				if o == nil {
					continue
				}
				if err := p.proc.Process(ctx, o); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- o:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards the observation downstream,
// buffering on errors.
func (p *IngestPipeline) Process(ctx context.Context, o *models.HistoricalObservation) error {
	start := time.Now()
	if err := validateObservation(o); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(o.Timestamp, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, o); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- o:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateObservation(o *models.HistoricalObservation) error {
	if o == nil {
		return fmt.Errorf("observation nil")
	}
	if o.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if o.AILMW < 0 {
		return fmt.Errorf("negative demand")
	}
	if o.GenerationWind < 0 || o.GenerationSolar < 0 || o.GenerationGas < 0 || o.GenerationOther < 0 {
		return fmt.Errorf("negative generation")
	}
	// Pool prices can legitimately settle at zero but never below the market
	// floor on ingest.
	if o.PoolPrice != nil && *o.PoolPrice < 0 {
		return fmt.Errorf("pool price below floor")
	}
	return nil
}

func (p *IngestPipeline) allow(ts time.Time, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	hour := ts.Truncate(time.Hour).Unix()
	last := p.lastSeen[hour]
	if last.IsZero() {
		p.lastSeen[hour] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[hour] = now
	return true
}
