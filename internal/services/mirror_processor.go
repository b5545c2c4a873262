package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// FullMirror copies the whole ledger to a mirror target.
type FullMirror interface {
	MirrorAll(ctx context.Context) error
}

// MirrorProcessorConfig holds configuration for the mirror processor
type MirrorProcessorConfig struct {
	// Interval between full mirrors (default: 5m)
	Interval time.Duration

	// Timeout bounds a single full mirror (default: 1m)
	Timeout time.Duration
}

// DefaultMirrorProcessorConfig returns sensible defaults
func DefaultMirrorProcessorConfig() MirrorProcessorConfig {
	return MirrorProcessorConfig{
		Interval: 5 * time.Minute,
		Timeout:  time.Minute,
	}
}

// MirrorProcessor runs a full mirror at startup and then on every tick,
// catching up on changes whose events were lost.
type MirrorProcessor struct {
	target FullMirror
	config MirrorProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorProcessor(target FullMirror, config MirrorProcessorConfig) *MirrorProcessor {
	return &MirrorProcessor{target: target, config: config}
}

// Start begins the mirror loop. Returns an error if already running.
func (p *MirrorProcessor) Start(ctx context.Context) error {
	if p.config.Interval <= 0 {
		return fmt.Errorf("mirror interval must be positive, got %v", p.config.Interval)
	}
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("mirror processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror processor started", "interval", p.config.Interval)
	return nil
}

// Stop signals the loop and waits for the in-flight mirror to finish.
func (p *MirrorProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Mirror processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *MirrorProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *MirrorProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.mirrorOnce(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mirrorOnce(ctx)
		}
	}
}

func (p *MirrorProcessor) mirrorOnce(ctx context.Context) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := p.target.MirrorAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic mirror failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "Periodic mirror completed", "duration", time.Since(start))
}
