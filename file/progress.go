package file

import (
	"sync"
	"time"
)

type etaSample struct {
	elapsed time.Duration
	bytes   uint64
}

// progressTracker throttles progress notifications and keeps a sliding
// window of throughput samples for the ETA estimate. Only the operation's
// worker mutates it; the lock makes the published figures safe to read
// from other goroutines.
type progressTracker struct {
	progressInterval time.Duration
	etaInterval      time.Duration

	mu                sync.Mutex
	size              uint64
	bytesDone         uint64
	lastProgressAt    time.Time
	lastEtaAt         time.Time
	lastEtaBytes      uint64
	samples           []etaSample
	bytesPerSecond    float64
	remainingEstimate time.Duration
}

func newProgressTracker(size uint64, timings Timings) *progressTracker {
	return &progressTracker{
		size:             size,
		progressInterval: timings.ProgressInterval,
		etaInterval:      timings.EtaInterval,
		samples:          make([]etaSample, 0, etaWindow),
	}
}

// reset starts a fresh measurement at now.
func (p *progressTracker) reset(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bytesDone = 0
	p.lastProgressAt = now
	p.lastEtaAt = now
	p.lastEtaBytes = 0
	p.samples = p.samples[:0]
	p.bytesPerSecond = 0
	p.remainingEstimate = 0
}

// update records the new cumulative byte count. It returns the completed
// fraction and whether a progress notification is due.
func (p *progressTracker) update(bytesDone uint64, now time.Time) (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bytesDone = bytesDone
	if now.Sub(p.lastEtaAt) >= p.etaInterval {
		p.sampleLocked(now)
	}
	if now.Sub(p.lastProgressAt) < p.progressInterval {
		return 0, false
	}
	p.lastProgressAt = now
	return p.fractionLocked(), true
}

func (p *progressTracker) sampleLocked(now time.Time) {
	p.samples = append(p.samples, etaSample{
		elapsed: now.Sub(p.lastEtaAt),
		bytes:   p.bytesDone - p.lastEtaBytes,
	})
	if len(p.samples) > etaWindow {
		p.samples = append(p.samples[:0], p.samples[len(p.samples)-etaWindow:]...)
	}
	p.lastEtaAt = now
	p.lastEtaBytes = p.bytesDone

	var elapsed time.Duration
	var bytes uint64
	for _, s := range p.samples {
		elapsed += s.elapsed
		bytes += s.bytes
	}
	if elapsed > 0 {
		p.bytesPerSecond = float64(bytes) / elapsed.Seconds()
	}
	if bytes == 0 {
		return
	}
	remaining := p.size - min(p.bytesDone, p.size)
	p.remainingEstimate = time.Duration(float64(elapsed) * float64(remaining) / float64(bytes))
}

func (p *progressTracker) fractionLocked() float64 {
	if p.size == 0 {
		return 1
	}
	return float64(p.bytesDone) / float64(p.size)
}

func (p *progressTracker) setSize(size uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = size
}

func (p *progressTracker) done() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bytesDone
}

func (p *progressTracker) total() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

func (p *progressTracker) fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fractionLocked()
}

func (p *progressTracker) speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bytesPerSecond
}

func (p *progressTracker) eta() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remainingEstimate
}
