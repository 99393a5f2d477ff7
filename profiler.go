package voxlight

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// Profiler keeps the duration of the last run of each named scope, plus
// free-form counters.
type Profiler struct {
	mu         sync.Mutex
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartTimes[name] = time.Now()
	// Insertion order is display order
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	start, ok := p.StartTimes[name]
	if !ok {
		return 0
	}
	d := time.Since(start)
	p.Scopes[name] = d
	return d
}

func (p *Profiler) SetCount(name string, count int) {
	p.mu.Lock()
	p.Counts[name] = count
	p.mu.Unlock()
}

func (p *Profiler) AddCount(name string, delta int) {
	p.mu.Lock()
	p.Counts[name] += delta
	p.mu.Unlock()
}

func (p *Profiler) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Counts[name]
}

func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Keep Order, reset times
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
	clear(p.Counts)
}

func (p *Profiler) GetStatsString() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		dur := p.Scopes[name]
		ms := float64(dur.Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}

	return sb.String()
}
