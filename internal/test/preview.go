package test

import (
	"context"
	"os"
	"sync"

	"github.com/polkiloo/printshop/internal/domain/model"
)

// GeneratorStub returns canned conversion output and records sources.
type GeneratorStub struct {
	mu sync.Mutex

	// Data is returned by Generate. When nil the source content prefixed
	// with "preview:" is returned, which keeps output deterministic.
	Data      []byte
	PrintData []byte
	Err       error
	// Block, when set, holds every conversion until it is closed.
	Block   chan struct{}
	Sources []string
	// SourceExisted records whether each source file was readable at call time.
	SourceExisted []bool
}

func (g *GeneratorStub) Generate(ctx context.Context, source string) ([]byte, error) {
	return g.convert(source, g.Data, "preview:")
}

func (g *GeneratorStub) ConvertForPrint(ctx context.Context, source string) ([]byte, error) {
	return g.convert(source, g.PrintData, "print:")
}

func (g *GeneratorStub) convert(source string, canned []byte, prefix string) ([]byte, error) {
	content, readErr := os.ReadFile(source)
	if g.Block != nil {
		<-g.Block
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sources = append(g.Sources, source)
	g.SourceExisted = append(g.SourceExisted, readErr == nil)
	if g.Err != nil {
		return nil, g.Err
	}
	if canned != nil {
		return canned, nil
	}
	if readErr != nil {
		return nil, readErr
	}
	return append([]byte(prefix), content...), nil
}

// Calls returns the number of conversions requested.
func (g *GeneratorStub) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Sources)
}

// SchedulerStub records reconciliation jobs. When Run is set each job is
// handed to it synchronously.
type SchedulerStub struct {
	mu     sync.Mutex
	Jobs   []model.ReconcileJob
	Reject bool
	Run    func(model.ReconcileJob)
}

func (s *SchedulerStub) Schedule(job model.ReconcileJob) bool {
	s.mu.Lock()
	s.Jobs = append(s.Jobs, job)
	reject, run := s.Reject, s.Run
	s.mu.Unlock()
	if reject {
		return false
	}
	if run != nil {
		run(job)
	}
	return true
}

// Scheduled returns a copy of recorded jobs.
func (s *SchedulerStub) Scheduled() []model.ReconcileJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ReconcileJob(nil), s.Jobs...)
}

// PreviewCache is the cache surface spied on by CacheSpy.
type PreviewCache interface {
	Get(orderID int64, kind model.PreviewKind) (string, bool)
	Put(orderID int64, kind model.PreviewKind, data []byte) (string, error)
	PutFile(orderID int64, kind model.PreviewKind, src string) (string, error)
	Invalidate(orderID int64, kind model.PreviewKind) error
}

// CacheSpy counts calls made to the wrapped cache.
type CacheSpy struct {
	Inner PreviewCache

	mu            sync.Mutex
	gets          int
	puts          int
	invalidations int
}

func (c *CacheSpy) Get(orderID int64, kind model.PreviewKind) (string, bool) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.Inner.Get(orderID, kind)
}

func (c *CacheSpy) Put(orderID int64, kind model.PreviewKind, data []byte) (string, error) {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return c.Inner.Put(orderID, kind, data)
}

func (c *CacheSpy) PutFile(orderID int64, kind model.PreviewKind, src string) (string, error) {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return c.Inner.PutFile(orderID, kind, src)
}

func (c *CacheSpy) Invalidate(orderID int64, kind model.PreviewKind) error {
	c.mu.Lock()
	c.invalidations++
	c.mu.Unlock()
	return c.Inner.Invalidate(orderID, kind)
}

// Invalidations returns the number of Invalidate calls observed.
func (c *CacheSpy) Invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

// Calls returns the number of gets and puts observed.
func (c *CacheSpy) Calls() (gets, puts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets, c.puts
}
