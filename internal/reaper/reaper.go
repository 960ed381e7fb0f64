package reaper

import (
	"log"
	"sync"
	"time"
)

// Registry is the slice of the room registry the reaper needs.
type Registry interface {
	EvictIdle(cutoff time.Time) int
}

type Config struct {
	Interval  time.Duration
	IdleAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:  2 * time.Minute,
		IdleAfter: 10 * time.Minute,
	}
}

// Service periodically evicts rooms that have no connected members and
// have been idle past the threshold. Without it, rooms accumulate for
// the process lifetime.
type Service struct {
	registry Registry
	config   Config
	stop     chan struct{}
	wg       sync.WaitGroup
}

func New(registry Registry, config Config) *Service {
	return &Service{
		registry: registry,
		config:   config,
		stop:     make(chan struct{}),
	}
}

func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
	log.Printf("Reaper started (interval: %v, idle threshold: %v)",
		s.config.Interval, s.config.IdleAfter)
}

func (s *Service) Stop() {
	close(s.stop)
	s.wg.Wait()
	log.Println("Reaper stopped")
}

func (s *Service) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	cutoff := time.Now().Add(-s.config.IdleAfter)
	if evicted := s.registry.EvictIdle(cutoff); evicted > 0 {
		log.Printf("Reaper evicted %d idle rooms", evicted)
	}
}
