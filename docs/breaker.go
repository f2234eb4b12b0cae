package docs

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// BreakerFetcher wraps a Fetcher with per-host circuit breakers. One slow or
// failing documentation host stops being hammered without affecting fetches
// against other hosts.
type BreakerFetcher struct {
	fetcher  *Fetcher
	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

// NewBreakerFetcher wraps f with circuit breaking.
func NewBreakerFetcher(f *Fetcher) *BreakerFetcher {
	return &BreakerFetcher{
		fetcher:  f,
		breakers: make(map[string]*circuit.Breaker),
	}
}

func (bf *BreakerFetcher) getBreaker(host string) *circuit.Breaker {
	bf.mu.RLock()
	breaker, ok := bf.breakers[host]
	bf.mu.RUnlock()
	if ok {
		return breaker
	}

	bf.mu.Lock()
	defer bf.mu.Unlock()
	if breaker, ok := bf.breakers[host]; ok {
		return breaker
	}

	// Trips after 5 consecutive failures, retries with exponential backoff.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 30 * time.Second
	bo.MaxInterval = 5 * time.Minute
	bo.Multiplier = 2.0
	bo.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    bo,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	bf.breakers[host] = breaker
	return breaker
}

// Fetch retrieves the document at fetchURL unless the host's breaker is open.
func (bf *BreakerFetcher) Fetch(ctx context.Context, fetchURL string) (*Document, error) {
	host := extractHost(fetchURL)
	breaker := bf.getBreaker(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	var doc *Document
	err := breaker.Call(func() error {
		var fetchErr error
		doc, fetchErr = bf.fetcher.Fetch(ctx, fetchURL)
		return fetchErr
	}, 0)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// BreakerStates reports each known host's breaker state, for health checks.
func (bf *BreakerFetcher) BreakerStates() map[string]string {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	states := make(map[string]string, len(bf.breakers))
	for host, breaker := range bf.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
