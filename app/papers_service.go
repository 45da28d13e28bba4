package app

import (
	"context"
	"log"
	"time"

	"geneexplorer/adapters/mygene"
	"geneexplorer/internal/metrics"
)

// PapersGateway is the literature lookup the service delegates to.
type PapersGateway interface {
	PapersForGene(ctx context.Context, symbol string) ([]mygene.Publication, error)
}

// PapersService wraps the literature gateway with the latency-hiding policy
// the gene page uses: fetch on a separate goroutine, wait a fixed budget,
// and serve without papers when the budget runs out.
type PapersService struct {
	gateway      PapersGateway
	waitBudget   time.Duration
	fetchTimeout time.Duration
	metrics      *metrics.Metrics
}

// NewPapersService creates the service. waitBudget is how long a request
// will wait for papers; fetchTimeout bounds the background work itself.
func NewPapersService(gateway PapersGateway, waitBudget, fetchTimeout time.Duration, m *metrics.Metrics) *PapersService {
	return &PapersService{
		gateway:      gateway,
		waitBudget:   waitBudget,
		fetchTimeout: fetchTimeout,
		metrics:      m,
	}
}

// Fetch performs a synchronous lookup bounded by the fetch timeout, for the
// dedicated papers endpoint where the caller is willing to wait.
func (s *PapersService) Fetch(ctx context.Context, symbol string) []mygene.Publication {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	papers, err := s.gateway.PapersForGene(fetchCtx, symbol)
	if err != nil {
		log.Printf("[PapersService] fetch failed for %s: %v", symbol, err)
		s.metrics.PaperFetches.WithLabelValues("error").Inc()
		return []mygene.Publication{}
	}
	s.countOutcome(papers)
	return papers
}

// FetchWithBudget starts the lookup in the background and waits at most the
// configured budget. On expiry the background task's context is cancelled
// and an empty list is returned. There is no retry.
func (s *PapersService) FetchWithBudget(ctx context.Context, symbol string) []mygene.Publication {
	// Detached from the request context so the cancellation decision stays
	// with the budget, not with the HTTP connection.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)

	results := make(chan []mygene.Publication, 1)
	go func() {
		papers, err := s.gateway.PapersForGene(fetchCtx, symbol)
		if err != nil {
			log.Printf("[PapersService] background fetch failed for %s: %v", symbol, err)
			results <- nil
			return
		}
		results <- papers
	}()

	select {
	case papers := <-results:
		cancel()
		if papers == nil {
			s.metrics.PaperFetches.WithLabelValues("error").Inc()
			return []mygene.Publication{}
		}
		s.countOutcome(papers)
		return papers
	case <-time.After(s.waitBudget):
		cancel()
		log.Printf("[PapersService] paper fetch for %s exceeded %v budget, returning without papers", symbol, s.waitBudget)
		s.metrics.PaperFetches.WithLabelValues("timeout").Inc()
		return []mygene.Publication{}
	}
}

func (s *PapersService) countOutcome(papers []mygene.Publication) {
	if len(papers) == 0 {
		s.metrics.PaperFetches.WithLabelValues("empty").Inc()
		return
	}
	s.metrics.PaperFetches.WithLabelValues("ok").Inc()
}
