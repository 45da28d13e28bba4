package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geneexplorer/adapters/mygene"
	"geneexplorer/internal/metrics"
)

// stubGateway serves a fixed result, optionally blocking until its context
// is cancelled so budget expiry can be exercised.
type stubGateway struct {
	papers    []mygene.Publication
	err       error
	block     bool
	cancelled chan struct{}
}

func newStubGateway() *stubGateway {
	return &stubGateway{cancelled: make(chan struct{})}
}

func (g *stubGateway) PapersForGene(ctx context.Context, symbol string) ([]mygene.Publication, error) {
	if g.block {
		<-ctx.Done()
		close(g.cancelled)
		return nil, ctx.Err()
	}
	return g.papers, g.err
}

func TestFetchReturnsPapers(t *testing.T) {
	gateway := newStubGateway()
	gateway.papers = []mygene.Publication{{PMID: "111", Title: "Study 111"}}
	m := metrics.New()
	svc := NewPapersService(gateway, 50*time.Millisecond, time.Second, m)

	papers := svc.Fetch(context.Background(), "GENE1")
	require.Len(t, papers, 1)
	assert.Equal(t, "111", papers[0].PMID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaperFetches.WithLabelValues("ok")))
}

func TestFetchWithBudgetReturnsWithinBudget(t *testing.T) {
	gateway := newStubGateway()
	gateway.papers = []mygene.Publication{{PMID: "222"}}
	svc := NewPapersService(gateway, time.Second, time.Second, metrics.New())

	papers := svc.FetchWithBudget(context.Background(), "GENE1")
	require.Len(t, papers, 1)
	assert.Equal(t, "222", papers[0].PMID)
}

func TestFetchWithBudgetExpiryCancelsFetch(t *testing.T) {
	gateway := newStubGateway()
	gateway.block = true
	m := metrics.New()
	svc := NewPapersService(gateway, 30*time.Millisecond, time.Minute, m)

	start := time.Now()
	papers := svc.FetchWithBudget(context.Background(), "GENE1")
	elapsed := time.Since(start)

	assert.Empty(t, papers)
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaperFetches.WithLabelValues("timeout")))

	// The background task's context must be cancelled, not abandoned.
	select {
	case <-gateway.cancelled:
	case <-time.After(time.Second):
		t.Fatal("background fetch context was never cancelled")
	}
}

func TestFetchWithBudgetOutlivesRequestContext(t *testing.T) {
	gateway := newStubGateway()
	gateway.papers = []mygene.Publication{{PMID: "333"}}
	svc := NewPapersService(gateway, time.Second, time.Second, metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A dead request context does not doom the fetch; the budget governs.
	papers := svc.FetchWithBudget(ctx, "GENE1")
	require.Len(t, papers, 1)
}

func TestFetchGatewayError(t *testing.T) {
	gateway := newStubGateway()
	gateway.err = context.DeadlineExceeded
	m := metrics.New()
	svc := NewPapersService(gateway, 50*time.Millisecond, time.Second, m)

	papers := svc.Fetch(context.Background(), "GENE1")
	assert.Empty(t, papers)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaperFetches.WithLabelValues("error")))
}
