package mygene

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnnotationServer mimics the MyGene.info and E-utilities endpoints the
// client talks to.
type fakeAnnotationServer struct {
	*httptest.Server
	esummaryCalls atomic.Int64
	failESummary  bool
}

func newFakeAnnotationServer(t *testing.T) *fakeAnnotationServer {
	t.Helper()
	fake := &fakeAnnotationServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "symbol:UNKNOWN" {
			fmt.Fprint(w, `{"hits": []}`)
			return
		}
		fmt.Fprint(w, `{"hits": [{"_id": "1017", "symbol": "CDK2"}]}`)
	})
	mux.HandleFunc("/gene/1017", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"generif": [{"pubmed": 111}, {"pubmed": 222}, {"pubmed": 111}],
			"reporter": {"publications": [222, 333, 444]}
		}`)
	})
	mux.HandleFunc("/esummary.fcgi", func(w http.ResponseWriter, r *http.Request) {
		fake.esummaryCalls.Add(1)
		if fake.failESummary {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		pmid := r.URL.Query().Get("id")
		fmt.Fprintf(w, `{"result": {"%s": {"title": "Study %s", "pubdate": "2020 Jan"}}}`, pmid, pmid)
	})
	mux.HandleFunc("/elink.fcgi", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"linksets": [{"linksetdbs": [{"links": [1, 2, 3]}]}]}`)
	})

	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Close)
	return fake
}

func newTestClient(fake *fakeAnnotationServer, maxPapers int) *Client {
	return NewClient(fake.URL, fake.URL, maxPapers)
}

func TestPapersForGene(t *testing.T) {
	fake := newFakeAnnotationServer(t)
	client := newTestClient(fake, 10)

	papers, err := client.PapersForGene(context.Background(), "CDK2")
	require.NoError(t, err)

	// PMIDs are de-duplicated, preserving first-seen order.
	require.Len(t, papers, 4)
	assert.Equal(t, "111", papers[0].PMID)
	assert.Equal(t, "222", papers[1].PMID)
	assert.Equal(t, "333", papers[2].PMID)
	assert.Equal(t, "Study 111", papers[0].Title)
	assert.Equal(t, "2020 Jan", papers[0].Date)
	assert.Equal(t, 3, papers[0].Citations)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/111", papers[0].URL)
}

func TestPapersForGeneCapsAtMaxPapers(t *testing.T) {
	fake := newFakeAnnotationServer(t)
	client := newTestClient(fake, 2)

	papers, err := client.PapersForGene(context.Background(), "CDK2")
	require.NoError(t, err)
	assert.Len(t, papers, 2)
}

func TestPapersForGeneUnknownSymbol(t *testing.T) {
	fake := newFakeAnnotationServer(t)
	client := newTestClient(fake, 10)

	papers, err := client.PapersForGene(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestPublicationDetailsPlaceholderOnFailure(t *testing.T) {
	fake := newFakeAnnotationServer(t)
	fake.failESummary = true
	client := newTestClient(fake, 10)

	pub := client.PublicationDetails(context.Background(), "999")
	assert.Equal(t, "999", pub.PMID)
	assert.Equal(t, "Publication 999 (details unavailable)", pub.Title)
	assert.Equal(t, "Unknown", pub.Date)
	assert.Equal(t, 0, pub.Citations)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/999", pub.URL)
}

func TestPublicationDetailsMemoized(t *testing.T) {
	fake := newFakeAnnotationServer(t)
	client := newTestClient(fake, 10)

	first := client.PublicationDetails(context.Background(), "111")
	second := client.PublicationDetails(context.Background(), "111")

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), fake.esummaryCalls.Load())
}

func TestPapersForGeneHonorsCancellation(t *testing.T) {
	fake := newFakeAnnotationServer(t)
	client := newTestClient(fake, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.PapersForGene(ctx, "CDK2")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPapersForGeneStopsNearDeadline(t *testing.T) {
	fake := newFakeAnnotationServer(t)
	client := newTestClient(fake, 10)

	// Deadline closer than the reserve: the listing succeeds but no detail
	// fetching happens.
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	papers, err := client.PapersForGene(ctx, "CDK2")
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Equal(t, int64(0), fake.esummaryCalls.Load())
}
