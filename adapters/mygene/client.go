// Package mygene queries the MyGene.info gene-annotation API and the NCBI
// E-utilities to collect literature for a gene symbol. Every lookup is
// best-effort: failures degrade to empty lists or placeholder records and
// are never fatal to the caller.
package mygene

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"geneexplorer/internal/errors"
)

// Publication is one literature record for a gene.
type Publication struct {
	PMID      string `json:"pmid"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Date      string `json:"date"`
	Citations int    `json:"citations"`
}

// detailsCacheSize bounds the memoized per-publication lookups.
const detailsCacheSize = 100

// detailsReserve is held back from the request deadline so the response can
// still be assembled after detail fetching stops.
const detailsReserve = 2 * time.Second

// Client talks to MyGene.info and the NCBI E-utilities.
type Client struct {
	httpClient    *http.Client
	myGeneBaseURL string
	eutilsBaseURL string
	maxPapers     int
	detailsCache  *lru.Cache[string, Publication]
}

// NewClient creates a gateway client. maxPapers caps how many publications
// a single gene lookup will enrich.
func NewClient(myGeneBaseURL, eutilsBaseURL string, maxPapers int) *Client {
	cache, _ := lru.New[string, Publication](detailsCacheSize)
	return &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		myGeneBaseURL: myGeneBaseURL,
		eutilsBaseURL: eutilsBaseURL,
		maxPapers:     maxPapers,
		detailsCache:  cache,
	}
}

// PapersForGene resolves a gene symbol to its MyGene ID and returns enriched
// publication records. An unknown symbol or upstream failure yields an empty
// list, not an error; the only error surfaced is context cancellation.
func (c *Client) PapersForGene(ctx context.Context, symbol string) ([]Publication, error) {
	geneID, err := c.searchGene(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[MyGene] gene search failed for %s: %v", symbol, err)
		return []Publication{}, nil
	}
	if geneID == "" {
		log.Printf("[MyGene] no gene ID found for symbol %s", symbol)
		return []Publication{}, nil
	}

	pmids, err := c.genePMIDs(ctx, geneID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[MyGene] publication listing failed for gene %s (%s): %v", symbol, geneID, err)
		return []Publication{}, nil
	}

	if len(pmids) > c.maxPapers {
		pmids = pmids[:c.maxPapers]
	}

	publications := make([]Publication, 0, len(pmids))
	for _, pmid := range pmids {
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < detailsReserve {
			log.Printf("[MyGene] deadline approaching, stopping at %d of %d papers for %s",
				len(publications), len(pmids), symbol)
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		publications = append(publications, c.PublicationDetails(ctx, pmid))
	}
	return publications, nil
}

// searchGene returns the MyGene ID of the first hit for a symbol, or empty
// when the symbol is unknown.
func (c *Client) searchGene(ctx context.Context, symbol string) (string, error) {
	endpoint := fmt.Sprintf("%s/query?q=%s&species=human", c.myGeneBaseURL,
		url.QueryEscape("symbol:"+symbol))

	var payload struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return "", err
	}
	if len(payload.Hits) == 0 {
		return "", nil
	}
	return payload.Hits[0].ID, nil
}

// genePMIDs collects the unique PMIDs attached to a gene, preserving the
// order they appear in the annotation document.
func (c *Client) genePMIDs(ctx context.Context, geneID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/gene/%s", c.myGeneBaseURL, url.PathEscape(geneID))

	var payload struct {
		Generif []struct {
			Pubmed any `json:"pubmed"`
		} `json:"generif"`
		Reporter struct {
			Publications []any `json:"publications"`
		} `json:"reporter"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var pmids []string
	add := func(v any) {
		for _, pmid := range pmidStrings(v) {
			if pmid != "" && !seen[pmid] {
				seen[pmid] = true
				pmids = append(pmids, pmid)
			}
		}
	}
	for _, rif := range payload.Generif {
		add(rif.Pubmed)
	}
	for _, pub := range payload.Reporter.Publications {
		add(pub)
	}
	return pmids, nil
}

// PublicationDetails fetches title, date and citation count for a PMID from
// the E-utilities. It never fails: any problem produces a placeholder record
// so the publication still appears in the list. Results are memoized.
func (c *Client) PublicationDetails(ctx context.Context, pmid string) Publication {
	if cached, ok := c.detailsCache.Get(pmid); ok {
		return cached
	}

	pub := Publication{
		PMID:  pmid,
		Title: fmt.Sprintf("Publication %s", pmid),
		URL:   fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s", pmid),
		Date:  "Unknown",
	}

	endpoint := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&id=%s&retmode=json",
		c.eutilsBaseURL, url.QueryEscape(pmid))
	var summary struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := c.getJSON(ctx, endpoint, &summary); err != nil {
		log.Printf("[MyGene] esummary failed for PMID %s: %v", pmid, err)
		pub.Title = fmt.Sprintf("Publication %s (details unavailable)", pmid)
		c.detailsCache.Add(pmid, pub)
		return pub
	}

	if raw, ok := summary.Result[pmid]; ok {
		var detail struct {
			Title   string `json:"title"`
			PubDate string `json:"pubdate"`
		}
		if err := json.Unmarshal(raw, &detail); err == nil {
			if detail.Title != "" {
				pub.Title = detail.Title
			}
			if detail.PubDate != "" {
				pub.Date = detail.PubDate
			}
		}
	}

	pub.Citations = c.citationCount(ctx, pmid)

	c.detailsCache.Add(pmid, pub)
	return pub
}

// citationCount asks elink how many PubMed articles cite the given one.
// Failures simply report zero citations.
func (c *Client) citationCount(ctx context.Context, pmid string) int {
	endpoint := fmt.Sprintf("%s/elink.fcgi?dbfrom=pubmed&id=%s&linkname=pubmed_pubmed_citedin&retmode=json",
		c.eutilsBaseURL, url.QueryEscape(pmid))

	var payload struct {
		LinkSets []struct {
			LinkSetDBs []struct {
				Links []any `json:"links"`
			} `json:"linksetdbs"`
		} `json:"linksets"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		log.Printf("[MyGene] elink failed for PMID %s: %v", pmid, err)
		return 0
	}
	if len(payload.LinkSets) == 0 || len(payload.LinkSets[0].LinkSetDBs) == 0 {
		return 0
	}
	return len(payload.LinkSets[0].LinkSetDBs[0].Links)
}

// getJSON performs a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.ExternalServiceError("gene annotation", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.ExternalServiceError("gene annotation",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ExternalServiceError("gene annotation", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.ExternalServiceError("gene annotation", err)
	}
	return nil
}

// pmidStrings flattens a pubmed field that may be a number, a string, or a
// list of either into PMID strings.
func pmidStrings(v any) []string {
	switch t := v.(type) {
	case float64:
		return []string{fmt.Sprintf("%.0f", t)}
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, pmidStrings(item)...)
		}
		return out
	}
	return nil
}
