package app

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"geneexplorer/adapters/excel"
	"geneexplorer/domain/expression"
	"geneexplorer/internal/errors"
	"geneexplorer/internal/metrics"
)

// ExpressionService owns the two memoized spreadsheet loaders and the gene
// record assembly. The derived primary table is loaded once per process; the
// per-gene measurements are held in a bounded LRU. Neither cache is ever
// invalidated, so a changed workbook is not observed until restart.
type ExpressionService struct {
	reader       *excel.WorkbookReader
	primarySheet string
	valuesSheet  string
	metrics      *metrics.Metrics

	mu      sync.RWMutex
	primary []expression.DifferentialExpressionRow

	geneCache *lru.Cache[string, []expression.SampleMeasurement]
	flight    singleflight.Group
}

// NewExpressionService builds the service around a workbook reader. The
// caller owns cache sizing; geneCacheSize bounds how many distinct genes'
// measurements stay memoized.
func NewExpressionService(reader *excel.WorkbookReader, primarySheet, valuesSheet string, geneCacheSize int, m *metrics.Metrics) (*ExpressionService, error) {
	cache, err := lru.New[string, []expression.SampleMeasurement](geneCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gene measurement cache")
	}
	return &ExpressionService{
		reader:       reader,
		primarySheet: primarySheet,
		valuesSheet:  valuesSheet,
		metrics:      m,
		geneCache:    cache,
	}, nil
}

// VolcanoTable returns the derived differential-expression table, loading
// and computing it on first use. Concurrent first calls share one parse.
// Failed loads are not memoized, so a later call can retry.
func (s *ExpressionService) VolcanoTable(ctx context.Context) ([]expression.DifferentialExpressionRow, error) {
	s.mu.RLock()
	cached := s.primary
	s.mu.RUnlock()
	if cached != nil {
		s.metrics.CacheHits.WithLabelValues("primary").Inc()
		return cached, nil
	}

	result, err, _ := s.flight.Do("primary", func() (interface{}, error) {
		s.mu.RLock()
		loaded := s.primary
		s.mu.RUnlock()
		if loaded != nil {
			return loaded, nil
		}

		s.metrics.CacheMisses.WithLabelValues("primary").Inc()
		table, err := s.reader.ReadExpressionSheet(s.primarySheet)
		if err != nil {
			return nil, err
		}
		derived := expression.Derive(excel.PrimaryRows(table))

		s.mu.Lock()
		s.primary = derived
		s.mu.Unlock()
		return derived, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]expression.DifferentialExpressionRow), nil
}

// GeneMeasurements returns the donor-column measurements for one gene from
// the values sheet, memoized per symbol. Concurrent misses for the same
// symbol parse the sheet once. An empty result is cached too; absence is a
// domain outcome, not a transient failure.
func (s *ExpressionService) GeneMeasurements(ctx context.Context, geneSymbol string) ([]expression.SampleMeasurement, error) {
	if cached, ok := s.geneCache.Get(geneSymbol); ok {
		s.metrics.CacheHits.WithLabelValues("measurements").Inc()
		return cached, nil
	}

	result, err, _ := s.flight.Do("gene:"+geneSymbol, func() (interface{}, error) {
		if cached, ok := s.geneCache.Get(geneSymbol); ok {
			return cached, nil
		}

		s.metrics.CacheMisses.WithLabelValues("measurements").Inc()
		table, err := s.reader.ReadSheet(s.valuesSheet)
		if err != nil {
			return nil, err
		}
		measurements := excel.MeasurementsFor(table, geneSymbol)
		s.geneCache.Add(geneSymbol, measurements)
		return measurements, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]expression.SampleMeasurement), nil
}

// GeneRecord assembles the composite record for a gene symbol. The match is
// exact and case-sensitive. Both sheets must contribute: a symbol missing
// from the primary table, or with zero surviving measurements, is NotFound
// rather than an empty record.
func (s *ExpressionService) GeneRecord(ctx context.Context, geneSymbol string) (*expression.GeneRecord, error) {
	table, err := s.VolcanoTable(ctx)
	if err != nil {
		return nil, err
	}

	var info *expression.DifferentialExpressionRow
	for i := range table {
		if table[i].GeneSymbol == geneSymbol {
			// Duplicates resolve to the first row in sheet order.
			info = &table[i]
			break
		}
	}
	if info == nil {
		return nil, errors.NotFound("gene " + geneSymbol)
	}

	measurements, err := s.GeneMeasurements(ctx, geneSymbol)
	if err != nil {
		return nil, err
	}
	if len(measurements) == 0 {
		return nil, errors.NotFound("gene " + geneSymbol)
	}

	return &expression.GeneRecord{
		Info:         *info,
		Measurements: measurements,
	}, nil
}
