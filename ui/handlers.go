package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"geneexplorer/adapters/plotly"
	"geneexplorer/internal/analysis"
	"geneexplorer/internal/errors"
)

// handleIndex renders the main page with the volcano plot shell.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "index.html", map[string]interface{}{
		"Title": "Gene Explorer",
	})
}

// handleVolcanoData serves the volcano plot document for the whole table.
func (s *Server) handleVolcanoData(w http.ResponseWriter, r *http.Request) {
	table, err := s.expression.VolcanoTable(r.Context())
	if err != nil {
		log.Printf("[Server] volcano data failed: %v", err)
		writeError(w, err)
		return
	}

	figure := plotly.BuildVolcanoFigure(table)
	log.Printf("[Server] volcano plot built with %d data points", len(table))
	writeJSON(w, http.StatusOK, map[string]interface{}{"plot": figure})
}

// handleGene serves the composite gene document: differential-expression
// info, boxplot figure and data, group statistics, and best-effort papers.
func (s *Server) handleGene(w http.ResponseWriter, r *http.Request) {
	geneSymbol := chi.URLParam(r, "gene")

	record, err := s.expression.GeneRecord(r.Context(), geneSymbol)
	if err != nil {
		if !errors.IsNotFound(err) {
			log.Printf("[Server] gene lookup failed for %s: %v", geneSymbol, err)
		}
		writeError(w, err)
		return
	}

	figure := plotly.BuildBoxplotFigure(geneSymbol, record.Measurements)
	groupStats := analysis.CompareAgeGroups(record.Measurements)
	papers := s.papers.FetchWithBudget(r.Context(), geneSymbol)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gene_info":    record.Info,
		"boxplot_data": record.Measurements,
		"boxplot":      figure,
		"group_stats":  groupStats,
		"papers":       papers,
	})
}

// handlePapers serves the dedicated literature endpoint with the longer
// synchronous timeout.
func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	geneSymbol := chi.URLParam(r, "gene")
	papers := s.papers.Fetch(r.Context(), geneSymbol)
	writeJSON(w, http.StatusOK, map[string]interface{}{"papers": papers})
}

// handleTestGene is a diagnostic endpoint that walks the load path for one
// gene and reports where it stops.
func (s *Server) handleTestGene(w http.ResponseWriter, r *http.Request) {
	geneSymbol := chi.URLParam(r, "gene")

	table, err := s.expression.VolcanoTable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	found := false
	var info map[string]interface{}
	for _, row := range table {
		if row.GeneSymbol == geneSymbol {
			found = true
			info = map[string]interface{}{
				"logFC":      row.LogFoldChange,
				"adj_P_Val":  row.AdjustedPValue,
				"regulation": row.Regulation,
			}
			break
		}
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "error",
			"message": "gene " + geneSymbol + " not found in volcano data",
		})
		return
	}

	measurements, err := s.expression.GeneMeasurements(r.Context(), geneSymbol)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(measurements) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "error",
			"message": "no boxplot data available for gene " + geneSymbol,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "success",
		"gene":                geneSymbol,
		"volcano_data_found":  true,
		"boxplot_data_points": len(measurements),
		"gene_info":           info,
	})
}

// writeJSON marshals before committing the status line, so an encoding
// failure surfaces as a 500 instead of a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("[Server] response encoding failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"response encoding failed"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// writeError maps the error taxonomy to HTTP: the domain-level not-found is
// a 404, everything else (missing file, missing sheet, schema failure) a 500
// carrying the diagnostic text.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.IsNotFound(err) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]interface{}{"error": err.Error()})
}
