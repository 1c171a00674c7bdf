package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/coverly/quotes/internal/aggregation"
	"github.com/coverly/quotes/internal/logger"
	"github.com/coverly/quotes/internal/quote"
)

type handlers struct {
	quotes     *quote.Service
	aggregates *aggregation.Service
	ping       func(context.Context) error
	log        *logger.Logger
}

// price decodes a JSON number or string and names the field when it fails.
type price struct {
	decimal.Decimal
}

func (p *price) UnmarshalJSON(b []byte) error {
	if err := p.Decimal.UnmarshalJSON(b); err != nil {
		return quote.WithField("price", err)
	}
	return nil
}

type createQuoteRequest struct {
	ProviderID   *int64  `json:"providerId"`
	CoverageType *string `json:"coverageType"`
	Price        *price  `json:"price"`
}

type updateQuoteRequest struct {
	QuoteID      *int64  `json:"quoteId"`
	CoverageType *string `json:"coverageType"`
	Price        *price  `json:"price"`
}

type listQuotesRequest struct {
	CoverageTypes []string `json:"coverageTypes"`
}

type aggregationRequest struct {
	AggregationType *string `json:"aggregationType"`
	CoverageType    *string `json:"coverageType"`
}

func parseCoverageType(s string) (quote.CoverageType, error) {
	c, err := quote.ParseCoverageType(s)
	if err != nil {
		return "", quote.WithField("coverageType", err)
	}
	return c, nil
}

func quoteIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, quote.WithField("quoteId", fmt.Errorf("%v: %w", err, quote.ErrMalformedRequest))
	}
	return id, nil
}

// handleCreateQuote creates a quote for a live provider
func (h *handlers) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	switch {
	case req.ProviderID == nil:
		writeError(w, r, h.log, missing("providerId"))
		return
	case req.CoverageType == nil:
		writeError(w, r, h.log, missing("coverageType"))
		return
	case req.Price == nil:
		writeError(w, r, h.log, missing("price"))
		return
	}

	coverageType, err := parseCoverageType(*req.CoverageType)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if _, err := h.quotes.Create(r.Context(), quote.CreateRequest{
		ProviderID:   *req.ProviderID,
		CoverageType: coverageType,
		Price:        req.Price.Decimal,
	}); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	quoteMutations.WithLabelValues("create").Inc()
	writeOK(w, nil)
}

// handleGetQuote fetches a single live quote
func (h *handlers) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := quoteIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	view, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeOK(w, view)
}

// handleUpdateQuote changes the coverage type and/or price of a quote
func (h *handlers) handleUpdateQuote(w http.ResponseWriter, r *http.Request) {
	var req updateQuoteRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.QuoteID == nil {
		writeError(w, r, h.log, missing("quoteId"))
		return
	}

	update := quote.UpdateRequest{QuoteID: *req.QuoteID}
	if req.Price != nil {
		update.Price = &req.Price.Decimal
	}
	if req.CoverageType != nil {
		coverageType, err := parseCoverageType(*req.CoverageType)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		update.CoverageType = &coverageType
	}

	if err := h.quotes.Update(r.Context(), update); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	quoteMutations.WithLabelValues("update").Inc()
	writeOK(w, nil)
}

// handleDeleteQuote soft-deletes a quote
func (h *handlers) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, err := quoteIDParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.quotes.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	quoteMutations.WithLabelValues("delete").Inc()
	writeOK(w, nil)
}

// handleListQuotes lists live quotes, optionally filtered by coverage type
func (h *handlers) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	var req listQuotesRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	coverageTypes := make([]quote.CoverageType, 0, len(req.CoverageTypes))
	for _, s := range req.CoverageTypes {
		c, err := quote.ParseCoverageType(s)
		if err != nil {
			writeError(w, r, h.log, quote.WithField("coverageTypes", err))
			return
		}
		coverageTypes = append(coverageTypes, c)
	}

	views, err := h.quotes.List(r.Context(), coverageTypes)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeOK(w, views)
}

// handleAggregation ranks the quotes of a coverage type by policy
func (h *handlers) handleAggregation(w http.ResponseWriter, r *http.Request) {
	var req aggregationRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	switch {
	case req.AggregationType == nil:
		writeError(w, r, h.log, missing("aggregationType"))
		return
	case req.CoverageType == nil:
		writeError(w, r, h.log, missing("coverageType"))
		return
	}

	policy, err := aggregation.ParsePolicy(*req.AggregationType)
	if err != nil {
		writeError(w, r, h.log, quote.WithField("aggregationType", err))
		return
	}
	coverageType, err := parseCoverageType(*req.CoverageType)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	result, err := h.aggregates.Ranked(r.Context(), policy, coverageType)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	aggregationRequests.WithLabelValues(string(policy)).Inc()
	writeOK(w, result)
}

func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		h.log.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
