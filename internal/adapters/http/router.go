package httpadapter

import (
	"net/http"

	"github.com/kirillkom/loan-workbench/internal/config"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
	"github.com/kirillkom/loan-workbench/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg       config.Config
	loans     ports.LoanService
	documents ports.DocumentService
	catalog   ports.RequirementCatalog
	snapshots ports.ChecklistSnapshotReader
	metrics   *metrics.HTTPServerMetrics
}

// NewRouter wires the HTTP surface. snapshots and httpMetrics may be nil; the
// snapshot route then answers 404 and nothing is recorded.
func NewRouter(
	cfg config.Config,
	loans ports.LoanService,
	documents ports.DocumentService,
	catalog ports.RequirementCatalog,
	snapshots ports.ChecklistSnapshotReader,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		loans:     loans,
		documents: documents,
		catalog:   catalog,
		snapshots: snapshots,
		metrics:   httpMetrics,
	}
}

type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

func (rt *Router) routes() []route {
	return []route{
		{http.MethodGet, "/healthz", rt.healthz},
		{http.MethodGet, "/metrics", rt.metricsHandler},
		{http.MethodGet, "/v1/openapi.json", rt.openAPI},

		{http.MethodGet, "/v1/lenders", rt.listLenders},
		{http.MethodGet, "/v1/lenders/{lender}/requirements", rt.lenderRequirements},
		{http.MethodPost, "/v1/dscr", rt.calculateDSCR},

		{http.MethodPost, "/v1/loans", rt.createLoan},
		{http.MethodGet, "/v1/loans/{id}", rt.getLoan},
		{http.MethodPatch, "/v1/loans/{id}", rt.updateLoan},
		{http.MethodGet, "/v1/loans/{id}/dscr", rt.loanDSCR},
		{http.MethodGet, "/v1/loans/{id}/checklist", rt.checklist},
		{http.MethodGet, "/v1/loans/{id}/checklist.xlsx", rt.checklistWorkbook},
		{http.MethodGet, "/v1/loans/{id}/checklist/snapshot", rt.checklistSnapshot},

		{http.MethodGet, "/v1/loans/{id}/documents", rt.listDocuments},
		{http.MethodPost, "/v1/loans/{id}/documents", rt.uploadDocument},
		{http.MethodPost, "/v1/loans/{id}/documents/reset", rt.resetDocuments},
		{http.MethodGet, "/v1/loans/{id}/custom-requirements", rt.listCustomRequirements},
		{http.MethodPost, "/v1/loans/{id}/custom-requirements", rt.addCustomRequirement},

		{http.MethodPost, "/v1/documents/{id}/assign", rt.assignDocument},
		{http.MethodPost, "/v1/documents/{id}/unassign", rt.unassignDocument},
		{http.MethodPost, "/v1/documents/{id}/approve", rt.approveDocument},
		{http.MethodPost, "/v1/documents/{id}/reject", rt.rejectDocument},
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, r := range rt.routes() {
		mux.HandleFunc(r.method+" "+r.path, r.handler)
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIBackpressureMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRateLimited)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return recoverMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if rt.metrics == nil {
		http.NotFound(w, r)
		return
	}
	rt.metrics.Handler().ServeHTTP(w, r)
}

func (rt *Router) recordRateLimited() {
	if rt.metrics != nil {
		rt.metrics.RecordRateLimited()
	}
}

func (rt *Router) recordDSCR(band string) {
	if rt.metrics != nil {
		rt.metrics.RecordDSCR(band)
	}
}

func (rt *Router) recordTransition(action string) {
	if rt.metrics != nil {
		rt.metrics.RecordDocumentTransition(action)
	}
}

func (rt *Router) observeProgress(percent float64) {
	if rt.metrics != nil {
		rt.metrics.ObserveChecklistProgress(percent)
	}
}
