// Package httpapi serves the dashboard pages, the parent portal and exports
// as JSON over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"immunizetrack/docs/schema/openapi"
	"immunizetrack/internal/adapters/exports"
	"immunizetrack/internal/core"
	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

const apiPrefix = "/api/v1/"

// Pages is the read surface of the record service.
type Pages interface {
	List(ctx context.Context, kind domain.EntityType, q string, fields ...string) (core.Listing, error)
	Summary(ctx context.Context, kind domain.EntityType) (core.Summary, error)
	Find(ctx context.Context, kind domain.EntityType, id string) (core.Row, error)
	Dashboard(ctx context.Context) core.Overview
	Children(ctx context.Context, parentID string) ([]domain.Child, error)
	SelectChild(id string) records.Selection
	Portal(ctx context.Context, sel records.Selection, q string) core.PortalView
}

// Exports schedules and reports export jobs.
type Exports interface {
	Enqueue(ctx context.Context, req exports.Request) (exports.Record, error)
	Get(id string) (exports.Record, bool)
	List() []exports.Record
	Download(ctx context.Context, id string, format exports.Format) (exports.Artifact, []byte, error)
}

var (
	_ Pages   = (*core.Service)(nil)
	_ Exports = (*exports.Worker)(nil)
)

// Handler routes API requests.
type Handler struct {
	Pages   Pages
	Exports Exports
	// Metrics, when set, is served on /metrics.
	Metrics prometheus.Gatherer
	Logger  core.Logger
}

// NewHandler constructs a handler over pages.
func NewHandler(pages Pages) *Handler {
	return &Handler{Pages: pages}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Pages == nil {
		writeError(w, http.StatusInternalServerError, "record service not configured")
		return
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/healthz":
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	case path == "/metrics":
		if h.Metrics == nil {
			http.NotFound(w, r)
			return
		}
		promhttp.HandlerFor(h.Metrics, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	case !strings.HasPrefix(path+"/", apiPrefix):
		http.NotFound(w, r)
	default:
		rest := strings.TrimSuffix(strings.TrimPrefix(path+"/", apiPrefix), "/")
		h.routeAPI(w, r, strings.Split(rest, "/"))
	}
}

func (h *Handler) routeAPI(w http.ResponseWriter, r *http.Request, segments []string) {
	switch segments[0] {
	case "", "kinds":
		if !allow(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"kinds": domain.EntityTypes()})
	case "openapi.yaml":
		if !allow(w, r, http.MethodGet) {
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapi.Spec())
	case "dashboard":
		if !allow(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"overview": h.Pages.Dashboard(r.Context())})
	case "summary":
		h.handleSummary(w, r, segments[1:])
	case "portal":
		h.handlePortal(w, r, segments[1:])
	case "exports":
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExports(w, r, segments[1:])
	default:
		h.handlePage(w, r, segments)
	}
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request, segments []string) {
	kind, ok := domain.ParseEntityType(segments[0])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown record kind")
		return
	}
	if !allow(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	switch {
	case len(segments) == 1:
		listing, err := h.Pages.List(ctx, kind, r.URL.Query().Get("q"), fieldsParam(r)...)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listing)
	case len(segments) == 2:
		row, err := h.Pages.Find(ctx, kind, segments[1])
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, row)
	default:
		writeError(w, http.StatusNotFound, "endpoint not found")
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) != 1 {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	kind, ok := domain.ParseEntityType(segments[0])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown record kind")
		return
	}
	if !allow(w, r, http.MethodGet) {
		return
	}
	summary, err := h.Pages.Summary(r.Context(), kind)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handlePortal(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) == 0 || segments[0] != "children" {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	if !allow(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	switch len(segments) {
	case 1:
		children, err := h.Pages.Children(ctx, r.URL.Query().Get("parent"))
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"children": children})
	case 2, 3:
		if len(segments) == 3 && segments[2] != "vaccinations" && segments[2] != "upcoming" {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		sel := h.Pages.SelectChild(segments[1])
		if sel.None() {
			h.fail(w, domain.ErrNotFound{Entity: domain.EntityChild, ID: segments[1]})
			return
		}
		view := h.Pages.Portal(ctx, sel, r.URL.Query().Get("q"))
		if len(segments) == 3 && segments[2] == "upcoming" {
			writeJSON(w, http.StatusOK, map[string]any{
				"child":    view.Child,
				"upcoming": view.Upcoming,
			})
			return
		}
		if len(segments) == 3 {
			writeJSON(w, http.StatusOK, map[string]any{
				"child":        view.Child,
				"query":        view.Query,
				"vaccinations": view.Vaccinations,
				"summary":      view.Summary,
			})
			return
		}
		writeJSON(w, http.StatusOK, view)
	default:
		writeError(w, http.StatusNotFound, "endpoint not found")
	}
}

type exportRequest struct {
	Kind        string   `json:"kind"`
	Query       string   `json:"query"`
	Fields      []string `json:"fields"`
	Formats     []string `json:"formats"`
	RequestedBy string   `json:"requestedBy"`
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, segments []string) {
	switch {
	case len(segments) == 0 && r.Method == http.MethodPost:
		var req exportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid export request payload")
			return
		}
		in := exports.Request{Kind: domain.EntityType(req.Kind), Query: req.Query, Fields: req.Fields, RequestedBy: req.RequestedBy}
		for _, f := range req.Formats {
			in.Formats = append(in.Formats, exports.Format(f))
		}
		rec, err := h.Exports.Enqueue(r.Context(), in)
		if errors.Is(err, core.ErrUnknownKind) || errors.Is(err, exports.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"export": rec})
	case len(segments) == 0:
		if !allow(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"exports": h.Exports.List()})
	case len(segments) <= 2:
		if !allow(w, r, http.MethodGet) {
			return
		}
		rec, ok := h.Exports.Get(segments[0])
		if !ok {
			writeError(w, http.StatusNotFound, "export not found")
			return
		}
		if len(segments) == 1 {
			writeJSON(w, http.StatusOK, map[string]any{"export": rec})
			return
		}
		if segments[1] != "download" {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		h.download(w, r, rec)
	default:
		writeError(w, http.StatusNotFound, "endpoint not found")
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, rec exports.Record) {
	if !rec.Status.Done() {
		writeError(w, http.StatusConflict, "export not finished")
		return
	}
	name := r.URL.Query().Get("format")
	if name == "" && len(rec.Formats) > 0 {
		name = string(rec.Formats[0])
	}
	format, err := exports.ParseFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	artifact, payload, err := h.Exports.Download(r.Context(), rec.ID, format)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(rec.Kind)+"."+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var notFound domain.ErrNotFound
	switch {
	case errors.As(err, &notFound), errors.Is(err, core.ErrUnknownKind):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrNotParent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, exports.ErrQueueFull), errors.Is(err, exports.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		if h.Logger != nil {
			h.Logger.Error("request failed", "error", err)
		}
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func fieldsParam(r *http.Request) []string {
	raw := r.URL.Query().Get("fields")
	if raw == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
