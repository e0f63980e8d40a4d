// Package handler exposes the network-state proxy endpoints. Each route maps
// to one network function; responses are relayed verbatim so operators see
// exactly what the core reported.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"coregw/internal/netstate/client"
	"coregw/internal/netstate/metrics"
	dErrors "coregw/pkg/domain-errors"
	"coregw/pkg/platform/httputil"
	"coregw/pkg/requestcontext"
)

// Fetcher is the subset of the upstream client the handler needs.
type Fetcher interface {
	Fetch(ctx context.Context, target client.Upstream, path string, query url.Values) (*client.Result, error)
}

// Handler handles the network-state proxy endpoints.
type Handler struct {
	logger  *slog.Logger
	client  Fetcher
	metrics *metrics.Metrics
}

func New(fetcher Fetcher, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, client: fetcher, metrics: m}
}

// Register registers the proxy routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/core/enb-info", h.proxy("/enb-info", h.toMME))
	r.Get("/core/ue-info", h.proxy("/ue-info", h.byRAT))
	r.Get("/core/gnb-info", h.proxy("/gnb-info", h.toAMF))
	r.Get("/core/pdu-info", h.proxy("/pdu-info", h.toSMF))
}

func (h *Handler) toMME(url.Values) client.Upstream { return client.UpstreamMME }
func (h *Handler) toAMF(url.Values) client.Upstream { return client.UpstreamAMF }
func (h *Handler) toSMF(url.Values) client.Upstream { return client.UpstreamSMF }

// byRAT routes UE lookups by radio access technology: the AMF holds 5G UE
// context, the MME everything else.
func (h *Handler) byRAT(query url.Values) client.Upstream {
	if query.Get("rat") == "5g" {
		return client.UpstreamAMF
	}
	return client.UpstreamMME
}

func (h *Handler) proxy(path string, route func(url.Values) client.Upstream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()
		target := route(query)

		result, err := h.client.Fetch(ctx, target, path, query)
		if err != nil {
			h.metrics.IncrementRequest(path, outcomeOf(err))
			h.logger.WarnContext(ctx, "network state fetch failed",
				"request_id", requestcontext.RequestID(ctx),
				"upstream", string(target),
				"path", path,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}

		h.metrics.IncrementRequest(path, metrics.OutcomeOK)
		if result.ContentType != "" {
			w.Header().Set("Content-Type", result.ContentType)
		}
		w.WriteHeader(result.Status)
		w.Write(result.Body)
	}
}

func outcomeOf(err error) string {
	if dErrors.HasCode(err, dErrors.CodeUpstreamTimeout) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeUnavailable
}
