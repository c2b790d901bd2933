package l10n

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsHook counts locale outcomes and load diagnostics
type MetricsHook struct {
	localeResults *prometheus.CounterVec
	loadErrors    *prometheus.CounterVec
	attempts      *prometheus.CounterVec
}

var _ ResolutionHook = &MetricsHook{}

// NewMetricsHook registers the l10n collectors on reg; a nil reg uses the
// default prometheus registry.
func NewMetricsHook(reg prometheus.Registerer) *MetricsHook {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsHook{
		localeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "l10n_locale_results_total",
			Help: "Locale resolution outcomes by result (ready, error)",
		}, []string{"result"}),
		loadErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "l10n_resource_load_errors_total",
			Help: "Resource load diagnostics by kind",
		}, []string{"kind"}),
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "l10n_locale_attempts_total",
			Help: "Locale resolution attempts by mode (sync, async)",
		}, []string{"mode"}),
	}
}

func (h *MetricsHook) BeforeLocale(ctx *ResolutionHookContext) {
	mode := "sync"
	if ctx.Async {
		mode = "async"
	}
	h.attempts.WithLabelValues(mode).Inc()
}

func (h *MetricsHook) AfterLocale(ctx *ResolutionHookContext) {
	if ctx.Ready() {
		h.localeResults.WithLabelValues("ready").Inc()
	} else {
		h.localeResults.WithLabelValues("error").Inc()
	}
	for _, err := range ctx.LoadErrors() {
		h.loadErrors.WithLabelValues(err.Kind.String()).Inc()
	}
}
