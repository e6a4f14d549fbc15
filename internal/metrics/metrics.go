// Package metrics holds the Prometheus collectors the services update.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feedback"

var (
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Feedback records durably stored, by rating.",
	}, []string{"rating"})

	Classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifications_total",
		Help:      "Sentiment enrichment outcomes, by result.",
	}, []string{"result"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts, by scope and result.",
	}, []string{"scope", "result"})
)

// Register adds every collector to reg. Already-registered collectors are
// not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{Submissions, Classifications, Logins} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
