package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counters for the two schedulers. Fallbacks firing means a coach has blocked
// nearly the whole calendar and the engine degraded to its bounded fallback.
var (
	SessionsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coachplan_sessions_placed_total",
		Help: "Sessions created by initial program placement.",
	})
	SessionsRescheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coachplan_sessions_rescheduled_total",
		Help: "Session date moves applied by reschedule passes.",
	})
	RescheduleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coachplan_reschedule_update_failures_total",
		Help: "Per-session persistence failures during reschedule passes.",
	})
	SchedulingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coachplan_scheduling_fallbacks_total",
		Help: "Placements or reschedules that exhausted their bounded search.",
	})
)

// Handler exposes the prometheus registry for the /metrics route.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
