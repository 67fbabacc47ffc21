package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skillhire"

var (
	QuestionsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quizgen",
		Name:      "questions_total",
		Help:      "Questions produced by the generator, by source (llm or fallback).",
	}, []string{"source"})

	GenerationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quizgen",
		Name:      "fallbacks_total",
		Help:      "Generator calls that used synthesized questions, by reason.",
	}, []string{"reason"})

	QuizAssemblies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quiz",
		Name:      "assemblies_total",
		Help:      "Quiz assembly runs by result.",
	}, []string{"result"})

	AssemblyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "quiz",
		Name:      "assembly_duration_seconds",
		Help:      "Time spent generating and persisting a quiz.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	QuizSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quiz",
		Name:      "submissions_total",
		Help:      "Quiz submissions by result.",
	}, []string{"result"})

	QuestionPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quiz",
		Name:      "question_polls_total",
		Help:      "Server-side question polls by final state.",
	}, []string{"state"})

	StaleRequeued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quiz",
		Name:      "stale_requeued_total",
		Help:      "Pending quizzes re-enqueued by the sweeper.",
	})

	ApplicationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "application",
		Name:      "transitions_total",
		Help:      "Application status changes by trigger and new status.",
	}, []string{"trigger", "status"})

	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Postgres statement latency by leading SQL verb.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"op"})

	DBQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_errors_total",
		Help:      "Postgres statements that returned an error, by leading SQL verb.",
	}, []string{"op"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
