package httpadapter

import (
	"net/http"
	"time"

	"github.com/kirillkom/recommender-gateway/internal/config"
	"github.com/kirillkom/recommender-gateway/internal/core/ports"
	"github.com/kirillkom/recommender-gateway/internal/observability/metrics"
)

const (
	serviceName         = "api"
	backpressureTimeout = 250 * time.Millisecond
)

type InteractionService interface {
	ports.InteractionSubmitter
	ports.InteractionReader
}

type Router struct {
	cfg          config.Config
	recommender  ports.Recommender
	interactions InteractionService
	metrics      *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	recommender ports.Recommender,
	interactions InteractionService,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:          cfg,
		recommender:  recommender,
		interactions: interactions,
		metrics:      httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("POST /v1/interactions", rt.submitInteraction)
	api.HandleFunc("GET /v1/interactions/{id}", rt.getInteraction)
	api.HandleFunc("POST /v1/ingest", rt.ingest)

	api.HandleFunc("GET /v1/users/{id}/recommendations", rt.recommend)
	api.HandleFunc("GET /v1/users/{id}/recommendations/nearby", rt.recommendNearby)
	api.HandleFunc("GET /v1/users/{id}/recommendations/terms", rt.termRecommend)
	api.HandleFunc("GET /v1/users/{id}/recommendations/priority", rt.priorityTermRecommend)
	api.HandleFunc("GET /v1/groups/recommendations", rt.recommendGroup)
	api.HandleFunc("GET /v1/terms/recommendations", rt.termItemRecommend)

	api.HandleFunc("GET /v1/users/{id}/profile", rt.userProfile)
	api.HandleFunc("PUT /v1/users/{id}/profile", rt.setUserProfile)
	api.HandleFunc("GET /v1/users/{id}/mood", rt.userMood)

	api.HandleFunc("GET /v1/items/{item}/terms", rt.itemTerms)
	api.HandleFunc("POST /v1/items/{item}/terms", rt.addTerms)
	api.HandleFunc("DELETE /v1/items/{item}/terms", rt.removeTerms)
	api.HandleFunc("GET /v1/items/{item}/locations", rt.itemLocations)
	api.HandleFunc("POST /v1/items/{item}/locations", rt.addItemLocation)
	api.HandleFunc("GET /v1/items/{item}/visitors", rt.itemVisitors)
	api.HandleFunc("GET /v1/items/{item}/similar", rt.similarItems)
	api.HandleFunc("GET /v1/items/{item}/similarity", rt.similarity)
	api.HandleFunc("GET /v1/items/{item}/lucky-users", rt.luckyUsers)

	api.HandleFunc("GET /v1/terms/{term}/similar", rt.similarTerms)
	api.HandleFunc("GET /v1/terms/{term}/similarity", rt.termSimilarity)

	api.HandleFunc("GET /v1/forgotten", rt.forgottenItems)
	api.HandleFunc("POST /v1/forgotten", rt.forgetItems)
	api.HandleFunc("POST /v1/remembered", rt.rememberItems)

	api.HandleFunc("GET /v1/popular", rt.mostPopular)
	api.HandleFunc("GET /v1/trends/{window}", rt.trend)

	var protected http.Handler = api
	protected = authMiddleware(rt.cfg.APIKey, protected)
	protected = rateLimitMiddleware(protected, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.rejectHook("rate_limited"))
	protected = backpressureMiddlewareWithHook(protected, rt.cfg.APIMaxInFlight, backpressureTimeout, rt.rejectHook("overloaded"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/", protected)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) rejectHook(reason string) func() {
	if rt.metrics == nil {
		return nil
	}
	return func() {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
