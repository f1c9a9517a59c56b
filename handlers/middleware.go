package handlers

import (
	"encoding/json"
	"net/http"

	"TaskClient/metrics"
	"TaskClient/response"

	"github.com/prometheus/client_golang/prometheus"
)

// A function type that represents a handler function with metrics.
type HandlerFuncWithMetrics func(http.ResponseWriter, *http.Request, *prometheus.CounterVec, *prometheus.CounterVec)

// rateLimiter is a middleware function that implements rate limiting for HTTP requests.
// It takes a `next` function as a parameter, which is the handler function to be called if the request is allowed.
// If the request is not allowed due to rate limiting, it returns a JSON response with an error message and HTTP status code 429 (Too Many Requests).
func (s *Server) rateLimiter(next http.HandlerFunc) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if !s.limiter.Allow() {
			metrics.RateLimited.Inc()
			message := response.Message{
				Status: "Request Failed",
				Body:   "The API is at capacity, try again later.",
			}
			res.Header().Set("Content-Type", "application/json")
			res.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(res).Encode(&message)
			return
		}
		next(res, req)
	}
}

// MetricsHandler wraps the provided handler function with metrics collection and rate limiting.
// The endpoint and error counters are passed through to the handler, which labels them itself.
func (s *Server) MetricsHandler(handlerFunc HandlerFuncWithMetrics) http.HandlerFunc {
	return s.rateLimiter(func(res http.ResponseWriter, req *http.Request) {
		handlerFunc(res, req, metrics.EndpointCalls, metrics.EndpointErrors)
	})
}
