package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

// Check implements Checker.
func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// SystemHandler serves the operational endpoints.
type SystemHandler struct {
	checks  map[string]Checker
	service string
	timeout time.Duration
	log     *zap.Logger
}

// NewSystemHandler creates a SystemHandler probing checks on /health.
func NewSystemHandler(service string, checks map[string]Checker, log *zap.Logger) *SystemHandler {
	return &SystemHandler{checks: checks, service: service, timeout: 2 * time.Second, log: log}
}

// Health handles GET /health. Every dependency is probed concurrently.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(h.checks))
		healthy = true
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check Checker) {
			defer wg.Done()
			status := "up"
			if err := check.Check(ctx); err != nil {
				h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				status = "down"
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "up" {
				healthy = false
			}
		}(name, check)
	}
	wg.Wait()

	code, status := http.StatusOK, "healthy"
	if !healthy {
		code, status = http.StatusServiceUnavailable, "unhealthy"
	}
	c.JSON(code, gin.H{
		"status":       status,
		"service":      h.service,
		"dependencies": results,
	})
}

// Check handles ANY /check by echoing the request back.
func (h *SystemHandler) Check(c *gin.Context) {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}

	query := make(map[string]any, len(c.Request.URL.Query()))
	for k, vs := range c.Request.URL.Query() {
		if len(vs) == 1 {
			query[k] = vs[0]
		} else {
			query[k] = vs
		}
	}

	var body any
	if raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes)); err == nil && len(bytes.TrimSpace(raw)) > 0 {
		if json.Unmarshal(raw, &body) != nil {
			body = string(raw)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        c.Request.URL.String(),
		"statusCode": http.StatusOK,
		"method":     c.Request.Method,
		"params":     params,
		"query":      query,
		"body":       body,
	})
}
