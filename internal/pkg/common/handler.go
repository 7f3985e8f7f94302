package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"event_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// Check 单项依赖检查
type Check func(ctx context.Context) error

// HealthHandler 并发检查各依赖的可用性
type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthHandler(timeout time.Duration) *HealthHandler {
	return &HealthHandler{checks: make(map[string]Check), timeout: timeout}
}

// Add 注册依赖检查，nil 表示该依赖未启用
func (h *HealthHandler) Add(name string, check Check) {
	if check != nil {
		h.checks[name] = check
	}
}

// Health 健康检查
// @Summary 健康检查
// @Tags Common
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup
	healthy := true

	for _, name := range names {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()
			status := "up"
			if err := check(ctx); err != nil {
				status = "down: " + err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "up" {
				healthy = false
			}
		}(name, h.checks[name])
	}
	wg.Wait()

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    response.ErrServerInternal,
			Message: "unhealthy",
			Data:    results,
		})
		return
	}
	response.Success(c, results)
}
