// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/carepath/carepath-tui/internal/model"
)

// Service names one of the two backends.
type Service string

const (
	ServiceData      Service = "data"
	ServiceInference Service = "inference"
)

// Health calls GET {base}/health on one service.
func (c *Client) Health(ctx context.Context, svc Service) (*model.HealthStatus, error) {
	base := c.dbURL
	if svc == ServiceInference {
		base = c.chatURL
	}
	var h model.HealthStatus
	if err := c.do(ctx, OpHealth, http.MethodGet, base+"/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// HealthReport is the outcome of probing one service.
type HealthReport struct {
	Service Service
	URL     string
	Status  *model.HealthStatus
	Latency time.Duration
	Err     error
}

// OK reports whether the service answered and declared itself healthy.
func (r HealthReport) OK() bool {
	return r.Err == nil && r.Status != nil && r.Status.Healthy()
}

// CheckAll probes both services concurrently. The data service is first.
func (c *Client) CheckAll(ctx context.Context) []HealthReport {
	reports := []HealthReport{
		{Service: ServiceData, URL: c.dbURL},
		{Service: ServiceInference, URL: c.chatURL},
	}

	var wg sync.WaitGroup
	for i := range reports {
		wg.Add(1)
		go func(r *HealthReport) {
			defer wg.Done()
			start := time.Now()
			r.Status, r.Err = c.Health(ctx, r.Service)
			r.Latency = time.Since(start)
		}(&reports[i])
	}
	wg.Wait()
	return reports
}
