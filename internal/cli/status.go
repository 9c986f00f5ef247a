// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - The "status" command: probe both services.

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carepath/carepath-tui/internal/api"
)

// HandleStatus probes the data and inference services concurrently and
// reports each. It fails when either service is down.
func HandleStatus(env *Env, args Args) error {
	reports := env.Client().CheckAll(context.Background())

	data := StatusData{Healthy: true}
	var down []string
	for _, r := range reports {
		s := ServiceStatus{
			Service:   string(r.Service),
			URL:       r.URL,
			Healthy:   r.OK(),
			LatencyMs: float64(r.Latency) / float64(time.Millisecond),
		}
		if r.Status != nil {
			s.Status = r.Status.Status
			s.Version = r.Status.Version
		}
		if r.Err != nil {
			s.Error = describe(r.Err)
		}
		if !s.Healthy {
			data.Healthy = false
			down = append(down, s.Service)
		}
		data.Services = append(data.Services, s)
	}

	var err error
	if len(down) > 0 {
		err = &CommandError{
			Command: "status",
			Action:  "check",
			Reason:  "unhealthy: " + strings.Join(down, ", "),
			Err:     firstReportErr(reports),
		}
	}

	if args.JSON {
		resp := NewJSONResponse("status", data)
		if err != nil {
			msg := err.Error()
			resp.Success = false
			resp.Error = &msg
		}
		if werr := resp.Write(env.Out); werr != nil {
			return werr
		}
		return silent(err)
	}

	fmt.Fprintln(env.Out, TitleStyle.Render("CarePath Services"))
	for _, s := range data.Services {
		fmt.Fprintf(env.Out, "%s %s\n", RenderStatus(s.Healthy), SectionStyle.Render(s.Service))
		fmt.Fprintln(env.Out, "  "+field("URL", s.URL))
		if s.Status != "" {
			fmt.Fprintln(env.Out, "  "+field("Status", s.Status))
		}
		if s.Version != "" {
			fmt.Fprintln(env.Out, "  "+field("Version", s.Version))
		}
		fmt.Fprintln(env.Out, "  "+field("Latency", fmt.Sprintf("%.0fms", s.LatencyMs)))
		if s.Error != "" {
			fmt.Fprintln(env.Out, "  "+RenderLabel("Error")+ErrorStyle.Render(strings.ReplaceAll(s.Error, "\n", ": ")))
		}
	}
	return silent(err)
}

func firstReportErr(reports []api.HealthReport) error {
	for _, r := range reports {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// silentError has already been reported by the handler; Run skips display
// but the exit code still reflects the wrapped error.
type silentError struct{ err error }

func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

func silent(err error) error {
	if err == nil {
		return nil
	}
	return &silentError{err: err}
}
