package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

// call is one scripted request. body builds the JSON payload for sequence n
// so register traffic uses a distinct address each time.
type call struct {
	method string
	path   string
	body   func(seed, n int64) any
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	client := &http.Client{Timeout: 5 * time.Second}
	calls := callsForProfile(cfg.Profile)
	if len(calls) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx, seq int64
	jobs := make(chan call, cfg.Concurrency*2)
	wg := sync.WaitGroup{}

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				req, err := newRequest(ctx, cfg, c, atomic.AddInt64(&seq, 1))
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{TotalRequests: total, Failures: failures, Status2xx: s2xx, Status4xx: s4xx, Status5xx: s5xx}, nil
		case <-ticker.C:
			select {
			case jobs <- calls[i%len(calls)]:
				i++
			case <-ctx.Done():
			}
		}
	}
}

func newRequest(ctx context.Context, cfg Config, c call, n int64) (*http.Request, error) {
	if c.body == nil {
		return http.NewRequestWithContext(ctx, c.method, cfg.BaseURL+c.path, nil)
	}
	payload, err := json.Marshal(c.body(cfg.Seed, n))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, c.method, cfg.BaseURL+c.path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func syntheticEmail(seed, n int64) string {
	return fmt.Sprintf("loadgen-%d-%d@loadgen.invalid", seed, n)
}

var (
	liveCall  = call{method: http.MethodGet, path: "/health/live"}
	readyCall = call{method: http.MethodGet, path: "/health/ready"}
	meCall    = call{method: http.MethodGet, path: "/api/v1/me"}

	registerCall = call{method: http.MethodPost, path: "/api/v1/auth/register", body: func(seed, n int64) any {
		return map[string]string{
			"display_name": fmt.Sprintf("Load %d", n),
			"email":        syntheticEmail(seed, n),
			"password":     "Loadgen#Pass1",
		}
	}}
	loginCall = call{method: http.MethodPost, path: "/api/v1/auth/login", body: func(seed, n int64) any {
		return map[string]string{"email": syntheticEmail(seed, n), "password": "Loadgen#Pass1"}
	}}
	forgotCall = call{method: http.MethodPost, path: "/api/v1/auth/password/forgot", body: func(seed, n int64) any {
		return map[string]string{"email": syntheticEmail(seed, n)}
	}}
	verifyCall = call{method: http.MethodPost, path: "/api/v1/auth/verify", body: func(seed, n int64) any {
		return map[string]string{"email": syntheticEmail(seed, n), "code": "000000"}
	}}
	resetCall = call{method: http.MethodPost, path: "/api/v1/auth/password/reset", body: func(seed, n int64) any {
		return map[string]string{"token": strings.Repeat("0", 64), "new_password": "Loadgen#Pass2"}
	}}
)

func callsForProfile(profile string) []call {
	switch strings.ToLower(profile) {
	case "", "mixed":
		return []call{liveCall, registerCall, loginCall, readyCall, meCall}
	case "auth":
		return []call{registerCall, loginCall, verifyCall, forgotCall}
	case "error-heavy":
		return []call{verifyCall, resetCall, meCall, loginCall}
	default:
		return nil
	}
}
