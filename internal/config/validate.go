package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// ValidationResult separates startup-blocking errors from ones that were
// auto-corrected (clamped) and merely logged, mirroring the teacher's
// tiered-validation split in its own config package.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool { return len(r.Fatals) > 0 }

// AllErrors returns fatals followed by warnings, for callers that just want
// everything that was wrong.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

// ValidateTiered checks the config for invalid values. Values that would
// panic or misbehave dangerously (intervals, concurrency limits) are
// clamped to a safe range and reported as warnings; structurally invalid
// values (bad URL scheme, malformed id, control characters in a secret)
// are fatal and block startup.
func (c *Config) ValidateTiered() ValidationResult {
	var res ValidationResult

	if c.ClientID != "" && !uuidRegex.MatchString(c.ClientID) {
		res.Fatals = append(res.Fatals, fmt.Errorf("client_id %q is not a valid UUID", c.ClientID))
	}

	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			res.Fatals = append(res.Fatals, fmt.Errorf("server_url %q is not a valid URL: %w", c.ServerURL, err))
		} else if u.Scheme != "ws" && u.Scheme != "wss" && u.Scheme != "http" && u.Scheme != "https" {
			res.Fatals = append(res.Fatals, fmt.Errorf("server_url scheme must be ws, wss, http, or https, got %q", u.Scheme))
		}
	}

	if c.AuthToken != "" {
		for _, r := range c.AuthToken {
			if unicode.IsControl(r) {
				res.Fatals = append(res.Fatals, fmt.Errorf("auth_token contains control characters"))
				break
			}
		}
	}

	if c.ReconnectMinBackoffMs < 10 {
		res.Warnings = append(res.Warnings, fmt.Errorf("reconnect_min_backoff_ms %d is below minimum 10, clamping", c.ReconnectMinBackoffMs))
		c.ReconnectMinBackoffMs = 10
	}
	if c.ReconnectMaxBackoffMs < c.ReconnectMinBackoffMs {
		res.Warnings = append(res.Warnings, fmt.Errorf("reconnect_max_backoff_ms %d is below reconnect_min_backoff_ms, clamping", c.ReconnectMaxBackoffMs))
		c.ReconnectMaxBackoffMs = c.ReconnectMinBackoffMs * 10
	}

	if c.PingIntervalSeconds < 1 {
		res.Warnings = append(res.Warnings, fmt.Errorf("ping_interval_seconds %d is below minimum 1, clamping", c.PingIntervalSeconds))
		c.PingIntervalSeconds = 1
	} else if c.PingIntervalSeconds > 600 {
		res.Warnings = append(res.Warnings, fmt.Errorf("ping_interval_seconds %d exceeds maximum 600, clamping", c.PingIntervalSeconds))
		c.PingIntervalSeconds = 600
	}

	if c.ProgressiveWorkerCount < 1 {
		res.Warnings = append(res.Warnings, fmt.Errorf("progressive_worker_count %d is below minimum 1, clamping", c.ProgressiveWorkerCount))
		c.ProgressiveWorkerCount = 1
	} else if c.ProgressiveWorkerCount > 64 {
		res.Warnings = append(res.Warnings, fmt.Errorf("progressive_worker_count %d exceeds maximum 64, clamping", c.ProgressiveWorkerCount))
		c.ProgressiveWorkerCount = 64
	}

	if c.SendQueueSize < 1 {
		res.Warnings = append(res.Warnings, fmt.Errorf("send_queue_size %d is below minimum 1, clamping", c.SendQueueSize))
		c.SendQueueSize = 1
	} else if c.SendQueueSize > 10000 {
		res.Warnings = append(res.Warnings, fmt.Errorf("send_queue_size %d exceeds maximum 10000, clamping", c.SendQueueSize))
		c.SendQueueSize = 10000
	}

	if c.QueueDepthWarnThreshold < 0 {
		res.Warnings = append(res.Warnings, fmt.Errorf("queue_depth_warn_threshold %d is negative, clamping to 0", c.QueueDepthWarnThreshold))
		c.QueueDepthWarnThreshold = 0
	}

	if c.MetricsLogIntervalSeconds < 1 {
		res.Warnings = append(res.Warnings, fmt.Errorf("metrics_log_interval_seconds %d is below minimum 1, clamping", c.MetricsLogIntervalSeconds))
		c.MetricsLogIntervalSeconds = 1
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		res.Warnings = append(res.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		res.Warnings = append(res.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	return res
}
