package sysconf

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/vcns/bell-timer/internal/logger"
)

// commandTimeout bounds each system command invocation.
const commandTimeout = 15 * time.Second

// Result is the pass/fail outcome of a system command.
type Result struct {
	// OK reports whether the command succeeded.
	OK bool `json:"ok"`
	// Message carries the command output or the failure reason.
	Message string `json:"message"`
}

// TimeStatus is the host's current time configuration.
type TimeStatus struct {
	// Timezone is the configured IANA timezone name.
	Timezone string `json:"timezone"`
	// NTPEnabled reports whether systemd-timesyncd is active.
	NTPEnabled bool `json:"ntp_enabled"`
	// Synchronized reports whether the clock is currently NTP-synchronized.
	Synchronized bool `json:"synchronized"`
}

// EnableTimeSync turns NTP synchronization on via timedatectl.
func EnableTimeSync(ctx context.Context) Result {
	return run(ctx, "timedatectl", "set-ntp", "true")
}

// ApplyNetworkPlan applies the host's current netplan configuration.
// Writing that configuration is out of scope; this only surfaces
// pass/fail for an apply requested by the operator.
func ApplyNetworkPlan(ctx context.Context) Result {
	return run(ctx, "netplan", "apply")
}

// QueryTimeStatus reports the host's timezone and NTP state.
func QueryTimeStatus(ctx context.Context) (TimeStatus, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, "timedatectl", "show").Output()
	if err != nil {
		return TimeStatus{}, fmt.Errorf("timedatectl show: %w", err)
	}

	return parseTimeStatus(string(output)), nil
}

// parseTimeStatus reads `timedatectl show` key=value output.
func parseTimeStatus(output string) TimeStatus {
	var status TimeStatus

	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}

		switch key {
		case "Timezone":
			status.Timezone = value
		case "NTP":
			status.NTPEnabled = value == "yes"
		case "NTPSynchronized":
			status.Synchronized = value == "yes"
		}
	}

	return status
}

// run executes a system command and folds the outcome into a Result.
// Failures are reported, never propagated as errors; the appliance
// keeps running whatever the host tooling says.
func run(ctx context.Context, name string, args ...string) Result {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, name, args...).CombinedOutput()

	message := strings.TrimSpace(string(output))

	if err != nil {
		if message == "" {
			message = err.Error()
		}

		logger.WarnKV(ctx, "System command failed",
			"command", name, "args", strings.Join(args, " "), "error", err)

		return Result{OK: false, Message: message}
	}

	if message == "" {
		message = name + " succeeded"
	}

	logger.InfoKV(ctx, "System command succeeded", "command", name)

	return Result{OK: true, Message: message}
}
