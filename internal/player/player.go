package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/vcns/bell-timer/internal/logger"
)

// Player plays a validated sound file for a bounded duration.
type Player interface {
	Play(ctx context.Context, path string) error
}

// ErrAudioUnavailable is returned when no playback command exists on the host.
var ErrAudioUnavailable = errors.New("no audio playback command available")

// playbackCommands are tried in order; the first one present on PATH wins.
//
//nolint:gochecknoglobals // Fixed candidate list, read-only after init.
var playbackCommands = [][]string{
	{"aplay", "-q"},
	{"paplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"afplay"},
}

// ExecPlayer shells out to an OS playback command.
// Playback is bounded by the ring duration; a deadline hit stops the
// command and is treated as normal completion.
type ExecPlayer struct {
	// command is the resolved playback binary; empty when none was found.
	command string
	// args precede the sound file path on the command line.
	args []string
	// ringFor bounds a single playback.
	ringFor time.Duration
}

// Option configures the player.
type Option func(*ExecPlayer)

// WithCommand overrides command detection. Used by tests and by hosts
// with a non-standard player.
func WithCommand(command string, args ...string) Option {
	return func(p *ExecPlayer) {
		p.command = command
		p.args = args
	}
}

// NewExecPlayer resolves a playback command from PATH.
// A host without any playback command still gets a player; Play then
// reports ErrAudioUnavailable so alarms degrade to logged no-ops.
func NewExecPlayer(ctx context.Context, ringFor time.Duration, opts ...Option) *ExecPlayer {
	p := &ExecPlayer{ringFor: ringFor}

	for _, opt := range opts {
		opt(p)
	}

	if p.command != "" {
		return p
	}

	for _, candidate := range playbackCommands {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			p.command = candidate[0]
			p.args = candidate[1:]

			break
		}
	}

	if p.command == "" {
		logger.Warn(ctx, "No audio playback command found, alarms will not ring")
	} else {
		logger.InfoKV(ctx, "Audio playback command resolved", "command", p.command)
	}

	return p
}

// Available reports whether a playback command was resolved.
func (p *ExecPlayer) Available() bool {
	return p.command != ""
}

// Play plays the sound file at path, stopping it once the ring duration
// elapses. The file must exist; callers resolve the path through the
// sound library first, but a file can disappear between ticks.
func (p *ExecPlayer) Play(ctx context.Context, path string) error {
	if p.command == "" {
		return ErrAudioUnavailable
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sound file: %w", err)
	}

	playCtx := ctx

	if p.ringFor > 0 {
		var cancel context.CancelFunc

		playCtx, cancel = context.WithTimeout(ctx, p.ringFor)
		defer cancel()
	}

	started := time.Now()

	args := make([]string, 0, len(p.args)+1)
	args = append(args, p.args...)
	args = append(args, path)

	err := exec.CommandContext(playCtx, p.command, args...).Run()

	switch {
	case err == nil:
		logger.DebugKV(ctx, "Playback completed", "path", path, "took", time.Since(started).String())
		return nil
	case errors.Is(playCtx.Err(), context.DeadlineExceeded):
		// Ring duration elapsed; stopping a long sound is expected.
		logger.InfoKV(ctx, "Playback stopped at ring duration",
			"path", path, "ring_duration", p.ringFor.String())

		return nil
	default:
		return fmt.Errorf("play %s: %w", path, err)
	}
}
