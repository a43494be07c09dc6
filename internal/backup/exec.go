package backup

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// Command describes one external tool invocation. Env holds extra variables
// appended to the parent environment, so cloud CLIs pick up credentials and
// region the same way they would from an exported shell environment.
type Command struct {
	Name string
	Args []string
	Env  []string
}

// Executor runs external commands. The single production implementation
// shells out; tests substitute a recording fake to assert which subprocesses
// a run did (and did not) start.
type Executor interface {
	Run(ctx context.Context, cmd *Command) error
}

// NewExecutor returns an Executor backed by os/exec.
func NewExecutor(logger *slog.Logger) Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &osExecutor{logger: logger}
}

type osExecutor struct {
	logger *slog.Logger
}

func (e *osExecutor) Run(ctx context.Context, cmd *Command) error {
	e.logger.Info("running command",
		"command", cmd.Name,
		"args", strings.Join(RedactArgs(cmd.Args), " "))

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Env = append(os.Environ(), cmd.Env...)

	output, err := c.CombinedOutput()
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewError(ErrTimeout, cmd.Name+" timed out", ctx.Err())
	case errors.Is(ctx.Err(), context.Canceled):
		return NewError(ErrCanceled, cmd.Name+" canceled", ctx.Err())
	}

	msg := cmd.Name + " failed"
	if out := strings.TrimSpace(string(output)); out != "" {
		msg += ": " + out
	}
	return NewError(ErrUnknown, msg, err)
}

// secretFlags lists argument flags whose following value must never reach
// the logs.
var secretFlags = map[string]bool{
	"--password": true,
	"-p":         true,
}

// sasSignature matches the signature parameter of an Azure SAS URI.
var sasSignature = regexp.MustCompile(`(sig=)[^&\s]+`)

// RedactArgs returns a copy of args safe for logging: credential flag
// values and SAS signatures are masked.
func RedactArgs(args []string) []string {
	redacted := make([]string, len(args))
	maskNext := false
	for i, arg := range args {
		switch {
		case maskNext:
			redacted[i] = "*****"
			maskNext = false
		case secretFlags[arg]:
			redacted[i] = arg
			maskNext = true
		case strings.HasPrefix(arg, "--password="):
			redacted[i] = "--password=*****"
		default:
			redacted[i] = sasSignature.ReplaceAllString(arg, "${1}*****")
		}
	}
	return redacted
}
