package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangang/jokecli/internal/services"
	"github.com/huangang/jokecli/pkg/response"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd := NewRootCommand(streams{in: in, out: out, errOut: errOut})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return services.ExitSuccess
	}

	if errors.Is(err, context.Canceled) || response.ExitCode(err) == services.ExitUserCancelled {
		fmt.Fprintln(errOut, "\nOperation cancelled by user.")
		return services.ExitUserCancelled
	}

	response.Fail(errOut, err)
	return response.ExitCode(err)
}
