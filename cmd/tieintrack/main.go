// Command tieintrack manages projects, daisy chains and tie-ins from the
// terminal and prints their completion analytics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var exitFunc = os.Exit

func main() {
	code := cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

// cli runs one command and maps its outcome to an exit code: 0 success, 1
// failure, 2 usage error.
func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if terr := a.teardown(ctx); err == nil {
		err = terr
	}
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	var usage usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// usageError marks bad invocations such as a missing confirmation flag.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }
