package diag

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Traceroute shells out to the system traceroute (tracert on Windows)
// and returns its text output. A non-zero exit with output is not an
// error: traceroute exits non-zero on unreachable hops and the partial
// path is still worth showing.
func Traceroute(ctx context.Context, host string) (string, error) {
	name := "traceroute"
	if runtime.GOOS == "windows" {
		name = "tracert"
	}
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	out, err := exec.CommandContext(ctx, name, host).CombinedOutput()
	if len(out) > 0 {
		return string(out), nil
	}
	if err != nil {
		return "", fmt.Errorf("run %s: %w", name, err)
	}
	return "", nil
}
