package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// openInput returns the reader for path, or the command's stdin for "" and
// "-". An interactive terminal on stdin is rejected instead of blocking.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return nil, nil, fmt.Errorf("no input: pipe aggregation output to stdin or pass --input")
		}
		return in, func() {}, nil
	}

	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// lazyFile creates its file on the first write, so a failed conversion
// leaves no output file behind.
type lazyFile struct {
	path string
	f    *os.File
}

func (l *lazyFile) Write(p []byte) (int, error) {
	if l.f == nil {
		f, err := os.Create(l.path) //nolint:gosec // path is caller-controlled
		if err != nil {
			return 0, fmt.Errorf("create output: %w", err)
		}
		l.f = f
	}
	return l.f.Write(p)
}

// Close closes the file if it was created.
func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
