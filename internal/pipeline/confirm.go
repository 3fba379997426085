package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"tiersweep/internal/models"
)

// Summary is what the confirmation gate shows the operator before asking.
type Summary struct {
	Count        int
	TotalBytes   int64
	Account      string
	Container    string
	TargetTier   models.Tier
	ArtifactPath string
}

// Confirmer decides whether a discovered candidate set may be mutated. The
// gate is injectable so tests and unattended runs can pre-answer it.
type Confirmer interface {
	Confirm(ctx context.Context, s Summary) (bool, error)
}

// TerminalConfirmer prompts on Out and reads a single line from In. Only the
// exact answers "y" and "Y" proceed; everything else (empty input, "n",
// "yes", whitespace, EOF) declines. Ambiguity always lands on the
// non-destructive branch.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (c *TerminalConfirmer) Confirm(ctx context.Context, s Summary) (bool, error) {
	fmt.Fprintf(c.Out, "About to move %d object(s) (%s) in %s/%s to tier %s.\n",
		s.Count, humanize.IBytes(uint64(s.TotalBytes)), s.Account, s.Container, s.TargetTier)
	if s.ArtifactPath != "" {
		fmt.Fprintf(c.Out, "The discovered set is recorded at %s\n", s.ArtifactPath)
	}
	fmt.Fprint(c.Out, "Proceed? [y/N] ")

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(c.In).ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.line == "" {
			return false, nil
		}
		line := strings.TrimRight(a.line, "\r\n")
		return line == "y" || line == "Y", nil
	}
}

// PolicyConfirmer answers without asking. It backs the --yes flag and any
// policy-driven unattended operation.
type PolicyConfirmer struct {
	Answer bool
}

func (c PolicyConfirmer) Confirm(context.Context, Summary) (bool, error) {
	return c.Answer, nil
}
