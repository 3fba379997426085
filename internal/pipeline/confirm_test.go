package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"tiersweep/internal/models"
)

func TestTerminalConfirmerAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase Y", "Y\n", true},
		{"windows line ending", "y\r\n", true},
		{"n", "n\n", false},
		{"yes spelled out", "yes\n", false},
		{"empty line", "\n", false},
		{"leading whitespace", " y\n", false},
		{"trailing whitespace", "y \n", false},
		{"no input at all", "", false},
		{"garbage", "ok go ahead\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &TerminalConfirmer{In: strings.NewReader(tt.input), Out: &out}

			got, err := c.Confirm(context.Background(), Summary{Count: 3, Container: "backups"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTerminalConfirmerShowsSummary(t *testing.T) {
	var out bytes.Buffer
	c := &TerminalConfirmer{In: strings.NewReader("n\n"), Out: &out}

	_, err := c.Confirm(context.Background(), Summary{
		Count:        2,
		TotalBytes:   2048,
		Account:      "111122223333",
		Container:    "backups",
		TargetTier:   models.TierHot,
		ArtifactPath: "/audit/discovered_20240410T000000Z.csv",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := out.String()
	for _, want := range []string{"2 object(s)", "111122223333", "backups", "hot", "discovered_20240410T000000Z.csv"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestTerminalConfirmerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never delivers a line; cancellation must win.
	blocked, _ := newBlockedReader()
	var out bytes.Buffer
	c := &TerminalConfirmer{In: blocked, Out: &out}

	ok, err := c.Confirm(ctx, Summary{})
	if ok {
		t.Fatal("cancelled confirmation must not proceed")
	}
	if err == nil {
		t.Fatal("expected the cancellation error")
	}
}

func TestPolicyConfirmer(t *testing.T) {
	ok, err := PolicyConfirmer{Answer: true}.Confirm(context.Background(), Summary{})
	if err != nil || !ok {
		t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = PolicyConfirmer{}.Confirm(context.Background(), Summary{})
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
}
