package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write plan file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writePlan(t, `account: "111122223333"
profile: prod
container: backups
tier: archive
target_tier: hot
newer_than: 2024-04-01
older_than: 2024-04-30
priority: high
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Account != "111122223333" {
		t.Errorf("account = %q", p.Account)
	}
	if p.Profile != "prod" || p.Container != "backups" {
		t.Errorf("profile/container = %q/%q", p.Profile, p.Container)
	}
	if p.Tier != "archive" || p.TargetTier != "hot" {
		t.Errorf("tier/target_tier = %q/%q", p.Tier, p.TargetTier)
	}
	if p.NewerThan != "2024-04-01" || p.OlderThan != "2024-04-30" {
		t.Errorf("window = %q..%q", p.NewerThan, p.OlderThan)
	}
	if p.Priority != "high" {
		t.Errorf("priority = %q", p.Priority)
	}
}

func TestLoadPartial(t *testing.T) {
	p, err := Load(writePlan(t, "container: backups\ntier: cool\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Container != "backups" || p.Tier != "cool" {
		t.Errorf("container/tier = %q/%q", p.Container, p.Tier)
	}
	if p.Account != "" || p.Priority != "" {
		t.Errorf("unset fields should stay empty, got account=%q priority=%q", p.Account, p.Priority)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load(writePlan(t, "container: backups\ntarget_teir: hot\n"))
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	if !strings.Contains(err.Error(), "failed to parse plan") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing plan file")
	}
}
