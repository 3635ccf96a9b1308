package instance

import "testing"

func TestIDPrefersExplicitSetting(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("STORESHOP_INSTANCE_ID", "shop-a")
	if got := ID(); got != "shop-a" {
		t.Fatalf("expected shop-a, got %q", got)
	}
}

func TestIDFallsBackToDyno(t *testing.T) {
	t.Setenv("STORESHOP_INSTANCE_ID", "")
	t.Setenv("INSTANCE_ID", "")
	t.Setenv("DYNO", "web.1")
	if got := ID(); got != "web.1" {
		t.Fatalf("expected web.1, got %q", got)
	}
}

func TestIDNeverEmpty(t *testing.T) {
	t.Setenv("STORESHOP_INSTANCE_ID", "")
	t.Setenv("INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	if ID() == "" {
		t.Fatal("expected a non-empty id")
	}
}
