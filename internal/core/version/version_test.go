package version

import "testing"

func TestInfoDefaults(t *testing.T) {
	b := Info()
	if b.Service != "triagebot" {
		t.Fatalf("service = %q", b.Service)
	}
	if b.Version != "dev" || b.Commit != "none" || b.Date != "unknown" {
		t.Fatalf("unexpected defaults: %+v", b)
	}
	if got := b.String(); got != "triagebot dev (none, unknown)" {
		t.Fatalf("String() = %q", got)
	}
}
