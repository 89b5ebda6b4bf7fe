package utils

import "testing"

func TestConcurrencyScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if concurrencyAcquireScript == nil || concurrencyReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestSendCapKey(t *testing.T) {
	if got := SendCapKey(42); got != "sendcap:company:42" {
		t.Fatalf("unexpected key %q", got)
	}
}
