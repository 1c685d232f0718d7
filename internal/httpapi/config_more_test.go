package httpapi

import "testing"

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetCORSOptions_Defaults(t *testing.T) {
	defer SetCORSOptions(false, nil, nil, nil)
	SetCORSOptions(true, []string{"https://a.example"}, nil, nil)
	if got := corsMethods(); len(got) != 3 || got[0] != "GET" {
		t.Fatalf("methods=%v", got)
	}
	if got := corsHeaders(); len(got) != 1 || got[0] != "Content-Type" {
		t.Fatalf("headers=%v", got)
	}
	SetCORSOptions(true, nil, []string{"POST"}, []string{"X-Custom"})
	if got := corsMethods(); len(got) != 1 || got[0] != "POST" {
		t.Fatalf("methods=%v", got)
	}
	if got := corsHeaders(); len(got) != 1 || got[0] != "X-Custom" {
		t.Fatalf("headers=%v", got)
	}
}
