package sdclient

import (
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"four images", `{"images":["a","b","c","d"],"info":"{}"}`, 4, false},
		{"empty list", `{"images":[]}`, 0, false},
		{"missing field", `{"detail":"Not Found"}`, 0, true},
		{"null images", `{"images":null}`, 0, true},
		{"not json", `<html>bad gateway</html>`, 0, true},
		{"empty body", "  ", 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Decode(GenerationResult{RawBody: c.body})
			if c.wantErr {
				if err == nil || !IsParse(err) {
					t.Fatalf("expected ParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Images) != c.want {
				t.Fatalf("images=%d want %d", len(got.Images), c.want)
			}
		})
	}
}

func TestDecode_PreservesOrder(t *testing.T) {
	got, err := Decode(GenerationResult{RawBody: `{"images":["1","2","3"]}`})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, want := range []string{"1", "2", "3"} {
		if got.Images[i] != want {
			t.Fatalf("images[%d]=%q want %q", i, got.Images[i], want)
		}
	}
}

func TestGenerationResult_Elapsed(t *testing.T) {
	r := GenerationResult{ElapsedMillis: 1500}
	if r.Elapsed() != 1500*time.Millisecond {
		t.Fatalf("elapsed=%s", r.Elapsed())
	}
}
