package database

import "testing"

func TestDSN(t *testing.T) {
	tests := []struct {
		path      string
		wantDSN   string
		wantLocal bool
	}{
		{":memory:", "file::memory:", true},
		{"data/puzzlehunt.db", "file:data/puzzlehunt.db", true},
		{"/var/lib/hunt.db", "file:/var/lib/hunt.db", true},
		{"libsql://hunt-playperu.turso.io?authToken=abc", "libsql://hunt-playperu.turso.io?authToken=abc", false},
		{"https://hunt.example.com", "https://hunt.example.com", false},
		{"http://127.0.0.1:8081", "http://127.0.0.1:8081", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, local := dsn(tt.path)
			if got != tt.wantDSN || local != tt.wantLocal {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.wantDSN, tt.wantLocal, got, local)
			}
		})
	}
}
