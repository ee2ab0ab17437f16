package galangal

import (
	"errors"
	"testing"
)

// takenSet is an existsFunc backed by a set of taken names.
func takenSet(names ...string) existsFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) (bool, error) {
		return set[name], nil
	}
}

func TestResolveConflict_FreeNameIsUnchanged(t *testing.T) {
	env := newTestEnv(t, nil)
	got, err := env.client.resolveConflict("/out/report.csv", takenSet())
	if err != nil {
		t.Fatalf("resolveConflict: %v", err)
	}
	if got != "/out/report.csv" {
		t.Errorf("resolved to %q, want unchanged name", got)
	}
}

func TestResolveConflict_NeverRejects(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.Overwrite = OverwriteNever })
	_, err := env.client.resolveConflict("/out/report.csv", takenSet("/out/report.csv"))
	var existsErr *AlreadyExistsError
	if !errors.As(err, &existsErr) {
		t.Fatalf("error = %v, want AlreadyExistsError", err)
	}
	if existsErr.Path != "/out/report.csv" {
		t.Errorf("Path = %q, want /out/report.csv", existsErr.Path)
	}
}

func TestResolveConflict_AlwaysKeepsName(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.Overwrite = OverwriteAlways })
	got, err := env.client.resolveConflict("/out/report.csv", takenSet("/out/report.csv"))
	if err != nil {
		t.Fatalf("resolveConflict: %v", err)
	}
	if got != "/out/report.csv" {
		t.Errorf("resolved to %q, want unchanged name", got)
	}
}

func TestResolveConflict_SuffixBeforeExt(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		taken    []string
		want     string
	}{
		{
			name:     "first collision",
			fileName: "/out/report.csv",
			taken:    []string{"/out/report.csv"},
			want:     "/out/report.1.csv",
		},
		{
			name:     "counter skips taken suffixes",
			fileName: "/out/report.csv",
			taken:    []string{"/out/report.csv", "/out/report.1.csv", "/out/report.2.csv"},
			want:     "/out/report.3.csv",
		},
		{
			name:     "no extension",
			fileName: "/out/report",
			taken:    []string{"/out/report"},
			want:     "/out/report.1",
		},
		{
			name:     "dotted folder does not count as extension",
			fileName: "/out.d/report",
			taken:    []string{"/out.d/report"},
			want:     "/out.d/report.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(cfg *Config) { cfg.Overwrite = OverwriteSuffixBeforeExt })
			got, err := env.client.resolveConflict(tt.fileName, takenSet(tt.taken...))
			if err != nil {
				t.Fatalf("resolveConflict: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolved to %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveConflict_SuffixAfterExt(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		taken    []string
		want     string
	}{
		{
			name:     "first collision",
			fileName: "/out/report.csv",
			taken:    []string{"/out/report.csv"},
			want:     "/out/report.csv.1",
		},
		{
			name:     "counter skips taken suffixes",
			fileName: "/out/report.csv",
			taken:    []string{"/out/report.csv", "/out/report.csv.1"},
			want:     "/out/report.csv.2",
		},
		{
			name:     "no extension",
			fileName: "/out/report",
			taken:    []string{"/out/report"},
			want:     "/out/report.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(cfg *Config) { cfg.Overwrite = OverwriteSuffixAfterExt })
			got, err := env.client.resolveConflict(tt.fileName, takenSet(tt.taken...))
			if err != nil {
				t.Fatalf("resolveConflict: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolved to %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveConflict_ExistsErrorPropagates(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.Overwrite = OverwriteSuffixBeforeExt })
	boom := errors.New("stat failed")
	_, err := env.client.resolveConflict("/out/report.csv", func(string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped stat failure", err)
	}
}
