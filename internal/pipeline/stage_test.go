package pipeline

import (
	"path/filepath"
	"testing"
)

func TestOutputsExist(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "a.bam")
	touch(t, present)
	absent := filepath.Join(dir, "b.bam")

	tests := []struct {
		name    string
		outputs []string
		want    bool
	}{
		{"no declared outputs never counts as done", nil, false},
		{"all present", []string{present}, true},
		{"one absent", []string{present, absent}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stage{Name: "s", Outputs: tt.outputs}
			if got := s.Completed(); got != tt.want {
				t.Errorf("Completed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageCustomCheck(t *testing.T) {
	called := false
	s := Stage{
		Name:    "custom",
		Outputs: []string{"/does/not/exist"},
		Check:   func(Stage) bool { called = true; return true },
	}
	if !s.Completed() {
		t.Errorf("custom check result ignored")
	}
	if !called {
		t.Errorf("custom check not invoked")
	}
}
