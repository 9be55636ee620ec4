package pipeline

import (
	"context"
	"errors"
	"testing"
)

// mockStage is a minimal Stage implementation for testing.
type mockStage struct {
	name string
	deps []string
	ran  *[]string
}

func (m *mockStage) Name() string           { return m.name }
func (m *mockStage) Dependencies() []string { return m.deps }
func (m *mockStage) Description() string    { return "Mock stage " + m.name }

func (m *mockStage) Run(_ context.Context, _ *State) error {
	if m.ran != nil {
		*m.ran = append(*m.ran, m.name)
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&mockStage{name: "stage1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := r.Register(&mockStage{name: "stage1"})
	if !errors.Is(err, ErrStageAlreadyRegistered) {
		t.Errorf("Register() duplicate error = %v, want ErrStageAlreadyRegistered", err)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockStage{name: "stage1"})

	got, ok := r.Get("stage1")
	if !ok || got.Name() != "stage1" {
		t.Errorf("Get(stage1) = %v, %v", got, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should return false")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&mockStage{name: "b"})
	_ = r.Register(&mockStage{name: "a"})

	names := r.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names() = %v, want registration order [b a]", names)
	}
}

func TestRegistry_Ordered(t *testing.T) {
	tests := []struct {
		name    string
		stages  []*mockStage
		want    []string
		wantErr error
	}{
		{
			name:   "no dependencies keeps registration order",
			stages: []*mockStage{{name: "a"}, {name: "b"}, {name: "c"}},
			want:   []string{"a", "b", "c"},
		},
		{
			name: "linear chain registered backwards",
			stages: []*mockStage{
				{name: "c", deps: []string{"b"}},
				{name: "b", deps: []string{"a"}},
				{name: "a"},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "diamond",
			stages: []*mockStage{
				{name: "a"},
				{name: "b", deps: []string{"a"}},
				{name: "c", deps: []string{"a"}},
				{name: "d", deps: []string{"b", "c"}},
			},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name:    "missing dependency",
			stages:  []*mockStage{{name: "a", deps: []string{"ghost"}}},
			wantErr: ErrStageNotFound,
		},
		{
			name: "cycle",
			stages: []*mockStage{
				{name: "a", deps: []string{"b"}},
				{name: "b", deps: []string{"a"}},
			},
			wantErr: ErrDependencyCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for _, s := range tt.stages {
				if err := r.Register(s); err != nil {
					t.Fatalf("Register() error = %v", err)
				}
			}

			got, err := r.Ordered()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Ordered() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Ordered() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Ordered() returned %d stages, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.Name() != tt.want[i] {
					t.Errorf("Ordered()[%d] = %s, want %s", i, s.Name(), tt.want[i])
				}
			}
		})
	}
}
