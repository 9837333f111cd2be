package di

import (
	"testing"

	"go.uber.org/dig"
)

// Test types for dependency injection
type store struct {
	Name string
}

type service struct {
	Store *store
	Path  string
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name:    "creates container with no providers",
			opts:    nil,
			wantErr: false,
		},
		{
			name: "creates container with single provider",
			opts: []Option{
				WithProviders(func() *store {
					return &store{Name: "test-store"}
				}),
			},
			wantErr: false,
		},
		{
			name: "creates container with multiple providers",
			opts: []Option{
				WithProviders(
					func() *store {
						return &store{Name: "prod-store"}
					},
					func(s *store, path ConfigPath) *service {
						return &service{Store: s, Path: string(path)}
					},
				),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := New(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if container == nil && !tt.wantErr {
				t.Error("New() returned nil container without error")
			}
		})
	}
}

func TestNew_InvalidProvider(t *testing.T) {
	// Attempting to provide the same type twice should fail
	_, err := New(
		WithProviders(
			func() *store {
				return &store{Name: "one"}
			},
			func() *store {
				return &store{Name: "two"}
			},
		),
	)

	if err == nil {
		t.Error("New() should return error when providing duplicate types")
	}
}

func TestNew_ProvidesConfigPath(t *testing.T) {
	container, err := New(WithConfigPath("pipeline.yml"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	var got ConfigPath
	err = container.Invoke(func(path ConfigPath) {
		got = path
	})
	if err != nil {
		t.Fatalf("Invoke() unexpected error: %v", err)
	}

	if got != "pipeline.yml" {
		t.Errorf("ConfigPath = %v, want %v", got, "pipeline.yml")
	}
}

func TestMustGet(t *testing.T) {
	t.Run("successfully retrieves dependency", func(t *testing.T) {
		container, err := New(
			WithProviders(func() *store {
				return &store{Name: "test-store"}
			}),
		)
		if err != nil {
			t.Fatalf("New() unexpected error: %v", err)
		}

		s := MustGet[*store](container)
		if s == nil {
			t.Error("MustGet() returned nil")
		}
		if s.Name != "test-store" {
			t.Errorf("store.Name = %v, want %v", s.Name, "test-store")
		}
	})

	t.Run("panics when dependency not found", func(t *testing.T) {
		container, err := New()
		if err != nil {
			t.Fatalf("New() unexpected error: %v", err)
		}

		defer func() {
			if r := recover(); r == nil {
				t.Error("MustGet() did not panic")
			}
		}()

		_ = MustGet[*store](container)
	})
}

func TestWithProviders_ChainsCalls(t *testing.T) {
	container, err := New(
		WithProviders(func() *store {
			return &store{Name: "test-store"}
		}),
		WithProviders(func(s *store, path ConfigPath) *service {
			return &service{Store: s, Path: string(path)}
		}),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	svc := MustGet[*service](container)
	if svc.Store == nil || svc.Store.Name != "test-store" {
		t.Errorf("service.Store = %+v, want name %v", svc.Store, "test-store")
	}
}

func TestContainer_Interface(t *testing.T) {
	var _ Container = (*dig.Container)(nil)
}
