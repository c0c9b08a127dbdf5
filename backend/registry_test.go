package backend_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"todobin/backend"
)

type nopStore struct{ opts backend.Options }

func (nopStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (nopStore) Set(context.Context, string, string) error         { return nil }
func (nopStore) Delete(context.Context, string) error              { return nil }
func (nopStore) Close() error                                      { return nil }

// TestRegistryOrdersByPriority verifies Names() ordering
func TestRegistryOrdersByPriority(t *testing.T) {
	ctor := func(o backend.Options) (backend.Store, error) { return nopStore{o}, nil }
	backend.RegisterWithPriority("zz-late", ctor, 500)
	backend.RegisterWithPriority("aa-early", ctor, 1)
	t.Cleanup(func() {
		backend.Unregister("zz-late")
		backend.Unregister("aa-early")
	})

	names := backend.Names()
	if names[0] != "aa-early" {
		t.Errorf("Names()[0] = %q, want aa-early", names[0])
	}
	if names[len(names)-1] != "zz-late" {
		t.Errorf("last name = %q, want zz-late", names[len(names)-1])
	}
}

// TestOpenPassesOptions verifies constructor receives options
func TestOpenPassesOptions(t *testing.T) {
	backend.Register("test-opts", func(o backend.Options) (backend.Store, error) { return nopStore{o}, nil })
	t.Cleanup(func() { backend.Unregister("test-opts") })

	s, err := backend.Open("test-opts", backend.Options{Path: "x.db", Dir: "d"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := s.(nopStore).opts
	if !reflect.DeepEqual(got, backend.Options{Path: "x.db", Dir: "d"}) {
		t.Errorf("opts = %+v", got)
	}
}

// TestOpenUnknownBackend verifies unknown names fail with the available list
func TestOpenUnknownBackend(t *testing.T) {
	_, err := backend.Open("does-not-exist", backend.Options{})
	if err == nil || !strings.Contains(err.Error(), "does-not-exist") {
		t.Errorf("Open(unknown) error = %v", err)
	}
}

// TestOpenWrapsConstructorError verifies constructor errors are wrapped
func TestOpenWrapsConstructorError(t *testing.T) {
	cause := errors.New("boom")
	backend.Register("test-fail", func(backend.Options) (backend.Store, error) { return nil, cause })
	t.Cleanup(func() { backend.Unregister("test-fail") })

	_, err := backend.Open("test-fail", backend.Options{})
	if !errors.Is(err, cause) {
		t.Errorf("Open error = %v, want wrapping %v", err, cause)
	}
}
