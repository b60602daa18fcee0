package subscription

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type failingStore struct {
	ids  []int64
	fail bool
}

func (s *failingStore) Load() ([]int64, error) { return s.ids, nil }

func (s *failingStore) Save(ids []int64) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.ids = append([]int64(nil), ids...)
	return nil
}

func newFileRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subscribers.json")
	r, err := NewRegistry(NewFileStore(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	return r, path
}

func TestRegistry_RoundTripRestoresSet(t *testing.T) {
	r, path := newFileRegistry(t)
	if _, err := r.Subscribe(111); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)

	if ok, err := r.Subscribe(222); !ok || err != nil {
		t.Fatalf("subscribe 222: %v %v", ok, err)
	}
	if ok, err := r.Unsubscribe(222); !ok || err != nil {
		t.Fatalf("unsubscribe 222: %v %v", ok, err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Errorf("expected persisted set restored\nbefore: %s\nafter:  %s", before, after)
	}

	reloaded, err := NewRegistry(NewFileStore(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.List(); len(got) != 1 || got[0] != 111 {
		t.Errorf("expected [111] after reload, got %v", got)
	}
}

func TestRegistry_DoubleSubscribe(t *testing.T) {
	r, _ := newFileRegistry(t)
	first, err := r.Subscribe(42)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Subscribe(42)
	if err != nil {
		t.Fatal(err)
	}
	if !first || second {
		t.Errorf("expected (true, false), got (%v, %v)", first, second)
	}
	if r.Len() != 1 {
		t.Errorf("expected one subscriber, got %d", r.Len())
	}
	if ok, _ := r.Unsubscribe(7); ok {
		t.Error("unsubscribing an unknown id should report false")
	}
}

func TestRegistry_PersistenceFailureKeepsState(t *testing.T) {
	store := &failingStore{ids: []int64{1}}
	r, err := NewRegistry(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	store.fail = true

	if _, err := r.Subscribe(2); !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
	if r.Contains(2) {
		t.Error("failed subscribe must not change the in-memory set")
	}
	if _, err := r.Unsubscribe(1); !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
	if !r.Contains(1) {
		t.Error("failed unsubscribe must not change the in-memory set")
	}
}

func TestRegistry_ConcurrentSubscribe(t *testing.T) {
	r, path := newFileRegistry(t)
	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := r.Subscribe(id); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	list := r.List()
	if len(list) != 50 {
		t.Fatalf("expected 50 subscribers, got %d", len(list))
	}
	for i, id := range list {
		if id != int64(i+1) {
			t.Fatalf("expected ascending list, got %v", list)
		}
	}
	ids, err := NewFileStore(path).Load()
	if err != nil || len(ids) != 50 {
		t.Errorf("expected 50 persisted ids, got %d (%v)", len(ids), err)
	}
}

func TestFileStore_MissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	ids, err := NewFileStore(filepath.Join(dir, "nope.json")).Load()
	if err != nil || len(ids) != 0 {
		t.Errorf("missing file should load empty, got %v %v", ids, err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	ids, err = NewFileStore(bad).Load()
	if err != nil || len(ids) != 0 {
		t.Errorf("malformed file should load empty, got %v %v", ids, err)
	}
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "subs.json"))
	if err := s.Save([]int64{3, 1, 2}); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the subscriber file, found %d entries", len(entries))
	}
	ids, _ := s.Load()
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("expected sorted [1 2 3], got %v", ids)
	}
}
