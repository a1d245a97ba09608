package lockedfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/wayfarerlabs/tripmind/agent/contract"
)

func TestWithLockSeedsMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "db.json")

	var seen []byte
	err := WithLock(context.Background(), path, time.Second, func(current []byte) ([]byte, error) {
		seen = append([]byte(nil), current...)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if string(seen) != "{}" {
		t.Fatalf("expected empty object seed, got %q", seen)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read seeded file: %v", err)
	}
	if string(onDisk) != "{}" {
		t.Fatalf("seeded file content = %q", onDisk)
	}
}

func TestWithLockWritesAtomically(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")

	err := WithLock(context.Background(), path, time.Second, func(current []byte) ([]byte, error) {
		return []byte(`{"a":1}`), nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(onDisk) != `{"a":1}` {
		t.Fatalf("file content = %q", onDisk)
	}
	if _, err := os.Stat(path + tempSuffix); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestWithLockNilPayloadSkipsWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"keep":true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := WithLock(context.Background(), path, time.Second, func(current []byte) ([]byte, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}

	onDisk, _ := os.ReadFile(path)
	if string(onDisk) != `{"keep":true}` {
		t.Fatalf("file mutated without payload: %q", onDisk)
	}
}

func TestWithLockPropagatesMutatorError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")
	boom := errors.New("boom")

	err := WithLock(context.Background(), path, time.Second, func(current []byte) ([]byte, error) {
		return []byte("ignored"), boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}

	onDisk, _ := os.ReadFile(path)
	if string(onDisk) != "{}" {
		t.Fatalf("file mutated after error: %q", onDisk)
	}
}

func TestWithLockTimesOutWhenHeldElsewhere(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	holder := flock.New(path + lockSuffix)
	if err := holder.Lock(); err != nil {
		t.Fatalf("pre-acquire lock: %v", err)
	}
	defer holder.Unlock() //nolint:errcheck

	err := WithLock(context.Background(), path, 100*time.Millisecond, func(current []byte) ([]byte, error) {
		t.Fatal("mutator must not run while lock is held elsewhere")
		return nil, nil
	})
	if !errors.Is(err, contract.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
}

func TestWithLockConcurrentIncrementsSumExactly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counter.json")
	const workers = 16
	const perWorker = 5

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				err := WithLock(context.Background(), path, 5*time.Second, func(current []byte) ([]byte, error) {
					counts := map[string]int{}
					if err := json.Unmarshal(current, &counts); err != nil {
						return nil, err
					}
					counts["n"]++
					return json.Marshal(counts)
				})
				if err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent WithLock() error = %v", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int{}
	if err := json.Unmarshal(onDisk, &counts); err != nil {
		t.Fatalf("decode final payload: %v", err)
	}
	if want := workers * perWorker; counts["n"] != want {
		t.Fatalf("lost updates: got %s, want %s", strconv.Itoa(counts["n"]), strconv.Itoa(want))
	}
}
