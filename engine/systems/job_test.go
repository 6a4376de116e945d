package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewJobSystemValidates(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("zero workers: err = %v, want ErrNoWorkers", err)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, ErrNegativeChannelSize) {
		t.Errorf("negative channel: err = %v, want ErrNegativeChannelSize", err)
	}
}

func TestJobsRunCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	if err != nil {
		t.Fatalf("NewJobSystem: %s", err)
	}

	var completed, failed, finished atomic.Int32
	var wg sync.WaitGroup
	boom := errors.New("boom")
	for i := 0; i < 20; i++ {
		wg.Add(1)
		fail := i%4 == 0
		err := js.Submit(JobTask{
			Name: "count",
			OnStart: func() (any, error) {
				if fail {
					return nil, boom
				}
				return i, nil
			},
			OnComplete: func(any) { completed.Add(1) },
			OnFailure: func(err error) {
				if errors.Is(err, boom) {
					failed.Add(1)
				}
			},
			OnCompletionCallback: func() {
				finished.Add(1)
				wg.Done()
			},
		})
		if err != nil {
			t.Fatalf("Submit: %s", err)
		}
	}
	wg.Wait()

	if completed.Load() != 15 || failed.Load() != 5 || finished.Load() != 20 {
		t.Errorf("completed %d failed %d finished %d, want 15/5/20", completed.Load(), failed.Load(), finished.Load())
	}
	if err := js.Shutdown(); err != nil {
		t.Errorf("Shutdown: %s", err)
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	if err != nil {
		t.Fatalf("NewJobSystem: %s", err)
	}
	js.Shutdown()
	js.Shutdown()
	if err := js.Submit(JobTask{Name: "late"}); !errors.Is(err, ErrJobSystemClosed) {
		t.Errorf("Submit after Shutdown: err = %v, want ErrJobSystemClosed", err)
	}
}
