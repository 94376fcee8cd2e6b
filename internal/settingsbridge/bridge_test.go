package settingsbridge

import (
	"sync"
	"testing"

	"github.com/sendmebits/flowmod/internal/model"
)

func TestGetReturnsPublishedSnapshot(t *testing.T) {
	b := New(model.Defaults())
	if b.Get().SmoothScrollLevel != model.Smooth {
		t.Fatalf("expected default smooth level")
	}

	updated := model.Defaults()
	updated.ReverseScroll = true
	b.Publish(updated)

	if !b.Get().ReverseScroll {
		t.Fatal("expected published snapshot to be visible")
	}
}

func TestConcurrentGetDuringPublish(t *testing.T) {
	b := New(model.Defaults())
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = b.Get()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Publish(model.Defaults())
		}
	}()
	wg.Wait()
}
