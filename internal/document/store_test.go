package document

import (
	"errors"
	"sync"
	"testing"

	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/outline"
)

func TestStoreNotReady(t *testing.T) {
	s := NewStore()
	if s.Ready() {
		t.Error("empty store reports ready")
	}
	noop := func(*Document) error { return nil }
	if err := s.View(noop); !errors.Is(err, ErrNotReady) {
		t.Errorf("View() = %v, want ErrNotReady", err)
	}
	if err := s.Update(noop); !errors.Is(err, ErrNotReady) {
		t.Errorf("Update() = %v, want ErrNotReady", err)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.Set(testDocument(t))
	if !s.Ready() {
		t.Fatal("store not ready after Set")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.View(func(d *Document) error {
				_ = d.View(ViewOptions{Text: true})
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			_ = s.Update(func(d *Document) error {
				_, err := d.InsertMedia(outline.RootID, media.KindFigure, "x.png", "")
				return err
			})
		}()
	}
	wg.Wait()

	var n int
	_ = s.View(func(d *Document) error {
		n = len(d.Media())
		return nil
	})
	if n != 11 {
		t.Errorf("expected 11 assets after concurrent inserts, got %d", n)
	}
}

func TestStoreUpdateError(t *testing.T) {
	s := NewStore()
	s.Set(testDocument(t))
	err := s.Update(func(d *Document) error {
		_, err := d.SetMediaEnabled("Figure42", false)
		return err
	})
	if !errors.Is(err, media.ErrMediaNotFound) {
		t.Errorf("Update() = %v, want ErrMediaNotFound", err)
	}
}
