package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"app-registry-cms/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu      sync.Mutex
	synced  map[string]int
	failed  map[string]int
	dropped int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{synced: map[string]int{}, failed: map[string]int{}}
}

func (r *countingRecorder) RecordIndexSync(index, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed[op]++
		return
	}
	r.synced[op]++
}

func (r *countingRecorder) RecordIndexDropped(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped++
}

func (r *countingRecorder) RecordTransition(string, string) {}
func (r *countingRecorder) RecordHTTPStatus(int)            {}

type failingIndex struct {
	*MemoryIndex
}

func (failingIndex) Upsert(context.Context, string, string, interface{}) error {
	return errors.New("cluster unavailable")
}

// blockingIndex holds every write until release is closed.
type blockingIndex struct {
	*MemoryIndex
	release chan struct{}
}

func (b blockingIndex) Upsert(ctx context.Context, index, id string, doc interface{}) error {
	<-b.release
	return b.MemoryIndex.Upsert(ctx, index, id, doc)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDispatcherAppliesOperationsInOrder(t *testing.T) {
	idx := NewMemoryIndex()
	rec := newCountingRecorder()
	d := NewDispatcher(idx, 16, time.Second, quietLogger(), rec)
	defer d.Close()

	d.Upsert(MobileAppIndex, "1", MobileAppDocument{ID: 1, Name: "first"})
	d.Upsert(MobileAppIndex, "1", MobileAppDocument{ID: 1, Name: "second"})
	d.Upsert(MobileAppIndex, "2", MobileAppDocument{ID: 2})
	d.Delete(MobileAppIndex, "2")
	d.Flush()

	doc, ok := idx.Get(MobileAppIndex, "1")
	require.True(t, ok)
	assert.Equal(t, "second", doc["name"])
	assert.Equal(t, 1, idx.Count(MobileAppIndex))
	assert.Equal(t, 3, rec.synced["upsert"])
	assert.Equal(t, 1, rec.synced["delete"])
}

func TestDispatcherFlushWhileEnqueueing(t *testing.T) {
	idx := NewMemoryIndex()
	d := NewDispatcher(idx, 512, time.Second, quietLogger(), nil)
	defer d.Close()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprint(w*50 + i)
				d.Upsert(MobileAppIndex, id, MobileAppDocument{Name: id})
				d.Flush()
			}
		}(w)
	}
	wg.Wait()
	d.Flush()

	assert.Equal(t, 200, idx.Count(MobileAppIndex))
}

func TestDispatcherCountsFailures(t *testing.T) {
	rec := newCountingRecorder()
	d := NewDispatcher(failingIndex{NewMemoryIndex()}, 4, time.Second, quietLogger(), rec)
	defer d.Close()

	d.Upsert(GalleryIndex, "9", GalleryDocument{ID: 9})
	d.Flush()

	assert.Equal(t, 1, rec.failed["upsert"])
	assert.Zero(t, rec.synced["upsert"])
}

func TestDispatcherDropsWhenQueueIsFull(t *testing.T) {
	idx := blockingIndex{MemoryIndex: NewMemoryIndex(), release: make(chan struct{})}
	rec := newCountingRecorder()
	d := NewDispatcher(idx, 1, time.Second, quietLogger(), rec)

	// the worker takes the first operation and blocks, the second fills the queue
	d.Upsert(MobileAppIndex, "1", MobileAppDocument{ID: 1})
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	d.Upsert(MobileAppIndex, "2", MobileAppDocument{ID: 2})
	d.Upsert(MobileAppIndex, "3", MobileAppDocument{ID: 3})

	close(idx.release)
	d.Close()

	assert.Equal(t, 1, rec.dropped)
	assert.Equal(t, 2, idx.Count(MobileAppIndex))
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	idx := NewMemoryIndex()
	rec := newCountingRecorder()
	d := NewDispatcher(idx, 4, 0, quietLogger(), rec)
	d.Close()
	d.Close()

	d.Upsert(MobileAppIndex, "1", MobileAppDocument{ID: 1})
	d.Flush()

	assert.Equal(t, 1, rec.dropped)
	assert.Zero(t, idx.Count(MobileAppIndex))
}

func TestIndexSynchronizerUsesPrefix(t *testing.T) {
	idx := NewMemoryIndex()
	d := NewDispatcher(idx, 8, time.Second, quietLogger(), nil)
	defer d.Close()
	syncer := NewIndexSynchronizer(d, "test_")

	draftID := uint(5)
	syncer.MobileAppSaved(&models.MobileApp{
		ID:       6,
		DraftID:  &draftID,
		Name:     "Parks",
		Status:   models.StatusPublishRequested,
		Agencies: []models.Agency{{Name: "NPS"}, {Name: "DOI"}},
		Users:    []models.User{{Email: "a@example.gov"}},
		Versions: []models.MobileAppVersion{{Platform: "iOS"}, {Platform: "Android"}},
	})
	syncer.GallerySaved(&models.Gallery{ID: 2, Name: "Outdoors", Status: models.StatusArchived})
	syncer.GalleryDeleted(2)
	d.Flush()

	doc, ok := idx.Get("test_"+MobileAppIndex, "6")
	require.True(t, ok)
	assert.Equal(t, "NPS, DOI", doc["agencies"])
	assert.Equal(t, "iOS, Android", doc["platform"])
	assert.Equal(t, "Publish requested", doc["status"])
	assert.EqualValues(t, 5, doc["draft_id"])
	assert.Zero(t, idx.Count("test_"+GalleryIndex))
}
