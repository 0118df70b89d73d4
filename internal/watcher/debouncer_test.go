package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBatch(t *testing.T, d *Debouncer) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_CoalescesSamePath(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// A save burst: editors typically fire several writes per save
	for i := 0; i < 5; i++ {
		d.Add(FileEvent{Path: "handbook.md", Operation: OpModify})
	}

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_CreateThenDeleteCancels(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "scratch.md", Operation: OpCreate})
	d.Add(FileEvent{Path: "scratch.md", Operation: OpDelete})
	d.Add(FileEvent{Path: "kept.md", Operation: OpModify})

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, "kept.md", batch[0].Path)
}

func TestDebouncer_CreateThenModifyStaysCreate(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "new.md", Operation: OpCreate})
	d.Add(FileEvent{Path: "new.md", Operation: OpModify})

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

func TestDebouncer_DeleteThenCreateBecomesModify(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "swapped.md", Operation: OpDelete})
	d.Add(FileEvent{Path: "swapped.md", Operation: OpCreate})

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_DistinctPathsShareOneBatch(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.md", Operation: OpModify})
	d.Add(FileEvent{Path: "b.md", Operation: OpModify})
	d.Add(FileEvent{Path: "c.md", Operation: OpCreate})

	batch := collectBatch(t, d)
	assert.Len(t, batch, 3)
}

func TestDebouncer_StopIsIdempotent(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	d.Stop()
	d.Stop()

	// Adds after stop are dropped silently
	d.Add(FileEvent{Path: "late.md", Operation: OpModify})
	_, open := <-d.Output()
	assert.False(t, open)
}
