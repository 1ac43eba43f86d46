package global

import (
	"sync"

	"github.com/gogpu/hub/id"
)

// submission holds the backend command buffers of one queue submission
// until the GPU has finished with them.
type submission struct {
	device  id.DeviceID
	index   uint64
	release []func()
}

// inflight tracks submitted command buffers whose handles are already gone
// from the hub but whose backend objects are still in use by the GPU.
type inflight struct {
	mu      sync.Mutex
	pending []submission
}

func (q *inflight) track(device id.DeviceID, index uint64, release []func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, submission{device: device, index: index, release: release})
}

// triage releases every submission on device with index <= completed and
// returns how many it released.
func (q *inflight) triage(device id.DeviceID, completed uint64) int {
	return q.releaseIf(func(s submission) bool {
		return s.device == device && s.index <= completed
	})
}

// flush releases every submission on device regardless of progress. The
// caller must have waited for the device to go idle.
func (q *inflight) flush(device id.DeviceID) int {
	return q.releaseIf(func(s submission) bool { return s.device == device })
}

func (q *inflight) len(device id.DeviceID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, s := range q.pending {
		if s.device == device {
			n++
		}
	}
	return n
}

func (q *inflight) releaseIf(done func(submission) bool) int {
	q.mu.Lock()
	var ready []submission
	kept := q.pending[:0]
	for _, s := range q.pending {
		if done(s) {
			ready = append(ready, s)
		} else {
			kept = append(kept, s)
		}
	}
	clear(q.pending[len(kept):])
	q.pending = kept
	q.mu.Unlock()

	// Backend calls run outside the lock.
	for _, s := range ready {
		for _, fn := range s.release {
			fn()
		}
	}
	return len(ready)
}
