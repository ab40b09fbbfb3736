package zone

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

var labelSanitizer = regexp.MustCompile(`[^\w-]`)

// SanitizeLabel strips everything but word characters, hyphen and underscore
// from a product label and truncates it to 20 characters, for use in clip
// and crop filenames.
func SanitizeLabel(label string) string {
	clean := labelSanitizer.ReplaceAllString(label, "")
	if len(clean) > 20 {
		clean = clean[:20]
	}
	return clean
}

// ClipName builds an evidence clip filename for one occupancy interval.
func ClipName(zoneIdx int, label string, ts time.Time, ext string) string {
	return fmt.Sprintf("zone%d_%s_%s%s", zoneIdx, SanitizeLabel(label), ts.Format("2006-01-02_15-04-05"), ext)
}

// FlushFunc receives a closed evidence buffer. Called on its own goroutine;
// failures must be handled (logged) inside, never returned to the tick loop.
type FlushFunc[F any] func(zoneIdx int, label string, frames []F)

// Recorder buffers evidence frames per zone index while a person is present.
// A buffer opens on entry, grows on every capture tick up to a bound, and is
// removed on exit: non-empty buffers are handed to the flush callback,
// empty ones are discarded.
//
// F is the frame type; the recorder never inspects frames, so callers that
// hold resource-backed frames supply a discard hook to release dropped ones.
type Recorder[F any] struct {
	mu        sync.Mutex
	buffers   map[int][]F
	maxFrames int
	flush     FlushFunc[F]
	discard   func(F)
}

// NewRecorder creates a recorder with a per-zone frame bound. discard may be
// nil when frames need no cleanup.
func NewRecorder[F any](maxFrames int, flush FlushFunc[F], discard func(F)) *Recorder[F] {
	if maxFrames < 1 {
		maxFrames = 1
	}
	return &Recorder[F]{
		buffers:   make(map[int][]F),
		maxFrames: maxFrames,
		flush:     flush,
		discard:   discard,
	}
}

// Open starts an empty buffer for a zone. Reopening an already-open zone is
// a no-op so a duplicate enter event cannot drop footage.
func (r *Recorder[F]) Open(zoneIdx int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buffers[zoneIdx]; !ok {
		r.buffers[zoneIdx] = make([]F, 0, 64)
	}
}

// AppendAll adds the current frame to every open buffer that has room.
// makeFrame is called once per receiving zone (each zone gets its own
// overlaid copy) and skipped entirely for full buffers, so bounded memory
// costs no allocations.
func (r *Recorder[F]) AppendAll(makeFrame func(zoneIdx int) F) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx, frames := range r.buffers {
		if len(frames) >= r.maxFrames {
			continue
		}
		r.buffers[idx] = append(frames, makeFrame(idx))
	}
}

// CloseZone removes the zone's buffer. Non-empty buffers are handed to the
// flush callback asynchronously; empty ones are dropped.
func (r *Recorder[F]) CloseZone(zoneIdx int, label string) {
	r.mu.Lock()
	frames, ok := r.buffers[zoneIdx]
	delete(r.buffers, zoneIdx)
	r.mu.Unlock()

	if !ok || len(frames) == 0 {
		return
	}
	go r.flush(zoneIdx, label, frames)
}

// Reset discards every open buffer without flushing. Used when the zone list
// is rebuilt wholesale and index-keyed footage no longer maps to anything.
func (r *Recorder[F]) Reset() {
	r.mu.Lock()
	buffers := r.buffers
	r.buffers = make(map[int][]F)
	r.mu.Unlock()

	if r.discard == nil {
		return
	}
	for _, frames := range buffers {
		for _, f := range frames {
			r.discard(f)
		}
	}
}

// Recording reports whether a buffer is open for the zone.
func (r *Recorder[F]) Recording(zoneIdx int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.buffers[zoneIdx]
	return ok
}

// OpenZones returns the indices with open buffers.
func (r *Recorder[F]) OpenZones() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.buffers))
	for idx := range r.buffers {
		out = append(out, idx)
	}
	return out
}

// BufferLen returns the current length of a zone's buffer, 0 if closed.
func (r *Recorder[F]) BufferLen(zoneIdx int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers[zoneIdx])
}
