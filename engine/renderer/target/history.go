package target

// MaxHistoryFrames is the saturation point of the history frame counter.
const MaxHistoryFrames = 120

// History is the double-buffered temporal history. Read and Write always address different
// targets; Advance swaps them.
type History struct {
	targets    [2]RenderTarget
	readIndex  int
	valid      bool
	frameCount int
}

// Allocated reports whether both history targets exist.
func (h *History) Allocated() bool {
	return !h.targets[0].Texture.IsZero() && !h.targets[1].Texture.IsZero()
}

// Read returns the target holding the previous frame's resolved image.
func (h *History) Read() RenderTarget {
	return h.targets[h.readIndex]
}

// Write returns the target the current frame resolves into.
func (h *History) Write() RenderTarget {
	return h.targets[1-h.readIndex]
}

// ReadIndex returns the index of the read target, 0 or 1.
func (h *History) ReadIndex() int {
	return h.readIndex
}

// Valid reports whether Read holds usable history.
func (h *History) Valid() bool {
	return h.valid
}

// FrameCount returns the number of frames accumulated since the history was last seeded.
func (h *History) FrameCount() int {
	return h.frameCount
}

// Invalidate forces the next temporal pass to seed from the current frame.
func (h *History) Invalidate() {
	h.valid = false
	h.frameCount = 0
}

// Advance records one temporal pass into Write and swaps the targets. A pass over invalid history
// is a seed and starts the count at 1.
func (h *History) Advance() {
	if h.valid {
		h.frameCount = min(h.frameCount+1, MaxHistoryFrames)
	} else {
		h.valid = true
		h.frameCount = 1
	}
	h.readIndex = 1 - h.readIndex
}

// reset returns the history to its initial state without targets.
func (h *History) reset() {
	*h = History{}
}
