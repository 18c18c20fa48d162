// If you are AI: This file implements the writer copy engine entry point.
// The bound strategy publishes progress every chunk so the reader overlaps the copy.

package framebuffer

// Write copies src into the buffer starting at offset 0 and publishes it.
// Progress is published at every ChunkSize boundary and the final length is
// published unconditionally. A payload larger than the capacity is truncated.
// Returns true once the local copy completes; there is no partial-failure path.
func (fb *FrameBuffer) Write(src []byte) bool {
	if len(src) > len(fb.data) {
		src = src[:len(fb.data)]
	}
	fb.strategy.Copy(fb.data[:len(src)], src, fb.chunk, fb)
	return true
}
