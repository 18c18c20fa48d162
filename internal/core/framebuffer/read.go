// If you are AI: This file implements the reader-side copy variants.
// Every variant waits for the bytes it is about to touch before touching them,
// so a reader can start consuming a frame while the writer is still copying it.

package framebuffer

// ReadLinear copies size contiguous bytes from offset 0 into dst.
// The copy advances in chunk-sized steps, each waiting only for its own end offset.
// Returns false if dst or the buffer cannot hold size bytes, or a wait stalls.
func (fb *FrameBuffer) ReadLinear(dst []byte, size int) bool {
	if size < 0 || size > len(dst) || size > len(fb.data) {
		return false
	}

	rp := 0
	for rp < size {
		n := size - rp
		if n > fb.chunk {
			n = fb.chunk
		}
		if !fb.Wait(rp + n) {
			return false
		}
		copy(dst[rp:rp+n], fb.data[rp:rp+n])
		rp += n
	}
	return true
}

// ReadPitched copies height rows of width*bpp bytes into dst.
// The source row stride is srcPitch and the destination row stride is dstPitch.
// When both pitches match the rows are copied as one linear run.
// Returns false on invalid geometry or when a row wait stalls.
func (fb *FrameBuffer) ReadPitched(dst []byte, dstPitch, height, width, bpp, srcPitch int) bool {
	lineWidth := width * bpp
	if !fb.validRows(height, lineWidth, srcPitch) {
		return false
	}
	if height == 0 {
		return true
	}
	if dstPitch < lineWidth || (height-1)*dstPitch+lineWidth > len(dst) {
		return false
	}

	if dstPitch == srcPitch {
		size := height * srcPitch
		if size > len(dst) || size > len(fb.data) {
			// Final row carries no padding in a tightly sized destination
			size = (height-1)*srcPitch + lineWidth
		}
		return fb.ReadLinear(dst, size)
	}

	rp, wp := 0, 0
	for y := 0; y < height; y++ {
		if !fb.Wait(rp + lineWidth) {
			return false
		}
		copy(dst[wp:wp+lineWidth], fb.data[rp:rp+lineWidth])
		rp += srcPitch
		wp += dstPitch
	}
	return true
}

// ReadFunc hands each of height rows to fn as soon as the row is published.
// Row slices alias the shared region and must not be retained after fn returns.
// Aborts on the first row for which fn reports false, or on a stalled wait,
// without waiting for or visiting later rows.
func (fb *FrameBuffer) ReadFunc(height, width, bpp, pitch int, fn func(row []byte) bool) bool {
	lineWidth := width * bpp
	if fn == nil || !fb.validRows(height, lineWidth, pitch) {
		return false
	}

	rp := 0
	for y := 0; y < height; y++ {
		if !fb.Wait(rp + lineWidth) {
			return false
		}
		if !fn(fb.data[rp : rp+lineWidth : rp+lineWidth]) {
			return false
		}
		rp += pitch
	}
	return true
}

// validRows reports whether height rows of lineWidth bytes at the given pitch fit the buffer.
func (fb *FrameBuffer) validRows(height, lineWidth, pitch int) bool {
	if height < 0 || lineWidth < 0 || pitch < lineWidth {
		return false
	}
	if height == 0 {
		return true
	}
	return (height-1)*pitch+lineWidth <= len(fb.data)
}
