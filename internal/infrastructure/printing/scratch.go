package printing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"sync"
)

// ErrScratchReleased is returned when a released scratch area is used again
var ErrScratchReleased = errors.New("scratch area already released")

var scratchBuffers = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// encoderBuffers lets the PNG encoder reuse its internal state across items
type encoderBuffers struct {
	pool sync.Pool
}

func (p *encoderBuffers) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *encoderBuffers) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}

var pngEncoder = &png.Encoder{
	CompressionLevel: png.BestSpeed,
	BufferPool:       &encoderBuffers{},
}

// ScratchArea is the off-screen working memory of one export or print call.
// Each call acquires its own area and must Release it on every exit path.
// A ScratchArea is not safe for concurrent use.
type ScratchArea struct {
	buffers  []*bytes.Buffer
	encoded  int
	released bool
}

// AcquireScratch returns a fresh scratch area
func AcquireScratch() *ScratchArea {
	return &ScratchArea{}
}

// EncodeDataURI encodes img as PNG and returns it as a data URI
func (s *ScratchArea) EncodeDataURI(img image.Image) (string, error) {
	if s.released {
		return "", ErrScratchReleased
	}

	buf := scratchBuffers.Get().(*bytes.Buffer)
	buf.Reset()
	s.buffers = append(s.buffers, buf)

	if err := pngEncoder.Encode(buf, img); err != nil {
		return "", NewRenderError(ErrCodeRasterizeFailed, "PNG encoding failed", err)
	}
	s.encoded++
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodePNG encodes img as PNG and returns a copy of the bytes
func (s *ScratchArea) EncodePNG(img image.Image) ([]byte, error) {
	if s.released {
		return nil, ErrScratchReleased
	}

	buf := scratchBuffers.Get().(*bytes.Buffer)
	buf.Reset()
	s.buffers = append(s.buffers, buf)

	if err := pngEncoder.Encode(buf, img); err != nil {
		return nil, NewRenderError(ErrCodeRasterizeFailed, "PNG encoding failed", err)
	}
	s.encoded++
	return bytes.Clone(buf.Bytes()), nil
}

// Encoded is the number of images encoded in this area
func (s *ScratchArea) Encoded() int {
	return s.encoded
}

// Released reports whether Release has been called
func (s *ScratchArea) Released() bool {
	return s.released
}

// Release returns the buffers to the pool. It is idempotent.
func (s *ScratchArea) Release() {
	if s.released {
		return
	}
	for _, buf := range s.buffers {
		buf.Reset()
		scratchBuffers.Put(buf)
	}
	s.buffers = nil
	s.released = true
}
