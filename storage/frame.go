package storage

import "math"

// PageID names a logical page in the backing store
type PageID uint32

// InvalidPageID marks a frame that holds no page
const InvalidPageID PageID = math.MaxUint32

// Frame is a fixed buffer pool slot holding at most one page.
// A frame is created once per slot and reset in place on eviction, so the
// pointer handed out for a slot never changes.
type Frame struct {
	frameID  uint32
	pageID   PageID
	data     []byte
	isDirty  bool
	pinCount int32
}

func newFrame(frameID uint32) *Frame {
	return &Frame{
		frameID: frameID,
		pageID:  InvalidPageID,
	}
}

// FrameID returns the slot index of the frame
func (f *Frame) FrameID() uint32 {
	return f.frameID
}

// PageID returns the resident page ID, or InvalidPageID when empty
func (f *Frame) PageID() PageID {
	return f.pageID
}

// Data returns the page payload. Callers holding a pin may modify it in
// place and report the change through UnpinPage(id, true).
func (f *Frame) Data() []byte {
	return f.data
}

// SetData replaces the page payload
func (f *Frame) SetData(data []byte) {
	f.data = data
}

// PinCount returns the number of outstanding pins
func (f *Frame) PinCount() int32 {
	return f.pinCount
}

// IsDirty reports whether the payload differs from the backing store
func (f *Frame) IsDirty() bool {
	return f.isDirty
}

// IsEmpty reports whether the frame holds no page
func (f *Frame) IsEmpty() bool {
	return f.pageID == InvalidPageID
}

func (f *Frame) load(pageID PageID, data []byte) {
	f.pageID = pageID
	f.data = data
	f.isDirty = false
	f.pinCount = 1
}

func (f *Frame) reset() {
	f.pageID = InvalidPageID
	f.data = nil
	f.isDirty = false
	f.pinCount = 0
}
