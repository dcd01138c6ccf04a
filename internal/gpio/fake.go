package gpio

import (
	"errors"
	"sync"

	"github.com/sweeney/boilerstat/internal/logic"
)

// FakeReader is a test double that returns scripted raw GPIO values.
// Safe for concurrent use.
type FakeReader struct {
	mu sync.Mutex

	// Samples contains scripted raw levels to return.
	// Each call to ReadRaw() consumes the next sample.
	Samples []logic.RawLevels

	// index tracks current position in Samples
	index int

	// Reads counts calls to ReadRaw
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadRaw()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []logic.RawLevels) *FakeReader {
	return &FakeReader{Samples: samples}
}

// ReadRaw returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) ReadRaw() (logic.RawLevels, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Reads++
	if f.ReadError != nil {
		return logic.RawLevels{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.RawLevels{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// SetError changes the error returned by ReadRaw.
func (f *FakeReader) SetError(err error) {
	f.mu.Lock()
	f.ReadError = err
	f.mu.Unlock()
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.mu.Lock()
	f.index = 0
	f.Reads = 0
	f.Closed = false
	f.mu.Unlock()
}

// FakeOutput records indicator levels. Safe for concurrent use.
type FakeOutput struct {
	mu       sync.Mutex
	levels   []bool
	closed   bool
	SetError error
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.levels = append(f.levels, on)
	return nil
}

// Levels returns a copy of every level set so far.
func (f *FakeOutput) Levels() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.levels...)
}

// Close marks the output closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
