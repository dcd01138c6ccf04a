package mqtt

import (
	"sync"

	"github.com/sweeney/boilerstat/internal/logic"
)

// FakeClient records published messages for test assertions.
// Safe for concurrent use.
type FakeClient struct {
	mu sync.Mutex

	// Readings contains all readings that were published.
	Readings []logic.Reading

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishReading.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// OnControl receives payloads passed to Deliver.
	OnControl func(payload []byte)
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

// PublishReading records the reading.
func (f *FakeClient) PublishReading(r logic.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatReading(r)
	if err != nil {
		return err
	}
	f.Readings = append(f.Readings, r)
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Deliver simulates an inbound control message.
func (f *FakeClient) Deliver(payload []byte) {
	if f.OnControl != nil {
		f.OnControl(payload)
	}
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// SetConnected changes the connection state.
func (f *FakeClient) SetConnected(v bool) {
	f.mu.Lock()
	f.Connected = v
	f.mu.Unlock()
}

// SetPublishError changes the error returned by PublishReading.
func (f *FakeClient) SetPublishError(err error) {
	f.mu.Lock()
	f.PublishError = err
	f.mu.Unlock()
}

// PublishedReadings returns a copy of the recorded readings.
func (f *FakeClient) PublishedReadings() []logic.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logic.Reading(nil), f.Readings...)
}

// Reset clears recorded messages.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Readings = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
