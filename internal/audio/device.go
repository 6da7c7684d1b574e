package audio

import (
	"context"
	"errors"
	"sync"
)

var ErrDeviceBusy = errors.New("capture device busy")
var ErrNotCapturing = errors.New("recorder not capturing")

// Device is the shared capture hardware. At most one Lease exists at a time;
// whoever holds it owns the microphone until the lease is closed. This
// replaces the original client's module-level audio singletons with an
// explicitly owned handle.
type Device struct {
	mu   sync.Mutex
	held bool
}

func NewDevice() *Device {
	return &Device{}
}

func (d *Device) Acquire() (*Lease, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.held {
		return nil, ErrDeviceBusy
	}
	d.held = true
	return &Lease{dev: d}, nil
}

// Lease is a scoped grant of the device. Close is idempotent.
type Lease struct {
	dev  *Device
	once sync.Once
}

func (l *Lease) Close() {
	l.once.Do(func() {
		l.dev.mu.Lock()
		l.dev.held = false
		l.dev.mu.Unlock()
	})
}

// TranscriptFunc produces the recognized text for the current capture. The
// actual speech recognition lives outside this core; the client plugs in
// whatever recognizer the platform provides.
type TranscriptFunc func(ctx context.Context) (string, error)

// Recorder implements the capture orchestrator's recorder contract on top of
// an exclusively leased Device.
type Recorder struct {
	dev *Device
	fn  TranscriptFunc

	mu    sync.Mutex
	lease *Lease
	ctx   context.Context
}

func NewRecorder(dev *Device, fn TranscriptFunc) *Recorder {
	return &Recorder{dev: dev, fn: fn}
}

func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lease, err := r.dev.Acquire()
	if err != nil {
		return err
	}
	r.lease = lease
	r.ctx = ctx
	return nil
}

func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	lease := r.lease
	ctx := r.ctx
	r.mu.Unlock()
	if lease == nil {
		return "", ErrNotCapturing
	}
	return r.fn(ctx)
}

// Release returns the device. Safe to call on any path, including after a
// failed Start or repeatedly.
func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lease != nil {
		r.lease.Close()
		r.lease = nil
		r.ctx = nil
	}
}
