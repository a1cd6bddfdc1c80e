package auditlog

import (
	"sync"
	"time"

	"github.com/Daskott/swiftly/colors"
	"github.com/Daskott/swiftly/shared"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrWriterStopped = errors.New("audit log writer is stopped")

type appendRequest struct {
	entry shared.LogEntry
	done  chan error
}

// Writer serializes every read-modify-write of the log through one goroutine,
// so concurrent alerts can never drop each other's entries.
type Writer struct {
	store    *FileStore
	logg     *zap.SugaredLogger
	queue    chan appendRequest
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewWriter(store *FileStore, logg *zap.SugaredLogger) *Writer {
	return &Writer{
		store:    store,
		logg:     logg,
		queue:    make(chan appendRequest),
		stopChan: make(chan struct{}),
	}
}

// Start starts the writer loop
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return
	}
	w.started = true

	w.wg.Add(1)
	go w.loop()
}

// Stop waits for the entry in flight, if any, & stops the writer loop.
func (w *Writer) Stop() {
	w.mu.Lock()
	if !w.started || w.stopped {
		w.stopped = true
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
}

// Append adds entry to the log & blocks until it has been written or failed.
func (w *Writer) Append(entry shared.LogEntry) error {
	w.mu.RLock()
	running := w.started && !w.stopped
	w.mu.RUnlock()

	if !running {
		return ErrWriterStopped
	}

	req := appendRequest{entry: entry, done: make(chan error, 1)}
	select {
	case w.queue <- req:
		return <-req.done
	case <-w.stopChan:
		return ErrWriterStopped
	}
}

// Entries returns a snapshot of the log.
func (w *Writer) Entries() ([]shared.LogEntry, error) {
	return w.store.Load()
}

func (w *Writer) loop() {
	defer w.wg.Done()

	w.logInfof("Starting audit log writer for %s", w.store.Path())
	for {
		select {
		case <-w.stopChan:
			w.logInfof("Stopping audit log writer")
			return
		case req := <-w.queue:
			req.done <- w.append(req.entry)
		}
	}
}

func (w *Writer) append(entry shared.LogEntry) error {
	entries, err := w.store.Load()
	if errors.Is(err, ErrCorrupt) {
		dest, qErr := w.store.Quarantine(time.Now())
		if qErr != nil {
			return qErr
		}

		w.logWarnf("%v - moved to %s, starting a new log", err, dest)
		entries = []shared.LogEntry{}
		err = nil
	}

	if err != nil {
		return err
	}

	return w.store.Write(append(entries, entry))
}

func (w *Writer) logInfof(template string, args ...interface{}) {
	w.logg.Infof(colors.Yellow("[audit log] ")+template, args...)
}

func (w *Writer) logWarnf(template string, args ...interface{}) {
	w.logg.Warnf(colors.Red("[audit log] ")+template, args...)
}
