package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"github.com/lixenwraith/cellpaint/terminal"
)

// ErrClosed is returned by a Recorder after Close
var ErrClosed = errors.New("capture closed")

// Recorder appends records to a log; safe for use by both scheduler loops
type Recorder struct {
	mu       sync.Mutex
	w        io.Writer
	closer   io.Closer
	enc      *json.Encoder
	session  string
	inputSeq uint64
	closed   bool

	now func() time.Time
}

// Open appends to the log at path, creating it when missing
func Open(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	r := NewRecorder(f)
	r.closer = f
	return r, nil
}

// NewRecorder records into w with a fresh session id
func NewRecorder(w io.Writer) *Recorder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Recorder{
		w:       w,
		enc:     enc,
		session: uuid.NewString(),
		now:     time.Now,
	}
}

// Session returns the id stamped on every record of this recorder
func (r *Recorder) Session() string {
	return r.session
}

// Input records one event read during the given interaction tick
func (r *Recorder) Input(tick uint64, ev terminal.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputSeq++
	return r.write(Record{
		Kind:  KindInput,
		Seq:   r.inputSeq,
		Tick:  tick,
		Event: FromEvent(ev),
	})
}

// Frame records a painted frame
func (r *Recorder) Frame(seq uint64, size terminal.Size, hash uint64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(Record{
		Kind:  KindFrame,
		Seq:   seq,
		Rows:  size.Rows,
		Cols:  size.Cols,
		Hash:  hash,
		Text:  text,
		Plain: ansi.Strip(text),
	})
}

// write stamps and encodes rec as one line; r.mu must be held
func (r *Recorder) write(rec Record) error {
	if r.closed {
		return ErrClosed
	}
	rec.Time = r.now().UTC()
	rec.Session = r.session
	if err := r.enc.Encode(&rec); err != nil {
		return fmt.Errorf("write capture record: %w", err)
	}
	return nil
}

// Close stops recording and closes the file opened by Open
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
