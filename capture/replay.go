package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lixenwraith/cellpaint/terminal"
)

// ReadAll decodes every record of a capture log
func ReadAll(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	var out []Record
	for line := 1; ; line++ {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("capture record %d: %w", line, err)
		}
		out = append(out, rec)
	}
}

// Session returns the records of one session, in log order
func Session(records []Record, id string) []Record {
	var out []Record
	for _, r := range records {
		if r.Session == id {
			out = append(out, r)
		}
	}
	return out
}

// Frames returns the frame records
func Frames(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Kind == KindFrame {
			out = append(out, r)
		}
	}
	return out
}

// Replayer feeds recorded input back tick by tick and captures what is written
// ReadInput call n returns the events recorded during tick n, so a page sees the same
// sequence of HandleKey and Refresh calls as in the recorded session
type Replayer struct {
	mu      sync.Mutex
	batches map[uint64][]terminal.Event
	last    uint64
	tick    uint64
	size    terminal.Size
	out     bytes.Buffer
}

// NewReplayer builds a replayer from the input records; rows and cols are the initial size
func NewReplayer(records []Record, rows, cols int) (*Replayer, error) {
	r := &Replayer{
		batches: make(map[uint64][]terminal.Event),
		size:    terminal.Size{Rows: rows, Cols: cols},
	}
	for _, rec := range records {
		if rec.Kind != KindInput || rec.Event == nil {
			continue
		}
		ev, err := rec.Event.Event()
		if err != nil {
			return nil, fmt.Errorf("input record %d: %w", rec.Seq, err)
		}
		r.batches[rec.Tick] = append(r.batches[rec.Tick], ev)
		r.last = max(r.last, rec.Tick)
	}
	return r, nil
}

// InitialSize returns the size of the first recorded frame, or fallback when there is none
func InitialSize(records []Record, fallback terminal.Size) terminal.Size {
	for _, rec := range records {
		if rec.Kind == KindFrame && rec.Rows > 0 && rec.Cols > 0 {
			return terminal.Size{Rows: rec.Rows, Cols: rec.Cols}
		}
	}
	return fallback
}

// ReadInput returns the next tick's batch; io.EOF once every recorded tick was replayed
func (r *Replayer) ReadInput(time.Duration) ([]terminal.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tick > r.last {
		return []terminal.Event{{Type: terminal.EventClosed}}, io.EOF
	}
	evs := r.batches[r.tick]
	delete(r.batches, r.tick)
	r.tick++

	for _, ev := range evs {
		if ev.Type == terminal.EventResize {
			r.size = terminal.Size{Rows: ev.Height, Cols: ev.Width}
		}
	}
	return evs, nil
}

// Write captures output
func (r *Replayer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Write(p)
}

// QuerySize returns the size as of the last replayed resize
func (r *Replayer) QuerySize() terminal.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Output returns a copy of everything written
func (r *Replayer) Output() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Clone(r.out.Bytes())
}

// Compare checks replayed frames against recorded ones with the same publish sequence
// Frames painted in only one of the runs are skipped; returns the number compared
func Compare(recorded, replayed []Record) (int, error) {
	want := make(map[uint64]Record)
	for _, r := range Frames(recorded) {
		want[r.Seq] = r
	}

	matched := 0
	for _, got := range Frames(replayed) {
		w, ok := want[got.Seq]
		if !ok {
			continue
		}
		if w.Text != got.Text {
			return matched, fmt.Errorf("frame %d differs: recorded %q, replayed %q", got.Seq, w.Plain, got.Plain)
		}
		matched++
	}
	return matched, nil
}
