package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"iter"

	"github.com/Iron-Ham/hivecouncil/internal/errors"
	"github.com/tidwall/gjson"
)

// DataPrefix is the marker in front of every payload line.
const DataPrefix = "data:"

// DefaultMaxRecordBytes bounds the reassembly buffer for a single record.
const DefaultMaxRecordBytes = 1 << 20

// SkipFunc receives every record the decoder drops. The error is always a
// *errors.ProtocolError.
type SkipFunc func(err error)

// Decoder turns a chunked byte stream into typed events.
//
// Records are blocks of lines terminated by a blank line. Payload lines begin
// with "data:"; several payload lines in one record are joined with "\n".
// An "event:" line names the type when the JSON has none. Comment lines
// (leading ':') and other fields are ignored.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	scanner  *bufio.Scanner
	maxBytes int
	onSkip   SkipFunc

	line    int
	data    bytes.Buffer
	hasData bool
	name    string
	skipped int
	err     error
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxRecordBytes sets the reassembly limit. Values <= 0 keep the default.
func WithMaxRecordBytes(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// WithSkipFunc registers a callback for dropped records.
func WithSkipFunc(fn SkipFunc) Option {
	return func(d *Decoder) {
		d.onSkip = fn
	}
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{maxBytes: DefaultMaxRecordBytes}
	for _, opt := range opts {
		opt(d)
	}

	d.scanner = bufio.NewScanner(r)
	initial := 4096
	if d.maxBytes < initial {
		initial = d.maxBytes
	}
	// bufio.Scanner needs room for the line terminator on top of the payload.
	d.scanner.Buffer(make([]byte, 0, initial), d.maxBytes+2)
	return d
}

// Skipped returns how many records were dropped as malformed.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Next returns the next event. At the end of the stream it returns io.EOF,
// including when the stream ends without a terminal event. Read failures are
// returned as *errors.TransportError; an oversized record is returned as a
// *errors.ProtocolError wrapping errors.ErrRecordTooLarge. Once Next returns
// an error it keeps returning it.
func (d *Decoder) Next() (Event, error) {
	if d.err != nil {
		return Event{}, d.err
	}

	for d.scanner.Scan() {
		d.line++
		line := d.scanner.Bytes()

		if len(line) == 0 {
			if ev, ok := d.dispatch(); ok {
				return ev, nil
			}
			continue
		}

		if err := d.field(line); err != nil {
			d.err = err
			return Event{}, err
		}
	}

	if err := d.scanner.Err(); err != nil {
		if err == bufio.ErrTooLong {
			d.err = errors.NewProtocolError(errors.ErrRecordTooLarge).WithLine(d.line + 1)
		} else {
			d.err = errors.NewTransportError("stream read failed", err)
		}
		return Event{}, d.err
	}

	// A final record without its blank-line terminator still counts.
	if ev, ok := d.dispatch(); ok {
		d.err = io.EOF
		return ev, nil
	}

	d.err = io.EOF
	return Event{}, io.EOF
}

// Events returns a lazy sequence over the remaining events. The sequence
// stops after yielding the first non-EOF error; io.EOF ends it silently.
func (d *Decoder) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// field consumes one non-empty line of the current record.
func (d *Decoder) field(line []byte) error {
	if line[0] == ':' {
		return nil
	}

	name, value, _ := bytes.Cut(line, []byte(":"))
	value = bytes.TrimPrefix(value, []byte(" "))

	switch string(name) {
	case "data":
		if d.hasData {
			d.data.WriteByte('\n')
		}
		d.data.Write(value)
		d.hasData = true
		if d.data.Len() > d.maxBytes {
			d.reset()
			return errors.NewProtocolError(errors.ErrRecordTooLarge).WithLine(d.line)
		}
	case "event":
		d.name = string(value)
	}
	return nil
}

// dispatch decodes the buffered record, if any.
func (d *Decoder) dispatch() (Event, bool) {
	if !d.hasData {
		d.reset()
		return Event{}, false
	}

	payload := bytes.Clone(d.data.Bytes())
	name := d.name
	d.reset()

	ev, err := decodePayload(payload, name)
	if err != nil {
		d.skipped++
		if d.onSkip != nil {
			d.onSkip(errors.NewProtocolError(err).WithLine(d.line).WithRecord(string(payload)))
		}
		return Event{}, false
	}
	return ev, true
}

func (d *Decoder) reset() {
	d.data.Reset()
	d.hasData = false
	d.name = ""
}

// decodePayload validates and decodes one JSON payload.
func decodePayload(payload []byte, eventName string) (Event, error) {
	if !gjson.ValidBytes(payload) {
		return Event{}, errors.ErrMalformedRecord
	}

	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return Event{}, errors.ErrMalformedRecord
	}

	typ := root.Get("type")
	if typ.String() == "" && eventName == "" {
		return Event{}, errors.ErrMissingType
	}

	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return Event{}, errors.Wrap(errors.ErrMalformedRecord, err.Error())
	}
	if w.Type == "" {
		w.Type = eventName
	}
	return w.toEvent(payload), nil
}
