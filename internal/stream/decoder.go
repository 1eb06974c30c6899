package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// maxEventSize bounds both a single line and the joined data of one event.
const maxEventSize = 1 << 20

var (
	errEventTooLarge = errors.New("event exceeds 1 MiB")
	errNoChoices     = errors.New("missing choices")
	errNoDelta       = errors.New("missing choices[0].delta")
)

type state int

const (
	stateAwaitingEvent state = iota
	stateInEvent
	stateDone
	stateErrored
)

func (s state) String() string {
	switch s {
	case stateAwaitingEvent:
		return "awaiting-event"
	case stateInEvent:
		return "in-event"
	case stateDone:
		return "done"
	case stateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Decoder incrementally turns server-sent event bytes into content fragments.
//
// Input may be split at any byte boundary, and one Feed may carry many events.
// Once the decoder reaches the done or errored state all further input is
// ignored. Fragments decoded before that point stay queued until popped.
type Decoder struct {
	state  state
	line     []byte
	skipLF   bool
	data     []string
	dataSize int
	frags  []string
	err    error
}

// NewDecoder returns a decoder waiting for its first event.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes the next chunk of the byte stream.
func (d *Decoder) Feed(p []byte) {
	for len(p) > 0 && !d.finished() {
		if d.skipLF {
			d.skipLF = false
			if p[0] == '\n' {
				p = p[1:]
				continue
			}
		}

		i := bytes.IndexAny(p, "\r\n")
		if i < 0 {
			d.appendLine(p)
			return
		}

		if !d.appendLine(p[:i]) {
			return
		}
		d.skipLF = p[i] == '\r'
		p = p[i+1:]

		d.processLine(d.line)
		d.line = d.line[:0]
	}
}

// Close marks the end of input. An unterminated trailing line and event are
// still processed; if the stream never reached [DONE] the decoder fails with
// ErrTruncated.
func (d *Decoder) Close() {
	if d.finished() {
		return
	}
	if len(d.line) > 0 {
		d.processLine(d.line)
		d.line = d.line[:0]
	}
	if !d.finished() {
		d.dispatch()
	}
	if !d.finished() {
		d.fail(ErrTruncated)
	}
}

// Next pops the oldest queued fragment.
func (d *Decoder) Next() (string, bool) {
	if len(d.frags) == 0 {
		return "", false
	}
	frag := d.frags[0]
	d.frags[0] = ""
	d.frags = d.frags[1:]
	return frag, true
}

// Done reports whether the [DONE] event has been seen.
func (d *Decoder) Done() bool { return d.state == stateDone }

// Err returns the error that moved the decoder into the errored state.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) appendLine(p []byte) bool {
	if len(d.line)+len(p) > maxEventSize {
		d.fail(&DecodeError{Payload: string(d.line), Err: errEventTooLarge})
		d.line = nil
		return false
	}
	d.line = append(d.line, p...)
	return true
}

func (d *Decoder) finished() bool {
	return d.state == stateDone || d.state == stateErrored
}

func (d *Decoder) fail(err error) {
	d.state = stateErrored
	d.err = err
}

func (d *Decoder) processLine(line []byte) {
	if len(line) == 0 {
		d.dispatch()
		return
	}
	if line[0] == ':' {
		return
	}

	field, value, _ := bytes.Cut(line, []byte(":"))
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}

	switch string(field) {
	case "data":
		d.dataSize += len(value) + 1
		if d.dataSize > maxEventSize {
			d.fail(&DecodeError{Payload: strings.Join(d.data, "\n"), Err: errEventTooLarge})
			d.data = nil
			return
		}
		d.data = append(d.data, string(value))
		d.state = stateInEvent
	case "event", "id", "retry":
		d.state = stateInEvent
	}
}

func (d *Decoder) dispatch() {
	data := d.data
	d.data = nil
	d.dataSize = 0
	d.state = stateAwaitingEvent
	if len(data) == 0 {
		return
	}
	d.handlePayload(strings.Join(data, "\n"))
}

func (d *Decoder) handlePayload(payload string) {
	if strings.TrimSpace(payload) == doneSentinel {
		d.state = stateDone
		return
	}

	var chunk Chunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		d.fail(&DecodeError{Payload: payload, Err: err})
		return
	}
	if chunk.Error != nil {
		d.fail(chunk.Error.apiError(0))
		return
	}
	// An empty array is a filter-only frame; a missing one is not a completion chunk.
	if chunk.Choices == nil {
		d.fail(&DecodeError{Payload: payload, Err: errNoChoices})
		return
	}
	if len(chunk.Choices) == 0 {
		return
	}
	delta := chunk.Choices[0].Delta
	if delta == nil {
		d.fail(&DecodeError{Payload: payload, Err: errNoDelta})
		return
	}
	if content := delta.Content; content != "" {
		d.frags = append(d.frags, content)
	}
}
