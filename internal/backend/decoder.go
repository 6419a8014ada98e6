// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/util"
)

// maxLoggedLine bounds how much of a bad record reaches the log.
const maxLoggedLine = 200

// =============================================================================
// NDJSON DECODER
// =============================================================================

// Decoder turns arbitrarily split chunks of an NDJSON body into Events.
// A partial trailing line is held back and prefixed to the next chunk.
// Malformed lines and unknown record types are skipped and logged.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	buf     []byte
	logger  *zap.Logger
	skipped int
}

// NewDecoder creates a decoder. A nil logger discards skip warnings.
func NewDecoder(logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger}
}

// Feed appends chunk to the pending buffer and returns every complete
// record it now contains, in order.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf = append(d.buf, chunk...)

	var events []Event
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			break
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]
		if ev, ok := d.decodeLine(line); ok {
			events = append(events, ev)
		}
	}

	// Compact so a long stream does not pin the first chunk's array.
	if len(d.buf) == 0 {
		d.buf = nil
	} else {
		d.buf = append([]byte(nil), d.buf...)
	}
	return events
}

// Flush decodes a final unterminated record at end of stream.
func (d *Decoder) Flush() []Event {
	line := d.buf
	d.buf = nil
	if ev, ok := d.decodeLine(line); ok {
		return []Event{ev}
	}
	return nil
}

// Pending returns the number of buffered bytes not yet forming a line.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Skipped returns how many non-blank lines were dropped.
func (d *Decoder) Skipped() int {
	return d.skipped
}

func (d *Decoder) decodeLine(line []byte) (Event, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Event{}, false
	}

	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		d.skip("malformed stream record", line, zap.Error(err))
		return Event{}, false
	}

	switch ev.Type {
	case EventMetadata, EventToken, EventError:
		return ev, true
	default:
		d.skip("unknown stream record type", line, zap.String("type", string(ev.Type)))
		return Event{}, false
	}
}

func (d *Decoder) skip(msg string, line []byte, field zap.Field) {
	d.skipped++
	d.logger.Warn(msg,
		zap.String("line", util.TruncateRunes(string(line), maxLoggedLine)),
		field,
	)
}
