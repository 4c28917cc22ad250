// Package hidreport defines the periodic input report handed to the
// external HID collaborator, the fixed report descriptor that declares its
// layout, and the sink interface the polling loop writes reports through.
package hidreport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Size is the encoded report length in bytes: one button byte followed by
// four little-endian signed 16-bit deltas.
const Size = 9

// Report is one poll's composed input report. Ownership is transient: the
// pipeline produces it once per poll and the sink consumes it immediately.
type Report struct {
	// Buttons is the committed button mask; bit positions follow the
	// configured button-line order. Bits above the configured count are
	// zero by construction.
	Buttons uint8
	// Pointer deltas, in report units.
	X, Y int16
	// Scroll deltas: horizontal pan and vertical wheel, in report units.
	Pan, Wheel int16
}

// Marshal encodes the report into its 9-byte wire form:
//
//	Byte 0:   button mask (configured buttons, padded to the byte)
//	Bytes 1-2: pointer X (int16 little-endian)
//	Bytes 3-4: pointer Y
//	Bytes 5-6: scroll pan
//	Bytes 7-8: scroll wheel
func (r Report) Marshal() []byte {
	b := make([]byte, Size)
	b[0] = r.Buttons
	binary.LittleEndian.PutUint16(b[1:3], uint16(r.X))
	binary.LittleEndian.PutUint16(b[3:5], uint16(r.Y))
	binary.LittleEndian.PutUint16(b[5:7], uint16(r.Pan))
	binary.LittleEndian.PutUint16(b[7:9], uint16(r.Wheel))
	return b
}

// Sink consumes assembled reports. The polling loop hands over a report
// only on polls where motion occurred or the committed button mask
// changed; idle polls are suppressed at this boundary.
type Sink interface {
	WriteReport(Report) error
}

// WriterSink writes encoded reports to an io.Writer, typically a USB
// gadget HID endpoint such as /dev/hidg0.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink returns a Sink writing encoded reports to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteReport(r Report) error {
	if _, err := s.w.Write(r.Marshal()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
