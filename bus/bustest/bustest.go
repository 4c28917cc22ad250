// Package bustest provides an in-memory bus.Transport that emulates a
// register-level motion sensor, for driver tests that must run without
// hardware or real delays. It records the complete transaction trace
// (select edges, transferred bytes, requested delays) so tests can assert
// exact protocol framing and timing.
package bustest

import "time"

// Kind discriminates trace entries.
type Kind uint8

const (
	KindSelect Kind = iota
	KindDeselect
	KindTransfer
	KindDelay
)

// Op is one recorded transport operation.
type Op struct {
	Kind Kind
	TX   byte          // KindTransfer: byte clocked out
	RX   byte          // KindTransfer: byte clocked in
	D    time.Duration // KindDelay
}

// RegWrite is one completed register write observed on the bus.
type RegWrite struct {
	Addr  byte
	Value byte
}

// Sensor emulates the wire behavior of the motion sensor. Register reads
// reply from Regs, register writes are appended to WriteLog, reads of
// BurstAddr stream the Burst block, and writes framed under UploadAddr are
// appended to Uploaded.
type Sensor struct {
	Regs  map[byte]byte
	Burst []byte

	// BurstAddr and UploadAddr select which addresses get burst-read and
	// burst-write framing. Zero disables the special handling.
	BurstAddr  byte
	UploadAddr byte

	Trace    []Op
	WriteLog []RegWrite
	Uploaded []byte

	// Fault, when set, is returned (and cleared) by the next Err call.
	Fault error

	selected bool
	frame    []byte
}

const writeBit = 0x80

// NewSensor returns a Sensor with an empty register file.
func NewSensor() *Sensor {
	return &Sensor{Regs: map[byte]byte{}}
}

func (s *Sensor) Select() {
	s.selected = true
	s.frame = s.frame[:0]
	s.Trace = append(s.Trace, Op{Kind: KindSelect})
}

func (s *Sensor) Deselect() {
	s.selected = false
	s.Trace = append(s.Trace, Op{Kind: KindDeselect})
}

func (s *Sensor) Delay(d time.Duration) {
	s.Trace = append(s.Trace, Op{Kind: KindDelay, D: d})
}

func (s *Sensor) Err() error {
	err := s.Fault
	s.Fault = nil
	return err
}

func (s *Sensor) Transceive(b byte) byte {
	rx := s.reply(b)
	s.Trace = append(s.Trace, Op{Kind: KindTransfer, TX: b, RX: rx})
	return rx
}

func (s *Sensor) reply(b byte) byte {
	if !s.selected {
		return 0
	}
	s.frame = append(s.frame, b)
	if len(s.frame) == 1 {
		// Address byte; the sensor drives nothing meaningful yet.
		return 0
	}

	addr := s.frame[0]
	if addr&writeBit != 0 {
		reg := addr &^ byte(writeBit)
		if s.UploadAddr != 0 && reg == s.UploadAddr {
			s.Uploaded = append(s.Uploaded, b)
			return 0
		}
		if len(s.frame) == 2 {
			if s.Regs == nil {
				s.Regs = map[byte]byte{}
			}
			s.Regs[reg] = b
			s.WriteLog = append(s.WriteLog, RegWrite{Addr: reg, Value: b})
		}
		return 0
	}

	if s.BurstAddr != 0 && addr == s.BurstAddr {
		i := len(s.frame) - 2
		if i < len(s.Burst) {
			return s.Burst[i]
		}
		return 0
	}
	return s.Regs[addr]
}

// Transfers returns the TX bytes of all KindTransfer entries, in order.
func (s *Sensor) Transfers() []byte {
	var out []byte
	for _, op := range s.Trace {
		if op.Kind == KindTransfer {
			out = append(out, op.TX)
		}
	}
	return out
}

// Reset clears the trace and observation logs but keeps the register file.
func (s *Sensor) Reset() {
	s.Trace = nil
	s.WriteLog = nil
	s.Uploaded = nil
	s.frame = s.frame[:0]
	s.selected = false
}
