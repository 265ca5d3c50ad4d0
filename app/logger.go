package app

import (
	"tickfw/internal/buildinfo"
	"tickfw/serial"
)

// serialLogger writes CRLF-terminated lines to the serial channel. Lines that
// do not fit in the transmit ring are truncated like any other output.
type serialLogger struct {
	port *serial.Port
}

func (l *serialLogger) WriteLineString(s string) {
	l.port.Send(s)
	l.port.Send("\r\n")
}

func (l *serialLogger) WriteLineBytes(b []byte) {
	l.port.SendBytes(b)
	l.port.Send("\r\n")
}

func (s *System) bootBanner() {
	s.log.WriteLineString("tickfw " + buildinfo.Short())
}
