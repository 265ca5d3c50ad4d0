// Package motor drives the two DC motor channels of an Arduino motor shield
// (R3 layout): a direction pin, a brake pin and a PWM output per channel.
package motor

import (
	"fmt"

	"tickfw/board"
	"tickfw/hal"
)

// Channel selects a motor.
type Channel uint8

const (
	A Channel = iota
	B
	numChannels
)

func (c Channel) String() string {
	return hal.PWMChannel(c).String()
}

// MaxDuty is full speed.
const MaxDuty = 0xFF

type wiring struct {
	dir   board.Pin
	brake board.Pin
	pwm   hal.PWMChannel
}

// Shield R3 pins. Direction B shares D13 with the on-board LED.
var channels = [numChannels]wiring{
	A: {dir: board.D12, brake: board.D9, pwm: hal.PWMA},
	B: {dir: board.D13, brake: board.D8, pwm: hal.PWMB},
}

// Shield is a brought-up motor shield. It is meant to be used from the
// foreground context only.
type Shield struct {
	pins  *board.Pins
	pwm   hal.PWM
	speed [numChannels]uint8
}

// New sets the direction and brake pins to outputs and starts both PWM
// outputs at duty 0.
func New(pins *board.Pins, pwm hal.PWM) (*Shield, error) {
	for c, w := range channels {
		pins.PinMode(w.dir, board.Output)
		pins.PinMode(w.brake, board.Output)
		if err := pwm.Configure(w.pwm); err != nil {
			return nil, fmt.Errorf("motor %s: %w", Channel(c), err)
		}
	}
	return &Shield{pins: pins, pwm: pwm}, nil
}

// SetDuty sets the PWM duty of c without touching direction or brake.
func (s *Shield) SetDuty(c Channel, duty uint8) {
	if c >= numChannels {
		return
	}
	s.pwm.SetDuty(channels[c].pwm, duty)
	s.speed[c] = duty
}

// Duty returns the last duty set on c.
func (s *Shield) Duty(c Channel) uint8 {
	if c >= numChannels {
		return 0
	}
	return s.speed[c]
}

// Forward releases the brake and turns c forward at speed.
func (s *Shield) Forward(c Channel, speed uint8) {
	s.drive(c, true, speed)
}

// Backward releases the brake and turns c backward at speed.
func (s *Shield) Backward(c Channel, speed uint8) {
	s.drive(c, false, speed)
}

func (s *Shield) drive(c Channel, forward bool, speed uint8) {
	if c >= numChannels {
		return
	}
	w := channels[c]
	s.pins.DigitalWrite(w.brake, false)
	s.pins.DigitalWrite(w.dir, forward)
	s.SetDuty(c, speed)
}

// Stop engages the brake and sets the duty of c to 0.
func (s *Shield) Stop(c Channel) {
	if c >= numChannels {
		return
	}
	s.pins.DigitalWrite(channels[c].brake, true)
	s.SetDuty(c, 0)
}

// ParseChannel parses "a" or "b", in either case.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "a", "A":
		return A, nil
	case "b", "B":
		return B, nil
	}
	return 0, fmt.Errorf("motor: bad channel %q", s)
}
