package hal

import "sync"

// PinChange is called when an output bit of a virtual port changes level.
type PinChange func(id PortID, bit uint8, level bool)

type virtualPorts struct {
	ports [portCount]*virtualPort
}

func newVirtualPorts(onChange PinChange) *virtualPorts {
	vp := &virtualPorts{}
	for i := range vp.ports {
		vp.ports[i] = &virtualPort{id: PortID(i), onChange: onChange}
	}
	return vp
}

func (vp *virtualPorts) Port(id PortID) Port {
	if vp == nil || id >= portCount {
		return nil
	}
	return vp.ports[id]
}

// virtualPort models the DDR/PORT/PIN register triple of an AVR port.
//
// An input bit reads the externally driven level; with the PORT bit set it is
// pulled up and reads high unless driven low.
type virtualPort struct {
	mu       sync.Mutex
	id       PortID
	ddr      uint8
	out      uint8
	driven   uint8
	drive    uint8
	onChange PinChange
}

func (p *virtualPort) SetOutput(bit uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ddr |= mask(bit)
}

func (p *virtualPort) SetInput(bit uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ddr &^= mask(bit)
}

func (p *virtualPort) High(bit uint8) { p.write(bit, true) }
func (p *virtualPort) Low(bit uint8)  { p.write(bit, false) }

func (p *virtualPort) Toggle(bit uint8) {
	p.mu.Lock()
	level := p.out&mask(bit) == 0
	p.mu.Unlock()
	p.write(bit, level)
}

func (p *virtualPort) write(bit uint8, level bool) {
	p.mu.Lock()
	m := mask(bit)
	was := p.out&m != 0
	if level {
		p.out |= m
	} else {
		p.out &^= m
	}
	notify := p.onChange != nil && p.ddr&m != 0 && was != level
	fn := p.onChange
	p.mu.Unlock()
	if notify {
		fn(p.id, bit, level)
	}
}

func (p *virtualPort) Read(bit uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := mask(bit)
	if p.ddr&m != 0 {
		return p.out&m != 0
	}
	if p.driven&m != 0 {
		return p.drive&m != 0
	}
	return p.out&m != 0
}

// Drive sets the external level seen by an input bit.
func (p *virtualPort) Drive(bit uint8, level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := mask(bit)
	p.driven |= m
	if level {
		p.drive |= m
	} else {
		p.drive &^= m
	}
}

// Release stops driving an input bit.
func (p *virtualPort) Release(bit uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.driven &^= mask(bit)
}

func mask(bit uint8) uint8 {
	return 1 << (bit & 7)
}
