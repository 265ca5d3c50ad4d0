//go:build !tinygo

package hal

import (
	"errors"
	"sync"

	"github.com/golang/glog"
)

var errPWMChannel = errors.New("hal: pwm: no such channel")

// simPWM records the duty of each channel.
type simPWM struct {
	mu         sync.Mutex
	configured [pwmCount]bool
	duties     [pwmCount]uint8
}

func (p *simPWM) Configure(ch PWMChannel) error {
	if ch >= pwmCount {
		return errPWMChannel
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configured[ch] = true
	p.duties[ch] = 0
	return nil
}

func (p *simPWM) SetDuty(ch PWMChannel, duty uint8) {
	if ch >= pwmCount {
		return
	}
	p.mu.Lock()
	changed := p.duties[ch] != duty
	p.duties[ch] = duty
	p.mu.Unlock()
	if changed && bool(glog.V(1)) {
		glog.Infof("pwm: %s duty %d", ch, duty)
	}
}

func (p *simPWM) duty(ch PWMChannel) (uint8, bool) {
	if ch >= pwmCount {
		return 0, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duties[ch], p.configured[ch]
}
