package kernel

import (
	"errors"
	"runtime"

	"tickfw/hal"
)

const (
	// MaxTasks is the capacity of the task table.
	MaxTasks = 10

	// TickHz is the tick interrupt rate. One tick is one millisecond.
	TickHz = 1000
)

var errNoTimer = errors.New("kernel: no tick timer")

// Action is the body of a task.
type Action func()

// Task is one periodic or background activity.
//
// A task with Period 0 is a background task: it is ready on every dispatch.
type Task struct {
	action  Action
	period  uint16
	nextRun uint16
	ready   bool
}

func newTask(action Action, period uint16) Task {
	return Task{
		action:  action,
		period:  period,
		nextRun: period,
		ready:   period == 0,
	}
}

// TaskInfo is a read-only snapshot of a registered task.
type TaskInfo struct {
	Period  uint16
	NextRun uint16
	Ready   bool
}

// state is everything the tick handler and the foreground loop share. It is
// only touched between irq.Disable and irq.Restore.
type state struct {
	now   uint16
	tasks [MaxTasks]Task
	count uint8
}

// Scheduler is a cooperative run-to-completion task scheduler driven by a
// periodic tick interrupt.
//
// Tick runs in interrupt context and only marks tasks ready. Run is called
// repeatedly from the foreground loop and executes the ready tasks with
// interrupts enabled. There is no task removal and no priority: tasks run in
// registration order.
type Scheduler struct {
	_      [0]func() // prevent accidental copying.
	irq    hal.Interrupts
	shared state
}

// New creates a scheduler guarded by the given interrupt mask.
func New(irq hal.Interrupts) *Scheduler {
	return &Scheduler{irq: irq}
}

// Start programs timer to fire Tick at TickHz and enables interrupts
// globally. It must be called once, before anything that depends on the
// clock.
func (s *Scheduler) Start(timer hal.TickTimer) error {
	if timer == nil {
		return errNoTimer
	}
	if err := timer.Start(TickHz, s.Tick); err != nil {
		return err
	}
	s.irq.Enable()
	return nil
}

// AddTask registers action to run every period ticks, or on every dispatch
// when period is 0.
//
// The first run is due at tick == period. A task registered after that tick
// has passed runs on the next tick. A full table or a nil action makes
// AddTask a no-op; the caller is not told.
func (s *Scheduler) AddTask(action Action, period uint16) {
	if action == nil {
		return
	}

	st := s.irq.Disable()
	if s.shared.count < MaxTasks {
		s.shared.tasks[s.shared.count] = newTask(action, period)
		s.shared.count++
	}
	s.irq.Restore(st)
}

// Tick advances the clock by one and marks due periodic tasks ready. It is
// the tick interrupt handler and does O(MaxTasks) work.
func (s *Scheduler) Tick() {
	st := s.irq.Disable()
	s.shared.now++
	now := s.shared.now
	for i := uint8(0); i < s.shared.count; i++ {
		t := &s.shared.tasks[i]
		if t.period == 0 || !Due(now, t.nextRun, t.period) {
			continue
		}
		t.ready = true
		t.nextRun = now + t.period
	}
	s.irq.Restore(st)
}

// Run dispatches every task that is ready right now.
//
// Ready tasks are captured under the critical section and executed after it
// is left, so interrupts stay masked only for the table scan. Tasks that
// become ready while the captured ones execute are picked up by the next
// call. Run must only be called from the single foreground loop. Once
// Fatal has been called nothing is dispatched any more.
func (s *Scheduler) Run() {
	if InPanicMode() {
		return
	}
	var batch [MaxTasks]Action
	n := 0

	st := s.irq.Disable()
	for i := uint8(0); i < s.shared.count; i++ {
		t := &s.shared.tasks[i]
		if !t.ready {
			continue
		}
		batch[n] = t.action
		n++
		if t.period > 0 {
			t.ready = false
		}
	}
	s.irq.Restore(st)

	for i := 0; i < n; i++ {
		batch[i]()
	}
}

// Loop runs the dispatcher forever.
func (s *Scheduler) Loop() {
	for {
		s.Run()
	}
}

// Now returns the current tick count.
func (s *Scheduler) Now() uint16 {
	st := s.irq.Disable()
	now := s.shared.now
	s.irq.Restore(st)
	return now
}

// Elapsed returns the ticks since start, modulo 2^16.
func (s *Scheduler) Elapsed(start uint16) uint16 {
	return s.Now() - start
}

// Delay busy-waits for at least ms ticks.
//
// Nothing else in the foreground runs while Delay spins: no task is
// dispatched unless the caller does so itself. Interrupts keep running.
func (s *Scheduler) Delay(ms uint16) {
	start := s.Now()
	for s.Elapsed(start) < ms {
		runtime.Gosched()
	}
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	st := s.irq.Disable()
	n := int(s.shared.count)
	s.irq.Restore(st)
	return n
}

// Task returns a snapshot of the i-th registered task.
func (s *Scheduler) Task(i int) (TaskInfo, bool) {
	st := s.irq.Disable()
	defer s.irq.Restore(st)
	if i < 0 || i >= int(s.shared.count) {
		return TaskInfo{}, false
	}
	t := &s.shared.tasks[i]
	return TaskInfo{Period: t.period, NextRun: t.nextRun, Ready: t.ready}, true
}
