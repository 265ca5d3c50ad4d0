package kernel

// Due reports whether a task with the given period, next due at nextRun, is
// due at tick now. It counts the ticks since the task last became due
// (nextRun - period), which stays exact across clock wraparound for every
// period up to 0xFFFF as long as every tick is observed.
func Due(now, nextRun, period uint16) bool {
	return now-(nextRun-period) >= period
}
