package lglcd

// pollSchedule spreads a command list over a polling interval.
//
// With n commands and an interval of m slots, slot i covers commands
// [i*n/m, (i+1)*n/m) and the final slot absorbs the integer-division
// remainder, so every command is fetched exactly once per full interval
// regardless of how unevenly n divides.
type pollSchedule struct {
	commands []Command
	interval int
	cycle    int
}

func newPollSchedule(commands []Command, interval int) *pollSchedule {
	if interval < 1 {
		interval = 1
	}
	if interval > len(commands) {
		interval = len(commands)
	}
	if interval < 1 {
		interval = 1
	}
	return &pollSchedule{
		commands: commands,
		interval: interval,
	}
}

// Next returns the command slice for the current slot and advances the
// schedule. After the final slot it wraps back to the first.
func (s *pollSchedule) Next() []Command {
	batch := s.slot(s.cycle)
	s.cycle++
	if s.cycle >= s.interval {
		s.cycle = 0
	}
	return batch
}

// slot returns the commands covered by slot i without advancing.
func (s *pollSchedule) slot(i int) []Command {
	n := len(s.commands)
	if n == 0 {
		return nil
	}
	per := n / s.interval
	start := i * per
	end := start + per
	if i == s.interval-1 {
		end = n
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return s.commands[start:end]
}

// Reset rewinds the schedule to the first slot.
func (s *pollSchedule) Reset() {
	s.cycle = 0
}

// Slots returns the number of slots in a full interval.
func (s *pollSchedule) Slots() int {
	return s.interval
}

// Len returns the total number of scheduled commands.
func (s *pollSchedule) Len() int {
	return len(s.commands)
}
