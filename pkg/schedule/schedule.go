// Package schedule runs periodic tasks off a wrapping millisecond counter.
//
// The counter is read once per tick. A task is due when more than its period
// has elapsed since it last ran. When the counter wraps, a recorded run time
// ends up ahead of the latest tick; the scheduler then resets every counter
// so all tasks run on the next tick instead of stalling until the next wrap.
package schedule

// Task is a periodic job.
type Task struct {
	Name   string
	Period uint32 // ms
	Run    func(now uint32)

	last  uint32
	armed bool // false until the first run and after a reset
}

// State is a snapshot of the scheduler counters.
type State struct {
	Last     map[string]uint32
	LastTick uint32
}

// Result describes what a single tick did.
type Result struct {
	Ran        []string
	RolledOver bool
}

// Scheduler evaluates tasks in registration order.
// It is not safe for concurrent use.
type Scheduler struct {
	tasks     []*Task
	lastTick  uint32
	rollovers int
}

// New creates a scheduler. Every task is due on the first tick.
func New(tasks ...*Task) *Scheduler {
	return &Scheduler{tasks: tasks}
}

// Tick runs due tasks for the counter value now and applies rollover
// correction.
func (s *Scheduler) Tick(now uint32) Result {
	var res Result

	for _, t := range s.tasks {
		if !t.due(now) {
			continue
		}
		if t.Run != nil {
			t.Run(now)
		}
		t.last = now
		t.armed = true
		res.Ran = append(res.Ran, t.Name)
	}

	s.lastTick = now

	for _, t := range s.tasks {
		if t.armed && t.last > s.lastTick {
			s.reset()
			res.RolledOver = true
			break
		}
	}

	return res
}

// Restore loads counters, e.g. from a snapshot taken with State.
// Tasks missing from st stay unarmed.
func (s *Scheduler) Restore(st State) {
	s.lastTick = st.LastTick
	for _, t := range s.tasks {
		last, ok := st.Last[t.Name]
		t.last = last
		t.armed = ok
	}
}

// State returns the current counters of armed tasks.
func (s *Scheduler) State() State {
	st := State{
		Last:     make(map[string]uint32, len(s.tasks)),
		LastTick: s.lastTick,
	}
	for _, t := range s.tasks {
		if t.armed {
			st.Last[t.Name] = t.last
		}
	}
	return st
}

// Rollovers returns how many times the counters have been reset.
func (s *Scheduler) Rollovers() int {
	return s.rollovers
}

func (s *Scheduler) reset() {
	for _, t := range s.tasks {
		t.last = 0
		t.armed = false
	}
	s.lastTick = 0
	s.rollovers++
}

func (t *Task) due(now uint32) bool {
	if !t.armed {
		return true
	}
	// Signed so that a last run ahead of now (counter wrapped) is never due.
	return int64(now)-int64(t.last) > int64(t.Period)
}
