package world

// Task is one behavior-script goal. Data carries an optional integer datum
// (usually a target entity id) the script stored when pushing.
type Task struct {
	Name    string
	Data    int64
	HasData bool
}

// TaskStack is the entity's goal stack. The head is the task the behavior
// script runs each think; control scripts push and pop to steer.
type TaskStack struct {
	tasks []Task
}

// PushFront makes a task the new current goal.
func (s *TaskStack) PushFront(t Task) {
	s.tasks = append(s.tasks, Task{})
	copy(s.tasks[1:], s.tasks)
	s.tasks[0] = t
}

// PushBack queues a task to run after everything already stacked.
func (s *TaskStack) PushBack(t Task) {
	s.tasks = append(s.tasks, t)
}

// Pop removes and returns the current task. Only the head can be popped.
func (s *TaskStack) Pop() (Task, bool) {
	if len(s.tasks) == 0 {
		return Task{}, false
	}
	t := s.tasks[0]
	copy(s.tasks, s.tasks[1:])
	s.tasks = s.tasks[:len(s.tasks)-1]
	return t, true
}

// Current returns the head task without removing it.
func (s *TaskStack) Current() (Task, bool) {
	if len(s.tasks) == 0 {
		return Task{}, false
	}
	return s.tasks[0], true
}

// Clear drops every task in one teardown.
func (s *TaskStack) Clear() {
	s.tasks = s.tasks[:0]
}

// Len returns the number of stacked tasks.
func (s *TaskStack) Len() int {
	return len(s.tasks)
}
