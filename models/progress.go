package models

// RecomputeProgress derives the completed/total/progress triple from the
// current subtask state. Every mutation path that touches subtasks must call
// this before the task is persisted; the three fields are never set
// independently.
func (t *Task) RecomputeProgress() {
	total := len(t.Subtasks)
	completed := 0
	for _, st := range t.Subtasks {
		if st.IsExecuted || st.Status == StatusCompleted {
			completed++
		}
	}
	t.TotalSubtasks = total
	t.CompletedSubtasks = completed
	if total == 0 {
		t.Progress = 0
		return
	}
	// round half-up
	t.Progress = (100*completed + total/2) / total
}
