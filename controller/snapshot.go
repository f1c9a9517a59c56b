package controller

import "TaskClient/models"

// Snapshot is an immutable copy of the controller state for rendering.
type Snapshot struct {
	State      State
	User       *models.User
	Tasks      []models.Task
	Stats      Stats
	Loading    bool
	LoginForm  LoginForm
	LoginError string
	Draft      models.Draft
	// EditingID is the zero id in create mode.
	EditingID models.TaskID
	ShowForm  bool
	Notice    string
	UsingMock bool
	MockReady bool
}

// Editing reports whether the form is in edit mode.
func (s Snapshot) Editing() bool {
	return !s.EditingID.IsZero()
}

// Stats summarizes the task collection.
type Stats struct {
	Total   int
	Pending int
	Done    int
}

// ComputeStats counts tasks per status.
func ComputeStats(tasks []models.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == models.Done {
			s.Done++
		} else {
			s.Pending++
		}
	}
	return s
}
