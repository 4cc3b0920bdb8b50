package domain

type ID int64

// Task has two states: open (Status false) and completed (Status true).
// CompletedBy is a username snapshot set only by the completion operation;
// it is not a foreign key and survives user deletion.
type Task struct {
	ID          ID
	Name        string
	Details     string
	AssignedTo  string
	Status      bool
	CompletedBy *string
}
