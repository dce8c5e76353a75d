package record

import "slices"

// Family names a record collection.
type Family string

const (
	FamilyCourses  Family = "courses"
	FamilyUsers    Family = "users"
	FamilyProgress Family = "progress"
)

// Kind identifies a lifecycle event on a record.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Kinds lists every lifecycle event kind in dispatch registration order.
var Kinds = []Kind{KindCreated, KindUpdated, KindDeleted}

// StatusNotStarted is the status every derived progress record starts with.
const StatusNotStarted = "Not Started"

// Course is a unit of content with a set of assigned users.
type Course struct {
	ID               string   `json:"id"`
	Assignees        []string `json:"assignees"`
	AssignToEveryone bool     `json:"assign_to_everyone"`
}

// Clone returns a copy of c that shares no memory with it.
func (c Course) Clone() Course {
	c.Assignees = slices.Clone(c.Assignees)
	if c.Assignees == nil {
		c.Assignees = []string{}
	}
	return c
}

// HasAssignee reports whether userID is in the course's assignee set.
func (c Course) HasAssignee(userID string) bool {
	return slices.Contains(c.Assignees, userID)
}

// User is a member of the user population. Only the id matters to the engine.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Progress tracks one user's completion status for one course.
type Progress struct {
	ID       string `json:"id"`
	Course   string `json:"course"`
	Assignee string `json:"assignee"`
	Status   string `json:"status"`
}

// SameIdentity reports whether p and other reference the same (course, assignee) pair.
func (p Progress) SameIdentity(other Progress) bool {
	return p.Course == other.Course && p.Assignee == other.Assignee
}

// NewProgress builds a not-yet-persisted progress record for a course assignment.
func NewProgress(courseID, assigneeID string) Progress {
	return Progress{
		Course:   courseID,
		Assignee: assigneeID,
		Status:   StatusNotStarted,
	}
}
