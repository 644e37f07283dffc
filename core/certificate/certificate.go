package certificate

import "time"

// Certificate proves a student passed a course's exam. One per
// student and course; regrading never duplicates it.
type Certificate struct {
	ID       string    `json:"id" db:"certificate_id"`
	UserID   string    `json:"userId" db:"user_id"`
	CourseID string    `json:"courseId" db:"course_id"`
	ExamID   string    `json:"examId" db:"exam_id"`
	Grade    int       `json:"grade" db:"grade"`
	IssuedOn time.Time `json:"issuedOn" db:"issued_on"`
}
