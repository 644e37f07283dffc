package exam

import (
	"time"

	"github.com/vmihailov/learnhub/dates"
)

type Exam struct {
	ID          string    `json:"id" db:"exam_id"`
	CourseID    string    `json:"courseId" db:"course_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	StartDate   time.Time `json:"startDate" db:"start_date"`
	EndDate     time.Time `json:"endDate" db:"end_date"`
	MaxPoints   int       `json:"maxPoints" db:"max_points"`
	PassPoints  int       `json:"passPoints" db:"pass_points"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Version     int       `json:"-" db:"version"`
}

type ExamNew struct {
	CourseID    string `json:"courseId" validate:"required,uuid4"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
	MaxPoints   int    `json:"maxPoints" validate:"required,gt=0"`
	PassPoints  int    `json:"passPoints" validate:"required,gt=0,ltefield=MaxPoints"`
}

// View decorates an exam with its window state; the submission UI
// hinges on these flags.
type View struct {
	Exam
	DurationDays     int   `json:"durationDays"`
	RemainingSeconds int64 `json:"remainingSeconds"`
	Upcoming         bool  `json:"upcoming"`
	Ended            bool  `json:"ended"`
	Today            bool  `json:"today"`
}

func NewView(e Exam, clock dates.Clock) View {
	return View{
		Exam:             e,
		DurationDays:     dates.DaysBetween(e.StartDate, e.EndDate),
		RemainingSeconds: int64(dates.Remaining(clock, e.EndDate).Seconds()),
		Upcoming:         dates.IsUpcoming(clock, e.StartDate),
		Ended:            dates.HasEnded(clock, e.EndDate),
		Today:            dates.IsToday(clock, e.StartDate, time.Local),
	}
}

// Open reports whether the submission window is currently open.
func Open(e Exam, clock dates.Clock) bool {
	return !dates.IsUpcoming(clock, e.StartDate) && !dates.HasEnded(clock, e.EndDate)
}

type Submission struct {
	ID          string     `json:"id" db:"submission_id"`
	ExamID      string     `json:"examId" db:"exam_id"`
	UserID      string     `json:"userId" db:"user_id"`
	FilePath    string     `json:"-" db:"file_path"`
	Grade       *int       `json:"grade" db:"grade"`
	SubmittedAt time.Time  `json:"submittedAt" db:"submitted_at"`
	GradedAt    *time.Time `json:"gradedAt" db:"graded_at"`
}

type GradeUp struct {
	Grade int `json:"grade" validate:"gte=0"`
}
