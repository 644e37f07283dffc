package course

import (
	"time"

	"github.com/vmihailov/learnhub/dates"
	"github.com/vmihailov/learnhub/paging"
)

type Course struct {
	ID          string    `json:"id" db:"course_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Price       int       `json:"price" db:"price"`
	TrainerID   string    `json:"trainerId" db:"trainer_id"`
	StartDate   time.Time `json:"startDate" db:"start_date"`
	EndDate     time.Time `json:"endDate" db:"end_date"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	Version     int       `json:"-" db:"version"`
}

// Dates arrive as plain calendar days and are widened to UTC day
// bounds before storage.
type CourseNew struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       int    `json:"price" validate:"gte=0,lte=10000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

type CourseUp struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int    `json:"price" validate:"omitempty,gte=0,lte=10000"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
	StartDate   *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// View decorates a course with the window-derived fields the UI
// renders.
type View struct {
	Course
	DurationDays     int   `json:"durationDays"`
	RemainingSeconds int64 `json:"remainingSeconds"`
	Upcoming         bool  `json:"upcoming"`
	Ended            bool  `json:"ended"`
	Today            bool  `json:"today"`
}

func NewView(c Course, clock dates.Clock) View {
	return View{
		Course:           c,
		DurationDays:     dates.DaysBetween(c.StartDate, c.EndDate),
		RemainingSeconds: int64(dates.Remaining(clock, c.EndDate).Seconds()),
		Upcoming:         dates.IsUpcoming(clock, c.StartDate),
		Ended:            dates.HasEnded(clock, c.EndDate),
		Today:            dates.IsToday(clock, c.StartDate, time.Local),
	}
}

// Listing is one page of the catalog plus the navigation numbers the
// presentation layer needs.
type Listing struct {
	Items []View `json:"items"`
	paging.Page
	PreviousPage int `json:"previousPage"`
	NextPage     int `json:"nextPage"`
}
