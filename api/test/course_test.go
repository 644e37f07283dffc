package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vmihailov/learnhub/core/course"
	"github.com/vmihailov/learnhub/paging"
)

type courseTest struct {
	*TestEnv
	seq int
}

func (ct *courseTest) createCourseOK(t *testing.T) course.Course {
	if err := ct.Login(ct.TrainerEmail, ct.TrainerPass); err != nil {
		t.Fatal(err)
	}
	defer ct.Logout()

	ct.seq++
	start := time.Now().AddDate(0, 0, 1)
	cn := course.CourseNew{
		Name:        fmt.Sprintf("Course %03d", ct.seq),
		Description: "An integration test course",
		Price:       10 * ct.seq,
		StartDate:   start.Format("2006-01-02"),
		EndDate:     start.AddDate(0, 1, 0).Format("2006-01-02"),
	}

	body, err := json.Marshal(cn)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Post(ct.URL+"/courses", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create course: status code %s", w.Status)
	}

	var c course.Course
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatalf("cannot unmarshal created course: %v", err)
	}
	return c
}

func (ct *courseTest) listCoursesOwnedOK(t *testing.T, want []course.Course) {
	if err := ct.Login(ct.UserEmail, ct.UserPass); err != nil {
		t.Fatal(err)
	}
	defer ct.Logout()

	w, err := ct.Client().Get(ct.URL + "/courses/owned")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't list owned courses: status code %s", w.Status)
	}

	var got []course.Course
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("cannot unmarshal owned courses: %v", err)
	}

	wantIDs := make([]string, 0, len(want))
	for _, c := range want {
		wantIDs = append(wantIDs, c.ID)
	}
	gotIDs := make([]string, 0, len(got))
	for _, c := range got {
		gotIDs = append(gotIDs, c.ID)
	}

	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Fatalf("unexpected owned courses (-want +got):\n%s", diff)
	}
}

func TestCourses(t *testing.T) {
	env, err := NewTestEnv(t, "course_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{TestEnv: env}

	c1 := ct.createCourseOK(t)
	c2 := ct.createCourseOK(t)
	c3 := ct.createCourseOK(t)

	// Second page of two when paging in twos.
	listing := ct.listCoursesOK(t, "?page=2&pageSize=2")
	if listing.TotalItems != 3 || listing.TotalPages != 2 {
		t.Fatalf("expected 3 items over 2 pages, but got %d over %d", listing.TotalItems, listing.TotalPages)
	}
	if len(listing.Items) != 1 {
		t.Fatalf("expected 1 item on the last page, but got %d", len(listing.Items))
	}
	if listing.PreviousPage != 1 || listing.NextPage != 2 {
		t.Fatalf("expected previous 1 and next 2, but got %d and %d", listing.PreviousPage, listing.NextPage)
	}

	// An out-of-range page clamps instead of failing.
	listing = ct.listCoursesOK(t, "?page=99&pageSize=2")
	if listing.Number != 2 {
		t.Fatalf("expected page 99 clamped to 2, but got %d", listing.Number)
	}

	// Search narrows by name.
	listing = ct.listCoursesOK(t, "?term="+c2.Name[len(c2.Name)-3:])
	if len(listing.Items) != 1 || listing.Items[0].ID != c2.ID {
		t.Fatalf("expected the search to find exactly %s", c2.Name)
	}

	// The show endpoint decorates the window.
	w, err := ct.Client().Get(ct.URL + "/courses/" + c1.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't show course: status code %s", w.Status)
	}

	var view course.View
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("cannot unmarshal course view: %v", err)
	}

	if !view.Upcoming || view.Ended {
		t.Fatalf("a course starting tomorrow should be upcoming, got upcoming=%v ended=%v", view.Upcoming, view.Ended)
	}
	if view.DurationDays < 28 {
		t.Fatalf("expected a month-long course, but got %d days", view.DurationDays)
	}
	if view.RemainingSeconds <= 0 {
		t.Fatal("remaining time of an upcoming course should be positive")
	}

	_ = c3
}

func (ct *courseTest) listCoursesOK(t *testing.T, query string) course.Listing {
	w, err := ct.Client().Get(ct.URL + "/courses" + query)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't list courses: status code %s", w.Status)
	}

	var listing course.Listing
	if err := json.NewDecoder(w.Body).Decode(&listing); err != nil {
		t.Fatalf("cannot unmarshal course listing: %v", err)
	}

	if listing.Page == (paging.Page{}) {
		t.Fatal("listing carries no page information")
	}
	return listing
}
