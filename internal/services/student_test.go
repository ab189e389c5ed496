package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/apns-backend/internal/data/memstore"
	"github.com/yungbote/apns-backend/internal/data/repos/testutil"
	types "github.com/yungbote/apns-backend/internal/domain"
)

func TestStudentCreateAndList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.students.Create(ctx, CreateStudentInput{Name: "No Roll"})
	wantAPIError(t, err, http.StatusBadRequest, "roll_no and name are required")
	_, err = f.students.Create(ctx, CreateStudentInput{RollNo: "R1", Name: "Bad", Semester: intp(13)})
	wantAPIError(t, err, http.StatusBadRequest, "semester must be between 1 and 12")

	first, err := f.students.Create(ctx, CreateStudentInput{RollNo: "R1", Name: "Asha", Department: strp("CSE"), Semester: intp(6)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := f.students.Create(ctx, CreateStudentInput{RollNo: "R2", Name: "Bala"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("unexpected ids: %d, %d", first.ID, second.ID)
	}

	_, err = f.students.Create(ctx, CreateStudentInput{RollNo: "R1", Name: "Again"})
	wantAPIError(t, err, http.StatusConflict, "")

	list, err := f.students.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].RollNo != "R2" || list[1].RollNo != "R1" {
		t.Fatalf("unexpected list order: %+v", list)
	}
}

func TestStudentProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.students.Profile(ctx, "missing")
	wantAPIError(t, err, http.StatusNotFound, "Student not found")

	student := testutil.SeedStudent(t, ctx, f.db, "R9", 5)
	for i := 0; i < 12; i++ {
		testutil.SeedNotification(t, ctx, f.db, student.ID, fmt.Sprintf("notice %d", i))
	}

	profile, err := f.students.Profile(ctx, "R9")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Student.PhotoURL == nil || !strings.Contains(*profile.Student.PhotoURL, "name=Student%20R9") {
		t.Fatalf("photo_url not defaulted: %v", profile.Student.PhotoURL)
	}
	if len(profile.Notifications) != 10 {
		t.Fatalf("notifications=%d want 10", len(profile.Notifications))
	}
	if profile.Notifications[0].Message != "notice 11" {
		t.Fatalf("newest notification first, got %q", profile.Notifications[0].Message)
	}
	if profile.AlertActions == nil || len(profile.AlertActions) != 0 {
		t.Fatalf("alert actions=%v want empty", profile.AlertActions)
	}
}

func TestContactActionResolvesRecipient(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	student := &types.Student{
		RollNo:      "R5",
		Name:        "Chen",
		Email:       strp("chen@college.edu"),
		ParentPhone: strp("+9111"),
	}
	if err := f.db.Create(student).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := f.students.ContactAction(ctx, "R5", ContactActionInput{Channel: "pigeon"})
	wantAPIError(t, err, http.StatusBadRequest, "channel must be one of: call, mail, email, sms")
	_, err = f.students.ContactAction(ctx, "nobody", ContactActionInput{Channel: "sms"})
	wantAPIError(t, err, http.StatusNotFound, "Student not found")

	cases := []struct {
		in            ContactActionInput
		wantChannel   string
		wantRecipient string
		wantMessage   string
	}{
		{ContactActionInput{Channel: " Mail "}, "email", "chen@college.edu", "Manual email action initiated for Chen."},
		{ContactActionInput{Channel: "call"}, "call", "+9111", "Manual call action initiated for Chen."},
		{ContactActionInput{Channel: "call", Recipient: strp(" +9222 "), Message: strp("Call the office")}, "call", "+9222", "Call the office"},
		{ContactActionInput{Channel: "sms", Message: strp("   ")}, "sms", "", "Manual sms action initiated for Chen."},
	}
	for _, tc := range cases {
		res, err := f.students.ContactAction(ctx, "R5", tc.in)
		if err != nil {
			t.Fatalf("ContactAction(%+v): %v", tc.in, err)
		}
		if res.Memory || res.Action == nil {
			t.Fatalf("expected a stored action, got %+v", res)
		}
		a := res.Action
		if a.ID == 0 || a.Channel != tc.wantChannel || a.Message != tc.wantMessage || a.Status != "sent" || a.SentAt == nil {
			t.Fatalf("unexpected action: %+v", a)
		}
		got := ""
		if a.Recipient != nil {
			got = *a.Recipient
		}
		if got != tc.wantRecipient {
			t.Fatalf("recipient=%q want %q", got, tc.wantRecipient)
		}
		if a.NotificationID != nil {
			t.Fatalf("manual action must not reference a notification")
		}
	}

	profile, err := f.students.Profile(ctx, "R5")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(profile.AlertActions) != len(cases) {
		t.Fatalf("alert actions=%d want %d", len(profile.AlertActions), len(cases))
	}
}

func TestStudentServiceMemoryMode(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t, memstore.NewSeeded())
	ctx := context.Background()

	list, err := f.students.List(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("List: %v (%d)", err, len(list))
	}
	created, err := f.students.Create(ctx, CreateStudentInput{RollNo: "M1", Name: "Memo"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 4 {
		t.Fatalf("id=%d want 4", created.ID)
	}
	_, err = f.students.Create(ctx, CreateStudentInput{RollNo: "M1", Name: "Memo"})
	wantAPIError(t, err, http.StatusConflict, "")

	profile, err := f.students.Profile(ctx, "M1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Student.PhotoURL == nil || len(profile.Notifications) != 0 || len(profile.AlertActions) != 0 {
		t.Fatalf("unexpected memory profile: %+v", profile)
	}
	_, err = f.students.Profile(ctx, "nobody")
	wantAPIError(t, err, http.StatusNotFound, "Student not found")

	res, err := f.students.ContactAction(ctx, "SIST2023001", ContactActionInput{Channel: "mail", Recipient: strp("p@x.y")})
	if err != nil {
		t.Fatalf("ContactAction: %v", err)
	}
	if !res.Memory || res.Channel != "email" || res.RollNo != "SIST2023001" || res.Recipient == nil || *res.Recipient != "p@x.y" {
		t.Fatalf("unexpected memory ack: %+v", res)
	}
}

func TestStudentServiceWithoutAnyStore(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture(t, nil)
	_, err := f.students.List(context.Background())
	wantAPIError(t, err, http.StatusServiceUnavailable, "")
	_, err = f.students.Create(context.Background(), CreateStudentInput{RollNo: "X", Name: "Y"})
	wantAPIError(t, err, http.StatusServiceUnavailable, "")
}
