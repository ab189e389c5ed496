// Package memstore is the degraded-mode roster used when Postgres is not
// reachable, or when the process is started with STORE_MODE=memory.
//
// A Store is not durable and is not shared between processes: it is meant for
// a single instance running without its database. Calls are serialized by one
// mutex. Its lifetime is the process lifetime; build one at startup and
// inject it.
package memstore

import (
	"errors"
	"sync"
	"time"

	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
)

var (
	ErrDuplicate = errors.New("memstore: duplicate roll_no")
	ErrNotFound  = errors.New("memstore: not found")
)

type Store struct {
	mu                 sync.Mutex
	students           []*types.Student
	notifications      []*types.Notification
	nextStudentID      uint
	nextNotificationID uint
	now                func() time.Time
}

func New() *Store {
	return &Store{nextStudentID: 1, nextNotificationID: 1, now: time.Now}
}

// NewSeeded returns a store holding the three demo students.
func NewSeeded() *Store {
	s := New()
	for _, seed := range []struct {
		roll, name, dept string
		sem              int
	}{
		{"SIST2023001", "Arjun Kumar", "CSE", 6},
		{"SIST2023002", "Priya Singh", "ECE", 4},
		{"SIST2023003", "Rahul Verma", "MECH", 2},
	} {
		dept, sem := seed.dept, seed.sem
		_, _ = s.CreateStudent(types.Student{RollNo: seed.roll, Name: seed.name, Department: &dept, Semester: &sem})
	}
	return s
}

// ListStudents returns students newest first.
func (s *Store) ListStudents() []*types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Student, 0, len(s.students))
	for i := len(s.students) - 1; i >= 0; i-- {
		cp := *s.students[i]
		out = append(out, &cp)
	}
	return out
}

func (s *Store) CreateStudent(in types.Student) (*types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(in.RollNo); ok {
		return nil, ErrDuplicate
	}
	now := s.now().UTC()
	in.ID = s.nextStudentID
	in.IsActive = true
	in.CreatedAt = now
	in.UpdatedAt = now
	s.nextStudentID++
	stored := in
	s.students = append(s.students, &stored)
	out := stored
	return &out, nil
}

func (s *Store) StudentByRollNo(rollNo string) (*types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.find(rollNo)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *Store) find(rollNo string) (*types.Student, bool) {
	for _, st := range s.students {
		if st.RollNo == rollNo {
			return st, true
		}
	}
	return nil, false
}

func (s *Store) CreateNotification(in types.Notification) *types.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	in.ID = s.nextNotificationID
	in.CreatedAt = now
	in.UpdatedAt = now
	if in.Status == "" {
		in.Status = roster.NotificationPending
	}
	if in.Status == roster.NotificationSent && in.SentAt == nil {
		in.SentAt = &now
	}
	s.nextNotificationID++
	stored := in
	s.notifications = append(s.notifications, &stored)
	out := stored
	return &out
}

// ListNotifications joins notifications with their students, newest first.
// A notification whose student is unknown is reported as "Unknown".
func (s *Store) ListNotifications() []types.NotificationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.NotificationView, 0, len(s.notifications))
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		view := types.NotificationView{
			ID:          n.ID,
			StudentID:   n.StudentID,
			StudentName: "Unknown",
			Message:     n.Message,
			Status:      n.Status,
			SentAt:      n.SentAt,
			CreatedAt:   n.CreatedAt,
		}
		for _, st := range s.students {
			if st.ID == n.StudentID {
				view.StudentName = st.Name
				view.Semester = st.Semester
				break
			}
		}
		view.Severity = roster.SeverityFromSemester(view.Semester)
		out = append(out, view)
	}
	return out
}
