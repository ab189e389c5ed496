package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/memstore"
	"github.com/yungbote/apns-backend/internal/data/repos"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/domain/roster"
	"github.com/yungbote/apns-backend/internal/ingestion/columns"
	"github.com/yungbote/apns-backend/internal/platform/apierr"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

const profileHistoryLimit = 10

const defaultQueryTimeout = 3 * time.Second

var validate = validator.New()

type CreateStudentInput struct {
	RollNo     string  `json:"roll_no" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Department *string `json:"department"`
	Semester   *int    `json:"semester" validate:"omitempty,min=1,max=12"`
}

type ContactActionInput struct {
	Channel   string  `json:"channel" validate:"required,oneof=call mail email sms"`
	Recipient *string `json:"recipient"`
	Message   *string `json:"message"`
}

type StudentProfile struct {
	Student       *types.Student        `json:"student"`
	Notifications []*types.Notification `json:"notifications"`
	AlertActions  []*types.AlertAction  `json:"alertActions"`
}

// ContactActionResult holds the stored action, or in memory mode only the
// acknowledgement fields.
type ContactActionResult struct {
	Memory    bool
	RollNo    string
	Channel   string
	Recipient *string
	Action    *types.AlertAction
}

type StudentService interface {
	List(ctx context.Context) ([]*types.Student, error)
	Create(ctx context.Context, in CreateStudentInput) (*types.Student, error)
	Profile(ctx context.Context, rollNo string) (*StudentProfile, error)
	ContactAction(ctx context.Context, rollNo string, in ContactActionInput) (*ContactActionResult, error)
}

type studentService struct {
	log           *logger.Logger
	status        *db.Status
	mem           *memstore.Store
	students      repos.StudentRepo
	notifications repos.NotificationRepo
	alerts        repos.AlertActionRepo
	queryTimeout  time.Duration
	now           func() time.Time
}

// NewStudentService builds the roster service. mem may be nil, in which case
// requests fail with 503 while the database is down.
func NewStudentService(
	log *logger.Logger,
	status *db.Status,
	mem *memstore.Store,
	students repos.StudentRepo,
	notifications repos.NotificationRepo,
	alerts repos.AlertActionRepo,
	queryTimeout time.Duration,
) StudentService {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &studentService{
		log:           log.With("service", "StudentService"),
		status:        status,
		mem:           mem,
		students:      students,
		notifications: notifications,
		alerts:        alerts,
		queryTimeout:  queryTimeout,
		now:           time.Now,
	}
}

// degraded marks the store down on a connection failure and reports whether
// the memory store can take over.
func (ss *studentService) degraded(err error, op string) bool {
	if !ss.status.Observe(err) {
		return false
	}
	ss.log.Warn("store unavailable, serving from memory", "op", op, "error", err)
	return ss.mem != nil
}

func (ss *studentService) List(ctx context.Context) ([]*types.Student, error) {
	if !ss.status.Connected() {
		if ss.mem == nil {
			return nil, storeUnavailable()
		}
		return ss.mem.ListStudents(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, ss.queryTimeout)
	defer cancel()
	rows, err := ss.students.List(ctx, nil)
	if err != nil {
		if ss.degraded(err, "list_students") {
			return ss.mem.ListStudents(), nil
		}
		return nil, internalError(ss.log, ss.status, err, "list_students_failed", "Unable to fetch students")
	}
	return rows, nil
}

func (ss *studentService) Create(ctx context.Context, in CreateStudentInput) (*types.Student, error) {
	if err := validate.Struct(in); err != nil {
		return nil, studentValidationError(err)
	}
	student := types.Student{
		RollNo:     in.RollNo,
		Name:       in.Name,
		Department: in.Department,
		Semester:   in.Semester,
	}
	if !ss.status.Connected() {
		return ss.createInMemory(student)
	}

	ctx, cancel := context.WithTimeout(ctx, ss.queryTimeout)
	defer cancel()
	if err := ss.students.Create(ctx, nil, &student); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, duplicateStudent()
		}
		if ss.degraded(err, "create_student") {
			return ss.createInMemory(student)
		}
		return nil, internalError(ss.log, ss.status, err, "create_student_failed", "Unable to create student")
	}
	return &student, nil
}

func (ss *studentService) createInMemory(student types.Student) (*types.Student, error) {
	if ss.mem == nil {
		return nil, storeUnavailable()
	}
	student.ID = 0
	created, err := ss.mem.CreateStudent(student)
	if errors.Is(err, memstore.ErrDuplicate) {
		return nil, duplicateStudent()
	}
	if err != nil {
		return nil, fmt.Errorf("memory create student: %w", err)
	}
	return created, nil
}

func (ss *studentService) Profile(ctx context.Context, rollNo string) (*StudentProfile, error) {
	if rollNo == "" {
		return nil, apierr.BadRequest("invalid_request", "roll_no is required")
	}
	if !ss.status.Connected() {
		return ss.memoryProfile(rollNo)
	}

	ctx, cancel := context.WithTimeout(ctx, ss.queryTimeout)
	defer cancel()
	student, err := ss.students.GetByRollNo(ctx, nil, rollNo)
	if err != nil {
		if ss.degraded(err, "student_profile") {
			return ss.memoryProfile(rollNo)
		}
		return nil, internalError(ss.log, ss.status, err, "student_profile_failed", "Unable to fetch student")
	}
	if student == nil {
		return nil, studentNotFound()
	}
	withPhoto(student)

	notifications, err := ss.notifications.ListForStudent(ctx, nil, student.ID, profileHistoryLimit)
	if err != nil {
		return nil, internalError(ss.log, ss.status, err, "student_profile_failed", "Unable to fetch student")
	}
	actions, err := ss.alerts.ListForStudent(ctx, nil, student.ID, profileHistoryLimit)
	if err != nil {
		return nil, internalError(ss.log, ss.status, err, "student_profile_failed", "Unable to fetch student")
	}
	return &StudentProfile{Student: student, Notifications: notifications, AlertActions: actions}, nil
}

func (ss *studentService) memoryProfile(rollNo string) (*StudentProfile, error) {
	if ss.mem == nil {
		return nil, storeUnavailable()
	}
	student, err := ss.mem.StudentByRollNo(rollNo)
	if err != nil {
		return nil, studentNotFound()
	}
	withPhoto(student)
	return &StudentProfile{
		Student:       student,
		Notifications: []*types.Notification{},
		AlertActions:  []*types.AlertAction{},
	}, nil
}

func (ss *studentService) ContactAction(ctx context.Context, rollNo string, in ContactActionInput) (*ContactActionResult, error) {
	if rollNo == "" {
		return nil, apierr.BadRequest("invalid_request", "roll_no is required")
	}
	in.Channel = strings.ToLower(strings.TrimSpace(in.Channel))
	if err := validate.Struct(in); err != nil {
		return nil, apierr.BadRequest("invalid_channel", "channel must be one of: call, mail, email, sms")
	}
	channel, _ := roster.NormalizeChannel(in.Channel)

	if !ss.status.Connected() {
		return ss.memoryContact(rollNo, channel, in.Recipient)
	}

	ctx, cancel := context.WithTimeout(ctx, ss.queryTimeout)
	defer cancel()
	student, err := ss.students.GetByRollNo(ctx, nil, rollNo)
	if err != nil {
		if ss.degraded(err, "contact_action") {
			return ss.memoryContact(rollNo, channel, in.Recipient)
		}
		return nil, internalError(ss.log, ss.status, err, "contact_action_failed", "Unable to create contact action")
	}
	if student == nil {
		return nil, studentNotFound()
	}

	message := ""
	if in.Message != nil {
		message = strings.TrimSpace(*in.Message)
	}
	if message == "" {
		message = fmt.Sprintf("Manual %s action initiated for %s.", channel, student.Name)
	}
	now := ss.now().UTC()
	action := &types.AlertAction{
		StudentID: student.ID,
		Channel:   channel,
		Recipient: resolveRecipient(student, channel, in.Recipient),
		Message:   message,
		Status:    roster.ActionSent,
		SentAt:    &now,
	}
	created, err := ss.alerts.Create(ctx, nil, []*types.AlertAction{action})
	if err != nil {
		return nil, internalError(ss.log, ss.status, err, "contact_action_failed", "Unable to create contact action")
	}
	ss.log.Info("manual contact action recorded", "student_id", student.ID, "channel", channel)
	return &ContactActionResult{RollNo: rollNo, Channel: channel, Recipient: action.Recipient, Action: created[0]}, nil
}

func (ss *studentService) memoryContact(rollNo, channel string, recipient *string) (*ContactActionResult, error) {
	if ss.mem == nil {
		return nil, storeUnavailable()
	}
	return &ContactActionResult{Memory: true, RollNo: rollNo, Channel: channel, Recipient: recipient}, nil
}

// resolveRecipient prefers an explicit recipient, then the student's contact
// on file for the channel. Nothing resolves for sms without an explicit one.
func resolveRecipient(student *types.Student, channel string, explicit *string) *string {
	if explicit != nil {
		if v := strings.TrimSpace(*explicit); v != "" {
			return &v
		}
	}
	var candidates []*string
	switch channel {
	case roster.ChannelCall:
		candidates = []*string{student.ParentPhone}
	case roster.ChannelEmail:
		candidates = []*string{student.ParentEmail, student.Email}
	}
	for _, c := range candidates {
		if c != nil && *c != "" {
			v := *c
			return &v
		}
	}
	return nil
}

func withPhoto(student *types.Student) {
	if student.PhotoURL != nil && *student.PhotoURL != "" {
		return
	}
	name := student.Name
	if name == "" {
		name = "Student"
	}
	url := columns.AvatarURL(name)
	student.PhotoURL = &url
}

func studentValidationError(err error) error {
	required := apierr.BadRequest("invalid_request", "roll_no and name are required")
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return required
	}
	for _, fe := range verrs {
		if fe.Field() == "RollNo" || fe.Field() == "Name" {
			return required
		}
	}
	return apierr.BadRequest("invalid_request", "semester must be between 1 and 12")
}

func duplicateStudent() error {
	return apierr.Conflict("student_exists", "Student with this roll_no already exists")
}

func studentNotFound() error {
	return apierr.NotFound("student_not_found", "Student not found")
}
