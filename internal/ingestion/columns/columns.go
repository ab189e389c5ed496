// Package columns maps loosely named spreadsheet headers onto student fields.
package columns

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/apns-backend/internal/domain/roster"
	"github.com/yungbote/apns-backend/internal/ingestion/parser"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]`)
	digitRun = regexp.MustCompile(`\d+`)
)

// Alias lists, checked in order.
var (
	RollAliases        = []string{"rollno", "registerno", "regno", "studentid", "studentroll", "id"}
	NameAliases        = []string{"name", "studentname", "fullname"}
	DepartmentAliases  = []string{"department", "dept", "branch"}
	SemesterAliases    = []string{"semester", "sem", "currentsemester"}
	EmailAliases       = []string{"email", "studentemail"}
	PhoneAliases       = []string{"phone", "studentphone", "mobileno"}
	ParentEmailAliases = []string{"parentemail", "fatheremail", "motheremail", "guardianemail"}
	ParentPhoneAliases = []string{"parentphone", "fatherphone", "motherphone", "guardianphone"}
	PhotoAliases       = []string{"photo", "photourl", "image", "imageurl", "avatar", "profilephoto"}
	ArrearAliases      = []string{"arrears", "arrearcount", "arrearscount", "subjectarrears", "currentarrears", "backlogs", "failedsubjects", "duepapers"}
)

// maxLoneArrears bounds the bare-number fallback in ArrearCount.
const maxLoneArrears = 20

// Normalize lower-cases a header and strips everything outside [a-z0-9].
func Normalize(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}

// normalized indexes a record by normalized header. A later column wins.
func normalized(rec parser.Record) map[string]string {
	out := make(map[string]string, len(rec.Fields))
	for _, f := range rec.Fields {
		out[Normalize(f.Name)] = f.Value
	}
	return out
}

// Lookup returns the first alias present with a non-blank trimmed value.
func Lookup(rec parser.Record, aliases []string) (string, bool) {
	return lookup(normalized(rec), aliases)
}

func lookup(m map[string]string, aliases []string) (string, bool) {
	for _, a := range aliases {
		v, ok := m[a]
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

func firstInt(s string) (int, bool) {
	m := digitRun.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ArrearCount extracts the arrear count of a row. A recognised arrear column
// always decides, even when it holds no digits. Without one, the first bare
// number in [0,20] is used; that fallback can pick up a semester.
func ArrearCount(rec parser.Record) int {
	m := normalized(rec)
	for _, a := range ArrearAliases {
		v, ok := m[a]
		if !ok {
			continue
		}
		n, _ := firstInt(strings.TrimSpace(v))
		return n
	}
	for _, v := range rec.Values() {
		v = strings.TrimSpace(v)
		if v == "" || !allDigits(v) {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		if n >= 0 && n <= maxLoneArrears {
			return n
		}
	}
	return 0
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// AvatarURL is the generated portrait used when a row carries no photo.
func AvatarURL(name string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return "https://ui-avatars.com/api/?name=" + encoded + "&background=D4AF37&color=ffffff&size=256"
}

// StudentPayload is a row resolved into student fields.
type StudentPayload struct {
	RollNo       string
	Name         string
	Department   *string
	Semester     *int
	Email        *string
	Phone        *string
	ParentEmail  *string
	ParentPhone  *string
	PhotoURL     string
	ArrearsCount int
}

// Resolve builds a payload from rec. ok is false when the row has no roll
// number or no name.
func Resolve(rec parser.Record) (StudentPayload, bool) {
	m := normalized(rec)
	roll, hasRoll := lookup(m, RollAliases)
	name, hasName := lookup(m, NameAliases)
	if !hasRoll || !hasName {
		return StudentPayload{}, false
	}

	p := StudentPayload{
		RollNo:       roll,
		Name:         name,
		Department:   optional(m, DepartmentAliases),
		Email:        optional(m, EmailAliases),
		Phone:        optional(m, PhoneAliases),
		ParentEmail:  optional(m, ParentEmailAliases),
		ParentPhone:  optional(m, ParentPhoneAliases),
		ArrearsCount: ArrearCount(rec),
	}
	if raw, ok := lookup(m, SemesterAliases); ok {
		if n, ok := firstInt(raw); ok && n >= 1 && n <= 12 {
			p.Semester = &n
		}
	}
	if photo, ok := lookup(m, PhotoAliases); ok {
		p.PhotoURL = photo
	} else {
		p.PhotoURL = AvatarURL(name)
	}
	return p, true
}

func optional(m map[string]string, aliases []string) *string {
	if v, ok := lookup(m, aliases); ok {
		return &v
	}
	return nil
}

// ToStudent converts the payload to a student row ready for upsert.
func (p StudentPayload) ToStudent() *roster.Student {
	photo := p.PhotoURL
	return &roster.Student{
		RollNo:       p.RollNo,
		Name:         p.Name,
		Department:   p.Department,
		Semester:     p.Semester,
		Email:        p.Email,
		Phone:        p.Phone,
		ParentEmail:  p.ParentEmail,
		ParentPhone:  p.ParentPhone,
		PhotoURL:     &photo,
		ArrearsCount: p.ArrearsCount,
		IsActive:     true,
	}
}
