package attendance

import "strings"

// Role is the kind of account a user registered as.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Upper is the role as it appears inside a qr code.
func (r Role) Upper() string { return strings.ToUpper(string(r)) }

// User is a registered student or teacher. Class is only set for students
// and Subject only for teachers.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Class   string `json:"class,omitempty"`
	Subject string `json:"subject,omitempty"`
	QRCode  string `json:"qrCode"`
}

// AttendanceRecord is one check-in. UserName, Role and Class are copied
// from the user when the record is created and are never re-synced.
type AttendanceRecord struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Role     Role   `json:"role"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Class    string `json:"class,omitempty"`
}

// TeachingAgenda is a lesson log entry submitted by a teacher.
type TeachingAgenda struct {
	ID          string `json:"id"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	Date        string `json:"date"`
	Class       string `json:"class"`
	Subject     string `json:"subject"`
	Material    string `json:"material"`
}

// NewUser is the registration payload.
type NewUser struct {
	Name    string
	Role    Role
	Class   string
	Subject string
}

// NewAgenda is the agenda submission payload; the teacher fields come from
// the current session.
type NewAgenda struct {
	Date     string
	Class    string
	Subject  string
	Material string
}

// State is a copy of every collection held by a Store.
type State struct {
	CurrentUser       *User              `json:"currentUser"`
	Users             []User             `json:"users"`
	AttendanceRecords []AttendanceRecord `json:"attendanceRecords"`
	TeachingAgendas   []TeachingAgenda   `json:"teachingAgendas"`
}

// QRCodeFor derives the scannable code of a user.
func QRCodeFor(org string, role Role, id string) string {
	return org + "-" + role.Upper() + "-" + id
}
