// Package report holds the read-side helpers used by the dashboards and the
// public attendance report. Every function is pure and returns a new slice.
package report

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"absensi/internal/attendance"
)

// Filter narrows the public report. Empty fields match everything.
type Filter struct {
	Search string
	Date   string
	Class  string
}

// ByUser keeps the records of one user.
func ByUser(records []attendance.AttendanceRecord, userID string) []attendance.AttendanceRecord {
	return keep(records, func(r attendance.AttendanceRecord) bool { return r.UserID == userID })
}

// ByDate keeps records whose date string equals date exactly.
func ByDate(records []attendance.AttendanceRecord, date string) []attendance.AttendanceRecord {
	return keep(records, func(r attendance.AttendanceRecord) bool { return r.Date == date })
}

func ByRole(records []attendance.AttendanceRecord, role attendance.Role) []attendance.AttendanceRecord {
	return keep(records, func(r attendance.AttendanceRecord) bool { return r.Role == role })
}

// ByClass joins records against users and keeps those whose user is
// currently in class. The class copied onto the record is not consulted.
func ByClass(records []attendance.AttendanceRecord, users []attendance.User, class string) []attendance.AttendanceRecord {
	classOf := make(map[string]string, len(users))
	for _, u := range users {
		classOf[u.ID] = u.Class
	}
	return keep(records, func(r attendance.AttendanceRecord) bool {
		c, ok := classOf[r.UserID]
		return ok && c == class
	})
}

// SearchName is a case-insensitive substring match on the user name.
func SearchName(records []attendance.AttendanceRecord, term string) []attendance.AttendanceRecord {
	if term == "" {
		return keep(records, func(attendance.AttendanceRecord) bool { return true })
	}
	needle := strings.ToLower(term)
	return keep(records, func(r attendance.AttendanceRecord) bool {
		return strings.Contains(strings.ToLower(r.UserName), needle)
	})
}

// SortByDateDesc orders newest date first. Dates are YYYY-MM-DD so string
// order is date order; equal dates keep their input order.
func SortByDateDesc(records []attendance.AttendanceRecord) []attendance.AttendanceRecord {
	out := keep(records, func(attendance.AttendanceRecord) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func SortAgendasByDateDesc(agendas []attendance.TeachingAgenda) []attendance.TeachingAgenda {
	out := make([]attendance.TeachingAgenda, len(agendas))
	copy(out, agendas)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// History is a user's own attendance list, newest first.
func History(records []attendance.AttendanceRecord, userID string) []attendance.AttendanceRecord {
	return SortByDateDesc(ByUser(records, userID))
}

// Agendas is a teacher's own agenda list, newest first.
func Agendas(agendas []attendance.TeachingAgenda, teacherID string) []attendance.TeachingAgenda {
	var mine []attendance.TeachingAgenda
	for _, a := range agendas {
		if a.TeacherID == teacherID {
			mine = append(mine, a)
		}
	}
	return SortAgendasByDateDesc(mine)
}

// Public builds the public report: student records only, filtered by f,
// newest date first and then by name.
func Public(records []attendance.AttendanceRecord, users []attendance.User, f Filter) []attendance.AttendanceRecord {
	out := ByRole(records, attendance.RoleStudent)
	out = SearchName(out, f.Search)
	if f.Date != "" {
		out = ByDate(out, f.Date)
	}
	if f.Class != "" {
		out = ByClass(out, users, f.Class)
	}

	col := collate.New(language.Indonesian, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return col.CompareString(out[i].UserName, out[j].UserName) < 0
	})
	return out
}

// Classes lists the distinct classes of student users in first-seen order.
func Classes(users []attendance.User) []string {
	seen := make(map[string]bool)
	classes := []string{}
	for _, u := range users {
		if u.Role != attendance.RoleStudent || u.Class == "" || seen[u.Class] {
			continue
		}
		seen[u.Class] = true
		classes = append(classes, u.Class)
	}
	return classes
}

func keep(records []attendance.AttendanceRecord, pred func(attendance.AttendanceRecord) bool) []attendance.AttendanceRecord {
	out := []attendance.AttendanceRecord{}
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
