package tabular

import "strings"

// Canonical letter fields
const (
	FieldRecipientName  = "recipientName"
	FieldInternID       = "internId"
	FieldCourseName     = "courseName"
	FieldProjectTitle   = "projectTitle"
	FieldStartDate      = "startDate"
	FieldEndDate        = "endDate"
	FieldCompletionDate = "completionDate"
	FieldLetterDate     = "letterDate"
	FieldPosition       = "position"
	FieldDuration       = "duration"
	FieldDepartment     = "department"
)

// AliasTable maps a canonical field to the header spellings accepted for it
type AliasTable map[string][]string

// LetterAliases is the header vocabulary of letter sheets
var LetterAliases = AliasTable{
	FieldRecipientName:  {"recipientname", "recipient_name", "recipient", "name", "studentname", "student_name", "internname", "intern_name"},
	FieldInternID:       {"internid", "intern_id", "studentid", "student_id"},
	FieldCourseName:     {"coursename", "course_name", "course", "stream", "domain"},
	FieldProjectTitle:   {"projecttitle", "project_title", "project", "projectname", "project_name", "title"},
	FieldStartDate:      {"startdate", "start_date", "start", "from", "fromdate"},
	FieldEndDate:        {"enddate", "end_date", "end", "to", "todate"},
	FieldCompletionDate: {"completiondate", "completion_date"},
	FieldLetterDate:     {"letterdate", "letter_date"},
	FieldPosition:       {"position", "role"},
	FieldDuration:       {"duration", "period"},
	FieldDepartment:     {"department", "dept"},
}

// Resolve maps each header column to its canonical field by exact
// lowercase match of the trimmed header. Unknown headers are left out. When
// two columns resolve to the same field the first one wins.
func (a AliasTable) Resolve(headers []string) map[int]string {
	lookup := make(map[string]string)
	for field, aliases := range a {
		for _, alias := range aliases {
			lookup[alias] = field
		}
	}

	out := make(map[int]string)
	taken := make(map[string]bool)
	for i, h := range headers {
		field, ok := lookup[strings.ToLower(strings.TrimSpace(h))]
		if !ok || taken[field] {
			continue
		}
		out[i] = field
		taken[field] = true
	}
	return out
}

// SparseRecords returns one map per row holding only the recognised,
// non-empty fields.
func (t *Table) SparseRecords(a AliasTable) []map[string]string {
	columns := a.Resolve(t.Headers)
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string)
		for i, field := range columns {
			if v := strings.TrimSpace(row[i]); v != "" {
				rec[field] = v
			}
		}
		out = append(out, rec)
	}
	return out
}
