package timetable

// Session types inferred for extracted blocks. The inference is a heuristic
// (co-taught blocks are assumed to be lectures) and can be overridden via
// SessionTypePolicy.
const (
	SessionTypeLecture = "lecture"
	SessionTypeLab     = "lab"
)

// ScheduleEntry is one (course, group) fact recovered from a single detected
// block in the raw grid.
type ScheduleEntry struct {
	CourseCode   string   `json:"course_code"`
	GroupCode    string   `json:"group_code"`
	CourseName   string   `json:"course_name"`
	Instructor   string   `json:"instructor"`
	Location     string   `json:"location"`
	DayOfWeek    string   `json:"day_of_week"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	SessionType  string   `json:"session_type"`
	TimeSlot     int      `json:"time_slot"`
	Span         int      `json:"span"`
	SharedGroups []string `json:"shared_groups,omitempty"`
}

// Session is one scheduled meeting of a course group. It mirrors the session
// fields of ScheduleEntry without repeating the course/group identity.
type Session struct {
	CourseName   string   `json:"course_name"`
	Instructor   string   `json:"instructor"`
	Location     string   `json:"location"`
	DayOfWeek    string   `json:"day_of_week"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	SessionType  string   `json:"session_type"`
	TimeSlot     int      `json:"time_slot"`
	Span         int      `json:"span"`
	SharedGroups []string `json:"shared_groups,omitempty"`
}

// CourseGroup aggregates every session of one (course_code, group_code) pair.
// It is a plain serializable structure so parse results can cross a service
// boundary unchanged.
type CourseGroup struct {
	CourseCode string    `json:"course_code"`
	GroupCode  string    `json:"group_code"`
	CourseName string    `json:"course_name"`
	Sessions   []Session `json:"sessions"`
}

// ExtractResult is the output of one extractor call.
type ExtractResult struct {
	Entries      []ScheduleEntry `json:"entries"`
	CourseGroups []CourseGroup   `json:"course_groups"`
	SpanWarnings []string        `json:"span_warnings,omitempty"`
}

// CourseBlock is one renderable cell of the weekly table: three display rows
// plus continuation bookkeeping for multi-slot sessions.
type CourseBlock struct {
	CourseCode     string `json:"course_code"`
	CourseLine     string `json:"course_line"`
	NameLine       string `json:"name_line"`
	DetailLine     string `json:"detail_line"`
	SessionType    string `json:"session_type"`
	IsContinuation bool   `json:"is_continuation"`
	SpanPosition   int    `json:"span_position"`
	TotalSpan      int    `json:"total_span"`
}

// TableStructure describes the fixed geometry of a weekly table.
type TableStructure struct {
	Days      []string   `json:"days"`
	TimeSlots []TimeSlot `json:"time_slots"`
}

// WeeklyTable maps each day to its eight slot cells; a nil cell is free.
type WeeklyTable struct {
	Structure TableStructure            `json:"structure"`
	Schedule  map[string][]*CourseBlock `json:"schedule"`
}

// ResolvedSelection is one user course choice after group resolution.
type ResolvedSelection struct {
	CourseCode  string `json:"course_code"`
	GroupNumber string `json:"group_number"`
}

// SpanValidation reports expected-vs-actual weekly span totals.
type SpanValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Conflict records two courses contending for the same time range.
type Conflict struct {
	Day      string `json:"day"`
	TimeSlot int    `json:"time_slot"`
	Course1  string `json:"course1"`
	Course2  string `json:"course2"`
}

// ConflictValidation reports cross-course time conflicts. Conflicts never by
// themselves invalidate a result; the caller decides what to do with them.
type ConflictValidation struct {
	HasConflicts   bool       `json:"has_conflicts"`
	TotalConflicts int        `json:"total_conflicts"`
	Conflicts      []Conflict `json:"conflicts"`
}

// GenerationMetadata carries sanity totals for a generated table.
type GenerationMetadata struct {
	TotalSpans  int    `json:"total_spans"`
	CourseCount int    `json:"course_count"`
	GeneratedAt string `json:"generated_at"`
}

// AssembleResult is the full outcome of one assembly call. Hard validation
// errors set Success to false; span warnings and time conflicts do not.
type AssembleResult struct {
	Success            bool                `json:"success"`
	Error              string              `json:"error,omitempty"`
	ValidationErrors   []string            `json:"validation_errors,omitempty"`
	WeeklyTable        *WeeklyTable        `json:"weekly_table,omitempty"`
	CourseSelection    []ResolvedSelection `json:"course_selection,omitempty"`
	SpanValidation     *SpanValidation     `json:"span_validation,omitempty"`
	ConflictValidation *ConflictValidation `json:"conflict_validation,omitempty"`
	GenerationMetadata *GenerationMetadata `json:"generation_metadata,omitempty"`
}

// GroupEntries buckets schedule entries by (course_code, group_code),
// preserving first-seen order for groups and entry order for sessions.
func GroupEntries(entries []ScheduleEntry) []CourseGroup {
	index := make(map[string]int)
	groups := make([]CourseGroup, 0)
	for _, entry := range entries {
		key := entry.CourseCode + "|" + entry.GroupCode
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CourseGroup{
				CourseCode: entry.CourseCode,
				GroupCode:  entry.GroupCode,
				CourseName: entry.CourseName,
			})
		}
		if groups[i].CourseName == "" && entry.CourseName != "" {
			groups[i].CourseName = entry.CourseName
		}
		groups[i].Sessions = append(groups[i].Sessions, Session{
			CourseName:   entry.CourseName,
			Instructor:   entry.Instructor,
			Location:     entry.Location,
			DayOfWeek:    entry.DayOfWeek,
			StartTime:    entry.StartTime,
			EndTime:      entry.EndTime,
			SessionType:  entry.SessionType,
			TimeSlot:     entry.TimeSlot,
			Span:         entry.Span,
			SharedGroups: entry.SharedGroups,
		})
	}
	return groups
}

// CalculateGroupSpans sums the weekly span of every session in a group. The
// extractor and the assembler both rely on this total; they must never
// disagree on the same input.
func CalculateGroupSpans(group CourseGroup) int {
	total := 0
	for _, s := range group.Sessions {
		total += s.Span
	}
	return total
}
