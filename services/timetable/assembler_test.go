package timetable

import (
	"encoding/json"
	"strings"
	"testing"
)

func labSession(day, start, end string, slot, span int) Session {
	return Session{
		CourseName:  "مادة",
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		SessionType: SessionTypeLab,
		TimeSlot:    slot,
		Span:        span,
	}
}

func testCatalog() []CourseGroup {
	lecture := Session{
		CourseName:   "اسس هندسة كهربية",
		Instructor:   "د. محمد احمد",
		Location:     "مدرج 3",
		DayOfWeek:    "Saturday",
		StartTime:    "9.00",
		EndTime:      "11.15",
		SessionType:  SessionTypeLecture,
		TimeSlot:     1,
		Span:         3,
		SharedGroups: []string{"05", "06"},
	}
	return []CourseGroup{
		{CourseCode: "EEC 101", GroupCode: "05", CourseName: "اسس هندسة كهربية", Sessions: []Session{lecture}},
		{CourseCode: "EEC 101", GroupCode: "06", CourseName: "اسس هندسة كهربية", Sessions: []Session{lecture}},
		{CourseCode: "EEC 113", GroupCode: "02", Sessions: []Session{
			labSession("Sunday", "12.00", "12.45", 5, 1),
			labSession("Monday", "9.00", "11.15", 1, 3),
		}},
		{CourseCode: "EMP 104", GroupCode: "01", Sessions: []Session{
			labSession("Saturday", "9.45", "10.30", 2, 1),
		}},
	}
}

func TestAssembleSuccess(t *testing.T) {
	a := NewAssembler(DefaultTables())
	result := a.Assemble(testCatalog(), GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 10105"), ChoiceString("EEC 11302")},
	})

	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.ValidationErrors)
	}
	if result.WeeklyTable == nil {
		t.Fatalf("expected a weekly table")
	}
	if len(result.WeeklyTable.Structure.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(result.WeeklyTable.Structure.Days))
	}

	saturday := result.WeeklyTable.Schedule["Saturday"]
	if len(saturday) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(saturday))
	}
	head := saturday[0]
	if head == nil || head.IsContinuation {
		t.Fatalf("expected a starting block in Saturday slot 1")
	}
	if head.TotalSpan != 3 {
		t.Fatalf("expected total span 3, got %d", head.TotalSpan)
	}
	for pos := 1; pos < 3; pos++ {
		cell := saturday[pos]
		if cell == nil || !cell.IsContinuation {
			t.Fatalf("expected continuation cell at slot %d", pos+1)
		}
		if cell.SpanPosition != pos+1 {
			t.Fatalf("expected span position %d, got %d", pos+1, cell.SpanPosition)
		}
	}

	// 3 (lecture) + 1 + 3 (labs) non-continuation spans
	if result.GenerationMetadata.TotalSpans != 7 {
		t.Fatalf("expected total spans 7, got %d", result.GenerationMetadata.TotalSpans)
	}
}

func TestAssembleSharedGroupRendering(t *testing.T) {
	a := NewAssembler(DefaultTables())
	result := a.Assemble(testCatalog(), GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 10105")},
	})
	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.ValidationErrors)
	}
	head := result.WeeklyTable.Schedule["Saturday"][0]
	if head == nil {
		t.Fatalf("expected a block in Saturday slot 1")
	}
	// Group 06 attends the identical session, so it renders alongside 05 even
	// though the student only asked for 05.
	if head.CourseLine != "EEC 101 05,06" {
		t.Fatalf("expected co-taught course line, got %q", head.CourseLine)
	}
	if !strings.Contains(head.DetailLine, "مدرج 3") || !strings.Contains(head.DetailLine, "د. محمد احمد") {
		t.Fatalf("expected hall and instructor in detail line, got %q", head.DetailLine)
	}
}

func TestAssembleSmartGroupSelection(t *testing.T) {
	// Catalog offers groups 02 and 05 for EEC 101, no 01: the bare selection
	// must resolve to the lexicographically first group.
	catalog := []CourseGroup{
		{CourseCode: "EEC 101", GroupCode: "05", Sessions: []Session{labSession("Saturday", "9.00", "9.45", 1, 1)}},
		{CourseCode: "EEC 101", GroupCode: "02", Sessions: []Session{labSession("Sunday", "9.00", "9.45", 1, 1)}},
	}
	a := NewAssembler(DefaultTables())
	result := a.Assemble(catalog, GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 101")},
	})
	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.ValidationErrors)
	}
	if len(result.CourseSelection) != 1 {
		t.Fatalf("expected one resolved selection, got %d", len(result.CourseSelection))
	}
	if got := result.CourseSelection[0].GroupNumber; got != "02" {
		t.Fatalf("expected smart selection to pick group 02, got %s", got)
	}
}

func TestAssemblePrefersGroup01(t *testing.T) {
	catalog := []CourseGroup{
		{CourseCode: "EEC 101", GroupCode: "03", Sessions: []Session{labSession("Saturday", "9.00", "9.45", 1, 1)}},
		{CourseCode: "EEC 101", GroupCode: "01", Sessions: []Session{labSession("Sunday", "9.00", "9.45", 1, 1)}},
	}
	result := NewAssembler(DefaultTables()).Assemble(catalog, GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 101")},
	})
	if got := result.CourseSelection[0].GroupNumber; got != "01" {
		t.Fatalf("expected group 01 to be preferred, got %s", got)
	}
}

func TestAssembleCourseNotFound(t *testing.T) {
	a := NewAssembler(DefaultTables())
	result := a.Assemble(testCatalog(), GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 999")},
	})
	if result.Success {
		t.Fatalf("expected failure for unknown course")
	}
	if len(result.ValidationErrors) != 1 {
		t.Fatalf("expected one validation error, got %v", result.ValidationErrors)
	}
	if result.ValidationErrors[0] != "Course EEC 999 not found in Excel data" {
		t.Fatalf("unexpected message %q", result.ValidationErrors[0])
	}
}

func TestAssembleErrorsAccumulate(t *testing.T) {
	a := NewAssembler(DefaultTables())
	result := a.Assemble(testCatalog(), GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 999"), ChoiceString("EMP 888"), ChoiceString("EEC 10105")},
	})
	if result.Success {
		t.Fatalf("expected failure")
	}
	// Both missing courses are reported in one pass.
	if len(result.ValidationErrors) != 2 {
		t.Fatalf("expected two accumulated errors, got %v", result.ValidationErrors)
	}
}

func TestAssembleSpanMismatchIsWarningOnly(t *testing.T) {
	// EEC 101 expects 3 canonical spans; this group carries 4.
	catalog := []CourseGroup{
		{CourseCode: "EEC 101", GroupCode: "01", Sessions: []Session{
			labSession("Saturday", "9.00", "11.15", 1, 3),
			labSession("Sunday", "9.00", "9.45", 1, 1),
		}},
	}
	result := NewAssembler(DefaultTables()).Assemble(catalog, GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 10101")},
	})
	if !result.Success {
		t.Fatalf("span mismatch must not fail the request, got %v", result.ValidationErrors)
	}
	if len(result.SpanValidation.Warnings) != 1 {
		t.Fatalf("expected one span warning, got %v", result.SpanValidation.Warnings)
	}
	if len(result.SpanValidation.Errors) != 0 {
		t.Fatalf("expected no span errors, got %v", result.SpanValidation.Errors)
	}
}

func TestAssembleConflictDetection(t *testing.T) {
	catalog := []CourseGroup{
		{CourseCode: "EEC 101", GroupCode: "01", Sessions: []Session{labSession("Saturday", "9.00", "11.15", 1, 3)}},
		{CourseCode: "EEC 113", GroupCode: "01", Sessions: []Session{labSession("Saturday", "9.00", "9.45", 1, 1)}},
	}
	result := NewAssembler(DefaultTables()).Assemble(catalog, GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 10101"), ChoiceString("EEC 11301")},
	})

	// Conflicts are reported but never flip success.
	if !result.Success {
		t.Fatalf("conflicts must not fail the request, got %v", result.ValidationErrors)
	}
	if !result.ConflictValidation.HasConflicts {
		t.Fatalf("expected a conflict")
	}
	if result.ConflictValidation.TotalConflicts != 1 {
		t.Fatalf("expected exactly one conflict, got %d", result.ConflictValidation.TotalConflicts)
	}
	c := result.ConflictValidation.Conflicts[0]
	if c.Day != "Saturday" || c.TimeSlot != 1 {
		t.Fatalf("unexpected conflict location %s slot %d", c.Day, c.TimeSlot)
	}
}

func TestAssembleOverlapInsideSpan(t *testing.T) {
	// The short block starts inside the long block's span but not at its
	// head: interval overlap must still catch it.
	catalog := []CourseGroup{
		{CourseCode: "EEC 101", GroupCode: "01", Sessions: []Session{labSession("Monday", "9.00", "11.15", 1, 3)}},
		{CourseCode: "GEN 102", GroupCode: "01", Sessions: []Session{labSession("Monday", "9.45", "10.30", 2, 1)}},
	}
	result := NewAssembler(DefaultTables()).Assemble(catalog, GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 10101"), ChoiceString("GEN 10201")},
	})
	if result.ConflictValidation.TotalConflicts != 1 {
		t.Fatalf("expected overlap conflict, got %d", result.ConflictValidation.TotalConflicts)
	}
	if result.ConflictValidation.Conflicts[0].TimeSlot != 2 {
		t.Fatalf("expected conflict at slot 2, got %d", result.ConflictValidation.Conflicts[0].TimeSlot)
	}
}

func TestAssembleCoTaughtPairPlacedOnce(t *testing.T) {
	// Selecting both co-taught groups of the same course is not a conflict:
	// they are one physical session.
	result := NewAssembler(DefaultTables()).Assemble(testCatalog(), GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 10105"), ChoiceString("EEC 10106")},
	})
	if !result.Success {
		t.Fatalf("expected success, got %v", result.ValidationErrors)
	}
	if result.ConflictValidation.HasConflicts {
		t.Fatalf("co-taught groups must not conflict with themselves")
	}
	if result.GenerationMetadata.TotalSpans != 3 {
		t.Fatalf("expected the shared session to be placed once, got %d spans", result.GenerationMetadata.TotalSpans)
	}
}

func TestAssembleObjectChoices(t *testing.T) {
	var req GenerateRequest
	body := `{"desired_courses": ["EEC 10105", {"code": "EMP 104", "group": "1"}, {"code": "EEC 113"}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := NewAssembler(DefaultTables()).Assemble(testCatalog(), req)
	if !result.Success {
		t.Fatalf("expected success, got %v", result.ValidationErrors)
	}
	resolved := map[string]string{}
	for _, sel := range result.CourseSelection {
		resolved[sel.CourseCode] = sel.GroupNumber
	}
	if resolved["EMP 104"] != "01" {
		t.Fatalf("expected object group to be zero-padded, got %s", resolved["EMP 104"])
	}
	// Group omitted in object form goes through smart selection too.
	if resolved["EEC 113"] != "02" {
		t.Fatalf("expected smart-selected group 02, got %s", resolved["EEC 113"])
	}
}

func TestAssembleUnknownDayDropsSession(t *testing.T) {
	catalog := []CourseGroup{
		{CourseCode: "EEC 101", GroupCode: "01", Sessions: []Session{
			labSession("Noday", "9.00", "9.45", 1, 1),
			labSession("Saturday", "99.99", "11.15", 1, 1),
			labSession("Saturday", "9.00", "9.45", 1, 1),
		}},
	}
	result := NewAssembler(DefaultTables()).Assemble(catalog, GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("EEC 10101")},
	})
	if !result.Success {
		t.Fatalf("expected success, got %v", result.ValidationErrors)
	}
	// Unresolvable day/time sessions are silently skipped, the rest placed.
	if result.GenerationMetadata.TotalSpans != 1 {
		t.Fatalf("expected exactly one placed span, got %d", result.GenerationMetadata.TotalSpans)
	}
}

func TestAssembleMalformedSelection(t *testing.T) {
	result := NewAssembler(DefaultTables()).Assemble(testCatalog(), GenerateRequest{
		DesiredCourses: []CourseChoice{ChoiceString("not a course")},
	})
	if result.Success {
		t.Fatalf("expected failure for unparseable selection")
	}
	if len(result.ValidationErrors) != 1 {
		t.Fatalf("expected one validation error, got %v", result.ValidationErrors)
	}
}
