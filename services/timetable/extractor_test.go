package timetable

import (
	"reflect"
	"testing"
)

// saturdayGrid builds a minimal grid: one co-taught block "EEC 10105,06"
// spanning columns C-E under the Saturday label, followed by a lab block.
func saturdayGrid() [][]string {
	return [][]string{
		{"السبت", "", "EEC 10105,06", "", "", "x", "EEC 11302 C204", "", "", ""},
		{"", "", "اسس هندسة كهربية", "", "", "", "دوائر كهربية", "", "", ""},
		{"", "", "مدرج 3", "د. محمد احمد", "", "", "معمل 2", "", "", ""},
	}
}

func TestExtractEmptyGrid(t *testing.T) {
	e := NewExtractor(DefaultTables())
	if _, err := e.Extract(nil); err == nil {
		t.Fatalf("expected error for empty grid")
	}
	if _, err := e.Extract([][]string{}); err == nil {
		t.Fatalf("expected error for zero-row grid")
	}
}

func TestExtractSharedGroupBlock(t *testing.T) {
	e := NewExtractor(DefaultTables())
	result, err := e.Extract(saturdayGrid())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var shared []ScheduleEntry
	for _, entry := range result.Entries {
		if entry.CourseCode == "EEC 101" {
			shared = append(shared, entry)
		}
	}
	if len(shared) != 2 {
		t.Fatalf("expected 2 entries for EEC 101, got %d", len(shared))
	}

	for _, entry := range shared {
		if entry.DayOfWeek != "Saturday" {
			t.Fatalf("expected Saturday, got %s", entry.DayOfWeek)
		}
		if entry.Span != 3 {
			t.Fatalf("expected span 3, got %d", entry.Span)
		}
		if entry.TimeSlot != 1 {
			t.Fatalf("expected time slot 1, got %d", entry.TimeSlot)
		}
		if entry.StartTime != "9.00" || entry.EndTime != "11.15" {
			t.Fatalf("unexpected times %s - %s", entry.StartTime, entry.EndTime)
		}
		if entry.SessionType != SessionTypeLecture {
			t.Fatalf("co-taught block should infer lecture, got %s", entry.SessionType)
		}
		if entry.CourseName != "اسس هندسة كهربية" {
			t.Fatalf("unexpected course name %q", entry.CourseName)
		}
		if entry.Location != "مدرج 3" {
			t.Fatalf("unexpected location %q", entry.Location)
		}
		if entry.Instructor != "د. محمد احمد" {
			t.Fatalf("unexpected instructor %q", entry.Instructor)
		}
		if !reflect.DeepEqual(entry.SharedGroups, []string{"05", "06"}) {
			t.Fatalf("unexpected shared groups %v", entry.SharedGroups)
		}
	}
	if shared[0].GroupCode != "05" || shared[1].GroupCode != "06" {
		t.Fatalf("unexpected group codes %s, %s", shared[0].GroupCode, shared[1].GroupCode)
	}
}

func TestExtractSingleGroupWithRoom(t *testing.T) {
	e := NewExtractor(DefaultTables())
	result, err := e.Extract(saturdayGrid())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var lab *ScheduleEntry
	for i := range result.Entries {
		if result.Entries[i].CourseCode == "EEC 113" {
			lab = &result.Entries[i]
		}
	}
	if lab == nil {
		t.Fatalf("expected an entry for EEC 113")
	}
	if lab.GroupCode != "02" {
		t.Fatalf("expected group 02, got %s", lab.GroupCode)
	}
	if lab.SessionType != SessionTypeLab {
		t.Fatalf("single-group block should infer lab, got %s", lab.SessionType)
	}
	if lab.Location != "C204" {
		t.Fatalf("room captured in the header cell should win, got %q", lab.Location)
	}
	if lab.TimeSlot != 5 {
		t.Fatalf("expected time slot 5, got %d", lab.TimeSlot)
	}
	if len(lab.SharedGroups) != 0 {
		t.Fatalf("expected no shared groups, got %v", lab.SharedGroups)
	}
}

func TestExtractDayInheritance(t *testing.T) {
	grid := [][]string{
		{"الأحد", "", "EEC 12101", "", "", "", "", "", "", ""},
		{"", "", "تحليل دوائر", "", "", "", "", "", "", ""},
		{"", "", "101", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "EMP 10403", "", "", "", ""},
		{"", "", "", "", "", "ميكانيكا تطبيقية", "", "", "", ""},
		{"", "", "", "", "", "202", "", "", "", ""},
		{"الاثنين", "", "GEN 10201", "", "", "", "", "", "", ""},
		{"", "", "لغة انجليزية", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
	}
	e := NewExtractor(DefaultTables())
	result, err := e.Extract(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	days := map[string]string{}
	for _, entry := range result.Entries {
		days[entry.CourseCode] = entry.DayOfWeek
	}
	if days["EEC 121"] != "Sunday" {
		t.Fatalf("expected EEC 121 on Sunday, got %s", days["EEC 121"])
	}
	if days["EMP 104"] != "Sunday" {
		t.Fatalf("rows without a label must inherit the day, got %s", days["EMP 104"])
	}
	if days["GEN 102"] != "Monday" {
		t.Fatalf("expected GEN 102 on Monday, got %s", days["GEN 102"])
	}
}

func TestExtractIdempotence(t *testing.T) {
	grid := saturdayGrid()

	first, err := NewExtractor(DefaultTables()).Extract(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewExtractor(DefaultTables()).Extract(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first.CourseGroups, second.CourseGroups) {
		t.Fatalf("extraction is not idempotent")
	}

	// A shared instance must behave identically: scan state is per call.
	e := NewExtractor(DefaultTables())
	one, _ := e.Extract(grid)
	two, _ := e.Extract(grid)
	if !reflect.DeepEqual(one.CourseGroups, two.CourseGroups) {
		t.Fatalf("shared extractor instance leaked scan state between calls")
	}
}

func TestExtractSpanWarnings(t *testing.T) {
	grid := [][]string{
		{"السبت", "", "EEC 12503", "", "x", "", "", "", "", ""},
		{"", "", "الكترونيات", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
		{"الأحد", "", "EEC 12503", "", "", "x", "", "", "", ""},
		{"", "", "الكترونيات", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
	}
	e := NewExtractor(DefaultTables())
	result, err := e.Extract(grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.SpanWarnings) != 1 {
		t.Fatalf("expected one span warning, got %v", result.SpanWarnings)
	}
	// Inconsistent spans warn but never block extraction.
	if len(result.Entries) != 2 {
		t.Fatalf("expected both blocks extracted, got %d entries", len(result.Entries))
	}
}

func TestExtractSessionTypePolicyOverride(t *testing.T) {
	e := NewExtractor(DefaultTables())
	e.SetSessionTypePolicy(func(groups []string) string { return SessionTypeLecture })
	result, err := e.Extract(saturdayGrid())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, entry := range result.Entries {
		if entry.SessionType != SessionTypeLecture {
			t.Fatalf("policy override ignored for %s", entry.CourseCode)
		}
	}
}

func TestGroupSpansRoundTrip(t *testing.T) {
	result, err := NewExtractor(DefaultTables()).Extract(saturdayGrid())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Summing spans per (course, group) over raw entries must agree with
	// CalculateGroupSpans over the aggregated catalog.
	byKey := map[string]int{}
	for _, entry := range result.Entries {
		byKey[entry.CourseCode+"|"+entry.GroupCode] += entry.Span
	}
	for _, group := range result.CourseGroups {
		if got := CalculateGroupSpans(group); got != byKey[group.CourseCode+"|"+group.GroupCode] {
			t.Fatalf("span totals disagree for %s %s", group.CourseCode, group.GroupCode)
		}
	}
}
