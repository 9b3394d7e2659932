package timetable

import "testing"

func TestParseCourseCell(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expKind   cellKind
		expCourse string
		expGroups []string
		expRoom   string
	}{
		{
			name:      "shared group form",
			input:     "EEC 10105,06",
			expKind:   cellShared,
			expCourse: "EEC 101",
			expGroups: []string{"05", "06"},
		},
		{
			name:      "single group with room",
			input:     "EEC 11302 C204",
			expKind:   cellSingleWithRoom,
			expCourse: "EEC 113",
			expGroups: []string{"02"},
			expRoom:   "C204",
		},
		{
			name:      "explicit group without room",
			input:     "EMP 10403",
			expKind:   cellBasic,
			expCourse: "EMP 104",
			expGroups: []string{"03"},
		},
		{
			name:      "bare course derives group from course number",
			input:     "EEC 142",
			expKind:   cellBasic,
			expCourse: "EEC 142",
			expGroups: []string{"42"},
		},
		{
			name:      "no space between dept and digits",
			input:     "EEC10105",
			expKind:   cellBasic,
			expCourse: "EEC 101",
			expGroups: []string{"05"},
		},
		{
			name:      "fallback inside longer text",
			input:     "مقرر EEC 10104 اختياري",
			expKind:   cellFallback,
			expCourse: "EEC 101",
			expGroups: []string{"04"},
		},
		{
			name:    "arabic prose is not a course",
			input:   "د. محمد عبد الرحمن",
			expKind: cellNone,
		},
		{
			name:    "empty cell",
			input:   "   ",
			expKind: cellNone,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			pc := parseCourseCell(tc.input)
			if pc.kind != tc.expKind {
				t.Fatalf("expected kind %d, got %d", tc.expKind, pc.kind)
			}
			if tc.expKind == cellNone {
				return
			}
			if pc.courseCode != tc.expCourse {
				t.Fatalf("expected course %q, got %q", tc.expCourse, pc.courseCode)
			}
			if len(pc.groups) != len(tc.expGroups) {
				t.Fatalf("expected groups %v, got %v", tc.expGroups, pc.groups)
			}
			for i, g := range tc.expGroups {
				if pc.groups[i] != g {
					t.Fatalf("expected groups %v, got %v", tc.expGroups, pc.groups)
				}
			}
			if pc.room != tc.expRoom {
				t.Fatalf("expected room %q, got %q", tc.expRoom, pc.room)
			}
		})
	}
}

func TestIsRoomText(t *testing.T) {
	rooms := []string{"101", "C204", "B 12", "مدرج 3", "معمل", "قاعة 12"}
	for _, r := range rooms {
		if !isRoomText(r) {
			t.Fatalf("expected %q to look like a room", r)
		}
	}
	notRooms := []string{"", "EEC 10105", "د. محمد", "hello world"}
	for _, r := range notRooms {
		if isRoomText(r) {
			t.Fatalf("expected %q not to look like a room", r)
		}
	}
}

func TestIsInstructorText(t *testing.T) {
	instructors := []string{"د. محمد احمد", "أ.د خالد حسن", "م/ سارة على", "دكتور وليد"}
	for _, s := range instructors {
		if !isInstructorText(s) {
			t.Fatalf("expected %q to look like an instructor", s)
		}
	}
	// long Arabic text without honorifics still counts
	if !isInstructorText("عبد الرحمن محمود السيد") {
		t.Fatalf("expected long arabic text to look like an instructor")
	}
	notInstructors := []string{"", "C204", "EEC 10105", "مدرج 3"}
	for _, s := range notInstructors {
		if isInstructorText(s) {
			t.Fatalf("expected %q not to look like an instructor", s)
		}
	}
}

func TestPadGroup(t *testing.T) {
	if got := padGroup("5"); got != "05" {
		t.Fatalf("expected 05, got %s", got)
	}
	if got := padGroup("05"); got != "05" {
		t.Fatalf("expected 05, got %s", got)
	}
	if got := padGroup("105"); got != "05" {
		t.Fatalf("expected 05, got %s", got)
	}
}
