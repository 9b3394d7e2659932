package timetable

import (
	"regexp"
	"strings"
	"unicode"
)

// cellKind tags the text pattern a grid cell matched. The grid encodes course
// blocks in several layouts, so parsing is an ordered cascade: the first
// matcher that accepts the cell wins.
type cellKind int

const (
	cellNone cellKind = iota
	cellShared
	cellSingleWithRoom
	cellBasic
	cellFallback
)

// parsedCell is the outcome of the cascade for one cell.
type parsedCell struct {
	kind       cellKind
	courseCode string
	groups     []string
	room       string
}

var (
	// "EEC 10105,06" — one block co-taught by two groups.
	reCellShared = regexp.MustCompile(`^([A-Za-z]{2,4})\s*(\d{3})(\d{2}),(\d{2})$`)
	// "EEC 10105 C204" — single group with the room appended in the same cell.
	reCellSingleRoom = regexp.MustCompile(`^([A-Za-z]{2,4})\s*(\d{3})(\d{2})\s+(\S.*)$`)
	// "EEC 10105" or "EEC 101" — the bare forms. Without an explicit group the
	// last two digits of the course number double as the group code.
	reCellBasic = regexp.MustCompile(`^([A-Za-z]{2,4})\s*(\d{3})(\d{2})?$`)
	// Graceful degradation: any LETTERS DIGITS substring.
	reCellFallback = regexp.MustCompile(`([A-Za-z]{2,4})\s*(\d{2,5})`)

	// Anything that looks like the start of a course code, used to stop span
	// lookahead and to reject course cells as names/instructors.
	reCourseLike = regexp.MustCompile(`[A-Za-z]{2,4}\s*\d{3}`)

	reRoomLatin  = regexp.MustCompile(`^[A-Za-z]{0,2}\s?\d{2,4}[A-Za-z]?$`)
	reRoomArabic = regexp.MustCompile(`^(?:مدرج|معمل|قاعة)\s*\d{0,4}$`)
)

// instructor cells carry academic honorifics ("د." doctor, "م." engineer, ...).
var instructorMarkers = []string{
	"د.", "د/", "أ.د", "ا.د", "أ/", "م.", "م/", "دكتور", "مهندس", "أستاذ",
}

var cellMatchers = []func(string) (parsedCell, bool){
	matchSharedCell,
	matchSingleRoomCell,
	matchBasicCell,
	matchFallbackCell,
}

// parseCourseCell runs the cascade over one trimmed cell. A cell that matches
// nothing yields cellNone, which is not an error: most grid cells are not
// course starts.
func parseCourseCell(raw string) parsedCell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return parsedCell{kind: cellNone}
	}
	for _, match := range cellMatchers {
		if pc, ok := match(trimmed); ok {
			return pc
		}
	}
	return parsedCell{kind: cellNone}
}

func matchSharedCell(s string) (parsedCell, bool) {
	m := reCellShared.FindStringSubmatch(s)
	if m == nil {
		return parsedCell{}, false
	}
	return parsedCell{
		kind:       cellShared,
		courseCode: courseCodeOf(m[1], m[2]),
		groups:     []string{padGroup(m[3]), padGroup(m[4])},
	}, true
}

func matchSingleRoomCell(s string) (parsedCell, bool) {
	m := reCellSingleRoom.FindStringSubmatch(s)
	if m == nil {
		return parsedCell{}, false
	}
	return parsedCell{
		kind:       cellSingleWithRoom,
		courseCode: courseCodeOf(m[1], m[2]),
		groups:     []string{padGroup(m[3])},
		room:       strings.TrimSpace(m[4]),
	}, true
}

func matchBasicCell(s string) (parsedCell, bool) {
	m := reCellBasic.FindStringSubmatch(s)
	if m == nil {
		return parsedCell{}, false
	}
	group := m[3]
	if group == "" {
		group = m[2][1:]
	}
	return parsedCell{
		kind:       cellBasic,
		courseCode: courseCodeOf(m[1], m[2]),
		groups:     []string{padGroup(group)},
	}, true
}

func matchFallbackCell(s string) (parsedCell, bool) {
	m := reCellFallback.FindStringSubmatch(s)
	if m == nil {
		return parsedCell{}, false
	}
	dept, digits := m[1], m[2]
	pc := parsedCell{kind: cellFallback}
	switch {
	case len(digits) >= 5:
		pc.courseCode = courseCodeOf(dept, digits[:3])
		pc.groups = []string{padGroup(digits[3:5])}
	case len(digits) >= 3:
		pc.courseCode = courseCodeOf(dept, digits[:3])
		pc.groups = []string{padGroup(digits[1:3])}
	default:
		pc.courseCode = courseCodeOf(dept, digits)
		pc.groups = []string{padGroup(digits)}
	}
	return pc, true
}

// courseCodeOf normalizes a department prefix and number to "DEPT NNN".
func courseCodeOf(dept, number string) string {
	return strings.ToUpper(dept) + " " + number
}

// padGroup zero-pads a group code to two digits.
func padGroup(g string) string {
	if len(g) >= 2 {
		return g[len(g)-2:]
	}
	return "0" + g
}

// isCourseLike reports whether the cell starts a new course block pattern.
func isCourseLike(s string) bool {
	return reCourseLike.MatchString(strings.TrimSpace(s))
}

// isRoomText reports whether the cell looks like a room or hall designation,
// either a Latin room number ("C204", "101") or an Arabic hall word
// ("مدرج 3", "معمل").
func isRoomText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	return reRoomLatin.MatchString(trimmed) || reRoomArabic.MatchString(trimmed)
}

// isInstructorText reports whether the cell looks like an instructor name:
// it carries an honorific marker, or it is long Arabic text that is neither a
// course code nor a room.
func isInstructorText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	for _, marker := range instructorMarkers {
		if strings.Contains(trimmed, marker) {
			return true
		}
	}
	if isCourseLike(trimmed) || isRoomText(trimmed) {
		return false
	}
	return arabicRuneCount(trimmed) >= 8
}

func arabicRuneCount(s string) int {
	count := 0
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			count++
		}
	}
	return count
}
