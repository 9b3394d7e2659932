package timetable

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// CourseChoice is one desired course in a generation request. The API accepts
// either a free-form string ("EEC 101", "EEC 10105", "EEC 10105,06") or an
// object {"code": "EEC 101", "group": "05"}.
type CourseChoice struct {
	Code  string `json:"code"`
	Group string `json:"group"`

	raw string
}

// UnmarshalJSON accepts both the string and the object form.
func (cc *CourseChoice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		cc.raw = s
		return nil
	}
	type plain CourseChoice
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	cc.Code = obj.Code
	cc.Group = obj.Group
	return nil
}

// ChoiceString builds a string-form choice, used by tests and internal callers.
func ChoiceString(s string) CourseChoice {
	return CourseChoice{raw: s}
}

// GenerateRequest is the assembly request body.
type GenerateRequest struct {
	DesiredCourses []CourseChoice `json:"desired_courses" validate:"required,min=1"`
}

var (
	// "EEC 10105" or "EEC 10105,06" — explicit group, optionally with a
	// co-taught partner the student does not need to repeat.
	reChoiceWithGroup = regexp.MustCompile(`^([A-Za-z]{2,4})\s*(\d{3})(\d{2})(?:,\d{2})*$`)
	// "EEC 101" — bare course, group resolved from the catalog.
	reChoiceBare = regexp.MustCompile(`^([A-Za-z]{2,4})\s*(\d{3})$`)
)

// resolveChoice turns one raw choice into a (course_code, group_number) pair.
// A bare course goes through smart group selection against the catalog. The
// boolean reports whether the input was parseable at all.
func resolveChoice(choice CourseChoice, groupsByCourse map[string][]string) (ResolvedSelection, bool) {
	if choice.raw != "" {
		trimmed := strings.TrimSpace(choice.raw)
		if m := reChoiceWithGroup.FindStringSubmatch(trimmed); m != nil {
			return ResolvedSelection{
				CourseCode:  courseCodeOf(m[1], m[2]),
				GroupNumber: padGroup(m[3]),
			}, true
		}
		if m := reChoiceBare.FindStringSubmatch(trimmed); m != nil {
			code := courseCodeOf(m[1], m[2])
			return ResolvedSelection{
				CourseCode:  code,
				GroupNumber: smartGroup(code, groupsByCourse),
			}, true
		}
		return ResolvedSelection{}, false
	}

	code := strings.TrimSpace(strings.ToUpper(choice.Code))
	if code == "" {
		return ResolvedSelection{}, false
	}
	group := strings.TrimSpace(choice.Group)
	if group == "" {
		group = smartGroup(code, groupsByCourse)
	}
	return ResolvedSelection{CourseCode: code, GroupNumber: padGroup(group)}, true
}

// smartGroup picks a group for a course the user named without one: "01" when
// the catalog offers it, otherwise the lexicographically first available
// group. A course with no catalog groups defaults to "01" and surfaces later
// as a course-not-found validation error rather than being silently dropped.
func smartGroup(courseCode string, groupsByCourse map[string][]string) string {
	groups := append([]string(nil), groupsByCourse[courseCode]...)
	if len(groups) == 0 {
		return "01"
	}
	sort.Strings(groups)
	for _, g := range groups {
		if g == "01" {
			return g
		}
	}
	return groups[0]
}
