package timetable

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Assembler turns a user's free-form course list plus the extracted catalog
// into a validated weekly table. Like the extractor it holds only immutable
// configuration and is safe to share across calls.
type Assembler struct {
	tables Tables
}

// NewAssembler builds an assembler over the given lookup tables. Pass the same
// Tables value used by the extractor so slot lookups stay in lock-step.
func NewAssembler(tables Tables) *Assembler {
	return &Assembler{tables: tables}
}

// placement is one scheduled interval on a day, in 0-based half-open slot
// coordinates, kept for conflict checking independently of cell rendering.
type placement struct {
	course string
	start  int
	end    int
}

// Assemble resolves the requested courses, validates spans, places sessions
// into the weekly grid and checks for cross-course time conflicts. Malformed
// user input never panics; it becomes a validation failure in the result.
// Only missing courses/groups are hard errors; span mismatches are warnings
// and time conflicts are reported without invalidating the result.
func (a *Assembler) Assemble(catalog []CourseGroup, req GenerateRequest) AssembleResult {
	byKey := make(map[string]*CourseGroup, len(catalog))
	groupsByCourse := make(map[string][]string)
	for i := range catalog {
		cg := &catalog[i]
		byKey[cg.CourseCode+"|"+cg.GroupCode] = cg
		groupsByCourse[cg.CourseCode] = append(groupsByCourse[cg.CourseCode], cg.GroupCode)
	}

	// Step 1: parse the user selection. Errors accumulate; nothing aborts early.
	var hardErrors []string
	selections := make([]ResolvedSelection, 0, len(req.DesiredCourses))
	for _, choice := range req.DesiredCourses {
		sel, ok := resolveChoice(choice, groupsByCourse)
		if !ok {
			hardErrors = append(hardErrors, fmt.Sprintf("Invalid course selection %q", choiceDisplay(choice)))
			continue
		}
		selections = append(selections, sel)
	}

	// Step 2: resolve course groups and validate spans against the canonical
	// table. A missing course/group is the only hard error class.
	spanVal := &SpanValidation{Errors: []string{}, Warnings: []string{}}
	type resolvedGroup struct {
		sel   ResolvedSelection
		group *CourseGroup
	}
	found := make([]resolvedGroup, 0, len(selections))
	for _, sel := range selections {
		cg, ok := byKey[sel.CourseCode+"|"+sel.GroupNumber]
		if !ok {
			msg := fmt.Sprintf("Course %s not found in Excel data", sel.CourseCode)
			spanVal.Errors = append(spanVal.Errors, msg)
			hardErrors = append(hardErrors, msg)
			continue
		}
		actual := CalculateGroupSpans(*cg)
		if expected, known := a.tables.CanonicalSpans[sel.CourseCode]; known && expected != actual {
			spanVal.Warnings = append(spanVal.Warnings,
				fmt.Sprintf("Course %s: expected %d spans, found %d", sel.CourseCode, expected, actual))
		}
		found = append(found, resolvedGroup{sel: sel, group: cg})
	}
	spanVal.Valid = len(spanVal.Errors) == 0

	// Step 3: place sessions into the weekly grid. A day or start time that
	// does not resolve silently drops that single session.
	schedule := make(map[string][]*CourseBlock, len(a.tables.DayOrder))
	for _, day := range a.tables.DayOrder {
		schedule[day] = make([]*CourseBlock, a.tables.SlotCount())
	}
	placementsByDay := make(map[string][]placement)
	placedKeys := make(map[string]struct{})

	for _, rg := range found {
		for _, session := range rg.group.Sessions {
			cells, dayOK := schedule[session.DayOfWeek]
			if !dayOK {
				continue
			}
			slot, slotOK := a.tables.SlotByStart(session.StartTime)
			if !slotOK {
				continue
			}
			slotIdx := slot.Number - 1

			// Two selected groups of a co-taught block resolve to the same
			// physical session; place it once.
			dupKey := rg.sel.CourseCode + "|" + session.DayOfWeek + "|" + session.StartTime
			if _, dup := placedKeys[dupKey]; dup {
				continue
			}
			placedKeys[dupKey] = struct{}{}

			span := session.Span
			if span < 1 {
				span = 1
			}
			end := slotIdx + span
			if end > a.tables.SlotCount() {
				end = a.tables.SlotCount()
			}
			placementsByDay[session.DayOfWeek] = append(placementsByDay[session.DayOfWeek],
				placement{course: rg.sel.CourseCode, start: slotIdx, end: end})

			sharedCodes := a.sharedGroupCodes(catalog, rg.sel.CourseCode, rg.sel.GroupNumber, session)
			courseLine := rg.sel.CourseCode + " " + strings.Join(sharedCodes, ",")
			detailLine := joinNonEmpty(session.Location, session.Instructor)

			for pos := 0; slotIdx+pos < end; pos++ {
				if cells[slotIdx+pos] != nil {
					// First block wins the cell; the clash surfaces in
					// conflict validation, not as a render error.
					continue
				}
				cells[slotIdx+pos] = &CourseBlock{
					CourseCode:     rg.sel.CourseCode,
					CourseLine:     courseLine,
					NameLine:       session.CourseName,
					DetailLine:     detailLine,
					SessionType:    session.SessionType,
					IsContinuation: pos > 0,
					SpanPosition:   pos + 1,
					TotalSpan:      span,
				}
			}
		}
	}

	conflictVal := a.detectConflicts(placementsByDay)

	totalSpans := 0
	for _, day := range a.tables.DayOrder {
		for _, cell := range schedule[day] {
			if cell != nil && !cell.IsContinuation {
				totalSpans += cell.TotalSpan
			}
		}
	}

	if len(hardErrors) > 0 {
		return AssembleResult{
			Success:          false,
			Error:            "schedule validation failed",
			ValidationErrors: hardErrors,
			SpanValidation:   spanVal,
		}
	}

	return AssembleResult{
		Success:            true,
		WeeklyTable:        &WeeklyTable{Structure: a.structure(), Schedule: schedule},
		CourseSelection:    selections,
		SpanValidation:     spanVal,
		ConflictValidation: conflictVal,
		GenerationMetadata: &GenerationMetadata{
			TotalSpans:  totalSpans,
			CourseCount: len(found),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// detectConflicts runs a sorted-interval overlap check per day over every
// placed session. Unlike a forward scan from non-continuation cells this
// catches a short block ending inside a span that started earlier, and it
// counts each overlapping cross-course pair exactly once.
func (a *Assembler) detectConflicts(placementsByDay map[string][]placement) *ConflictValidation {
	conflicts := make([]Conflict, 0)
	for _, day := range a.tables.DayOrder {
		intervals := placementsByDay[day]
		sort.Slice(intervals, func(i, j int) bool {
			if intervals[i].start == intervals[j].start {
				return intervals[i].course < intervals[j].course
			}
			return intervals[i].start < intervals[j].start
		})
		for i := range intervals {
			for j := i + 1; j < len(intervals); j++ {
				if intervals[j].start >= intervals[i].end {
					break
				}
				if intervals[i].course == intervals[j].course {
					continue
				}
				conflicts = append(conflicts, Conflict{
					Day:      day,
					TimeSlot: intervals[j].start + 1,
					Course1:  intervals[i].course,
					Course2:  intervals[j].course,
				})
			}
		}
	}
	return &ConflictValidation{
		HasConflicts:   len(conflicts) > 0,
		TotalConflicts: len(conflicts),
		Conflicts:      conflicts,
	}
}

// sharedGroupCodes scans the full catalog (not just the selection) for other
// groups of the same course holding an identical session. This is how a
// co-taught lecture renders as "EEC 101 05,06" even when the student only
// asked for one of the groups.
func (a *Assembler) sharedGroupCodes(catalog []CourseGroup, courseCode, ownGroup string, session Session) []string {
	codes := map[string]struct{}{ownGroup: {}}
	for i := range catalog {
		cg := &catalog[i]
		if cg.CourseCode != courseCode || cg.GroupCode == ownGroup {
			continue
		}
		for _, other := range cg.Sessions {
			if other.DayOfWeek == session.DayOfWeek &&
				other.StartTime == session.StartTime &&
				other.EndTime == session.EndTime &&
				other.SessionType == session.SessionType {
				codes[cg.GroupCode] = struct{}{}
				break
			}
		}
	}
	out := make([]string, 0, len(codes))
	for code := range codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (a *Assembler) structure() TableStructure {
	return TableStructure{Days: a.tables.DayOrder, TimeSlots: a.tables.Slots}
}

func choiceDisplay(choice CourseChoice) string {
	if choice.raw != "" {
		return choice.raw
	}
	if choice.Group != "" {
		return choice.Code + " " + choice.Group
	}
	return choice.Code
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, " - ")
}
