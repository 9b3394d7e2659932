package timetable

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Grid layout conventions of the source spreadsheets: column 0 carries the
// Arabic day label on rows where a new day begins, columns 2-9 are the eight
// fixed periods, and blocks occupy three rows (code+groups / Arabic course
// name / room and instructor).
const (
	dayColumn        = 0
	firstSlotColumn  = 2
	blockRows        = 3
	maxSpanLookahead = 3
)

// ErrEmptyGrid is returned when the input is structurally unreadable. Malformed
// individual cells are never fatal; they are simply skipped.
var ErrEmptyGrid = errors.New("timetable grid is empty")

// SessionTypePolicy decides the session type of a detected block from its
// group list. The default assumes co-taught blocks are lectures and everything
// else is a lab; that is a heuristic, not a guarantee, so callers may swap it.
type SessionTypePolicy func(groups []string) string

// DefaultSessionTypePolicy is the "more than one group means lecture" guess
// baked into the source timetables.
func DefaultSessionTypePolicy(groups []string) string {
	if len(groups) > 1 {
		return SessionTypeLecture
	}
	return SessionTypeLab
}

// Extractor recovers course blocks from a raw spreadsheet grid. It holds only
// immutable configuration; all scan bookkeeping lives in a per-call value, so
// one Extractor is safe to share across concurrent calls.
type Extractor struct {
	tables      Tables
	sessionType SessionTypePolicy
}

// NewExtractor builds an extractor over the given lookup tables.
func NewExtractor(tables Tables) *Extractor {
	return &Extractor{tables: tables, sessionType: DefaultSessionTypePolicy}
}

// SetSessionTypePolicy replaces the lecture/lab inference heuristic.
func (e *Extractor) SetSessionTypePolicy(policy SessionTypePolicy) {
	if policy != nil {
		e.sessionType = policy
	}
}

// scanState is the mutable bookkeeping of a single Extract call. Keeping it as
// a value created at entry (rather than fields on the Extractor) makes state
// leaking between calls on a shared instance structurally impossible.
type scanState struct {
	currentDay string
	processed  map[[2]int]struct{}
	spansSeen  map[string]map[int]struct{}
}

func newScanState() *scanState {
	return &scanState{
		processed: make(map[[2]int]struct{}),
		spansSeen: make(map[string]map[int]struct{}),
	}
}

func (st *scanState) isProcessed(row, col int) bool {
	_, ok := st.processed[[2]int{row, col}]
	return ok
}

// markBlock flags the 3-row x span-column rectangle so later scans skip it.
func (st *scanState) markBlock(row, col, span int) {
	for r := row; r < row+blockRows; r++ {
		for c := col; c < col+span; c++ {
			st.processed[[2]int{r, c}] = struct{}{}
		}
	}
}

func (st *scanState) recordSpan(courseCode string, span int) {
	seen, ok := st.spansSeen[courseCode]
	if !ok {
		seen = make(map[int]struct{})
		st.spansSeen[courseCode] = seen
	}
	seen[span] = struct{}{}
}

// Extract scans the grid and emits one ScheduleEntry per (course, group) per
// detected block, plus the entries bucketed into CourseGroup aggregates. Only
// a structurally unreadable grid produces an error.
func (e *Extractor) Extract(grid [][]string) (*ExtractResult, error) {
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}

	st := newScanState()
	entries := make([]ScheduleEntry, 0)

	for row := range grid {
		if day, ok := e.tables.Days[strings.TrimSpace(cellAt(grid, row, dayColumn))]; ok {
			st.currentDay = day
		}

		for slot := 0; slot < e.tables.SlotCount(); slot++ {
			col := firstSlotColumn + slot
			if st.isProcessed(row, col) {
				continue
			}
			pc := parseCourseCell(cellAt(grid, row, col))
			if pc.kind == cellNone || len(pc.groups) == 0 {
				continue
			}

			span := e.measureSpan(grid, row, col)
			name := e.extractCourseName(grid, row+1, col, span)
			room, instructor := e.extractRoomAndInstructor(grid, row+2, col, span, pc.room)

			st.markBlock(row, col, span)
			st.recordSpan(pc.courseCode, span)

			endSlot := slot + span - 1
			if endSlot >= e.tables.SlotCount() {
				endSlot = e.tables.SlotCount() - 1
			}

			var shared []string
			if len(pc.groups) > 1 {
				shared = append([]string(nil), pc.groups...)
				sort.Strings(shared)
			}
			sessionType := e.sessionType(pc.groups)

			for _, group := range pc.groups {
				entries = append(entries, ScheduleEntry{
					CourseCode:   pc.courseCode,
					GroupCode:    group,
					CourseName:   name,
					Instructor:   instructor,
					Location:     room,
					DayOfWeek:    st.currentDay,
					StartTime:    e.tables.Slots[slot].StartTime,
					EndTime:      e.tables.Slots[endSlot].EndTime,
					SessionType:  sessionType,
					TimeSlot:     slot + 1,
					Span:         span,
					SharedGroups: shared,
				})
			}
		}
	}

	result := &ExtractResult{
		Entries:      entries,
		CourseGroups: GroupEntries(entries),
		SpanWarnings: spanWarnings(st.spansSeen),
	}
	for _, w := range result.SpanWarnings {
		logrus.WithField("component", "extractor").Warn(w)
	}
	return result, nil
}

// measureSpan looks ahead up to three columns past the block start. Empty
// cells, room numbers and instructor-like Arabic text extend the span; a cell
// that itself starts a course block stops it. A block always occupies at least
// its own starting column.
func (e *Extractor) measureSpan(grid [][]string, row, col int) int {
	span := 1
	lastCol := firstSlotColumn + e.tables.SlotCount() - 1
	for step := 1; step <= maxSpanLookahead; step++ {
		next := col + step
		if next > lastCol {
			break
		}
		cell := strings.TrimSpace(cellAt(grid, row, next))
		if isCourseLike(cell) {
			break
		}
		if cell == "" || isRoomText(cell) || isInstructorText(cell) {
			span++
			continue
		}
		break
	}
	return span
}

// extractCourseName scans the name row across the span for the first
// non-empty cell that is neither a course code nor a room.
func (e *Extractor) extractCourseName(grid [][]string, row, col, span int) string {
	for c := col; c < col+span; c++ {
		cell := strings.TrimSpace(cellAt(grid, row, c))
		if cell == "" || isCourseLike(cell) || isRoomText(cell) {
			continue
		}
		return cell
	}
	return ""
}

// extractRoomAndInstructor resolves the block's room and instructor. The room
// captured in the header cell wins when it matches the room pattern; otherwise
// the detail row is scanned. The instructor is the first detail-row cell that
// is neither a room nor a course code.
func (e *Extractor) extractRoomAndInstructor(grid [][]string, row, col, span int, headerRoom string) (string, string) {
	room := ""
	if isRoomText(headerRoom) {
		room = strings.TrimSpace(headerRoom)
	}
	instructor := ""
	for c := col; c < col+span; c++ {
		cell := strings.TrimSpace(cellAt(grid, row, c))
		if cell == "" {
			continue
		}
		if isRoomText(cell) {
			if room == "" {
				room = cell
			}
			continue
		}
		if instructor == "" && !isCourseLike(cell) {
			instructor = cell
		}
	}
	return room, instructor
}

func spanWarnings(spansSeen map[string]map[int]struct{}) []string {
	courses := make([]string, 0, len(spansSeen))
	for course, seen := range spansSeen {
		if len(seen) > 1 {
			courses = append(courses, course)
		}
	}
	sort.Strings(courses)
	warnings := make([]string, 0, len(courses))
	for _, course := range courses {
		spans := make([]int, 0, len(spansSeen[course]))
		for span := range spansSeen[course] {
			spans = append(spans, span)
		}
		sort.Ints(spans)
		warnings = append(warnings, fmt.Sprintf("course %s has inconsistent block spans %v", course, spans))
	}
	return warnings
}

// cellAt reads a cell tolerating ragged rows; missing cells are empty.
func cellAt(grid [][]string, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	if col < 0 || col >= len(grid[row]) {
		return ""
	}
	return grid[row][col]
}
