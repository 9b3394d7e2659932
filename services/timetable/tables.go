package timetable

// TimeSlot is one of the eight fixed 45-minute periods of the university day.
// Times use the "H.MM" form the source spreadsheets encode.
type TimeSlot struct {
	Number    int    `json:"number"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Label     string `json:"label"`
}

// Tables bundles the fixed lookup data shared by the extractor and the
// assembler. Both components must be built from the same Tables value so the
// time-slot table cannot drift between them.
type Tables struct {
	// Days maps the Arabic day labels found in column 0 of the grid to their
	// canonical English names.
	Days map[string]string

	// DayOrder is the academic week, Saturday through Friday.
	DayOrder []string

	// Slots are the eight fixed periods, in column order.
	Slots []TimeSlot

	// CanonicalSpans maps a course code to its expected total weekly span.
	// Courses without an entry carry no expectation.
	CanonicalSpans map[string]int
}

var arabicDayNames = map[string]string{
	"السبت":    "Saturday",
	"الأحد":    "Sunday",
	"الاحد":    "Sunday",
	"الاثنين":  "Monday",
	"الإثنين":  "Monday",
	"الثلاثاء": "Tuesday",
	"الأربعاء": "Wednesday",
	"الاربعاء": "Wednesday",
	"الخميس":   "Thursday",
	"الجمعة":   "Friday",
}

var weekDayOrder = []string{
	"Saturday",
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
}

var defaultTimeSlots = []TimeSlot{
	{Number: 1, StartTime: "9.00", EndTime: "9.45", Label: "9.00 - 9.45"},
	{Number: 2, StartTime: "9.45", EndTime: "10.30", Label: "9.45 - 10.30"},
	{Number: 3, StartTime: "10.30", EndTime: "11.15", Label: "10.30 - 11.15"},
	{Number: 4, StartTime: "11.15", EndTime: "12.00", Label: "11.15 - 12.00"},
	{Number: 5, StartTime: "12.00", EndTime: "12.45", Label: "12.00 - 12.45"},
	{Number: 6, StartTime: "12.45", EndTime: "1.30", Label: "12.45 - 1.30"},
	{Number: 7, StartTime: "1.30", EndTime: "2.15", Label: "1.30 - 2.15"},
	{Number: 8, StartTime: "2.15", EndTime: "3.00", Label: "2.15 - 3.00"},
}

var defaultCanonicalSpans = map[string]int{
	"EEC 101": 3,
	"EEC 113": 4,
	"EEC 121": 4,
	"EEC 125": 6,
	"EEC 142": 6,
	"EEC 212": 5,
	"EEC 233": 4,
	"EMP 104": 3,
	"EMP 116": 4,
	"GEN 102": 2,
}

// DefaultTables returns a fresh copy of the built-in lookup tables. Callers
// may replace CanonicalSpans with an updated table (e.g. loaded from the
// database) without affecting other holders.
func DefaultTables() Tables {
	days := make(map[string]string, len(arabicDayNames))
	for k, v := range arabicDayNames {
		days[k] = v
	}
	spans := make(map[string]int, len(defaultCanonicalSpans))
	for k, v := range defaultCanonicalSpans {
		spans[k] = v
	}
	order := make([]string, len(weekDayOrder))
	copy(order, weekDayOrder)
	slots := make([]TimeSlot, len(defaultTimeSlots))
	copy(slots, defaultTimeSlots)
	return Tables{Days: days, DayOrder: order, Slots: slots, CanonicalSpans: spans}
}

// SlotCount returns the number of fixed periods per day.
func (t Tables) SlotCount() int {
	return len(t.Slots)
}

// SlotByStart resolves a canonical start time ("H.MM") to its slot.
func (t Tables) SlotByStart(start string) (TimeSlot, bool) {
	for _, slot := range t.Slots {
		if slot.StartTime == start {
			return slot, true
		}
	}
	return TimeSlot{}, false
}

// DayIndex returns the position of an English day name within the week, or -1.
func (t Tables) DayIndex(day string) int {
	for i, d := range t.DayOrder {
		if d == day {
			return i
		}
	}
	return -1
}
