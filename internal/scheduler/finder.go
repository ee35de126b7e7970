package scheduler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Kirill-j/bookinghub/internal/lib/daytime"
)

const (
	// начало рабочего окна, 08:00
	DayStart = 8 * 60
	// конец рабочего окна, 20:00
	DayEnd = 20 * 60
	// шаг перебора кандидатов в минутах
	Step = 15
	// минимальная длительность бронирования в минутах
	MinDuration = 30
	// DefaultDuration подставляется, если длительность не задана или некорректна.
	DefaultDuration = 60
)

// ErrNoFreeSlot возвращается, когда в рабочем окне нет свободного интервала нужной длины.
var ErrNoFreeSlot = errors.New("no free slot within working hours")

// Policy задаёт рабочее окно и шаг поиска свободного времени.
type Policy struct {
	DayStart        int
	DayEnd          int
	Step            int
	MinDuration     int
	DefaultDuration int
}

// DefaultPolicy возвращает политику 08:00–20:00 с шагом 15 минут.
func DefaultPolicy() Policy {
	return Policy{
		DayStart:        DayStart,
		DayEnd:          DayEnd,
		Step:            Step,
		MinDuration:     MinDuration,
		DefaultDuration: DefaultDuration,
	}
}

// Slot — найденное свободное окно.
type Slot struct {
	Start int
	End   int
}

// StartHHMM возвращает начало окна в формате HH:MM.
func (s Slot) StartHHMM() string { return daytime.MinutesToHHMM(s.Start) }

// EndHHMM возвращает конец окна в формате HH:MM.
func (s Slot) EndHHMM() string { return daytime.MinutesToHHMM(s.End) }

// ParseDuration разбирает запрошенную длительность в минутах.
// Для пустого, нечислового или неположительного значения возвращается DefaultDuration.
func (p Policy) ParseDuration(raw string) int {
	d, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return p.DefaultDuration
	}
	return d
}

// FindFreeSlot ищет первое (самое раннее) окно длиной duration минут, не пересекающееся
// ни с одним интервалом из busy. Кандидаты перебираются от DayStart до DayEnd-duration
// включительно с шагом Step; поиск останавливается на первом подходящем.
func (p Policy) FindFreeSlot(duration int, busy []Interval) (Slot, error) {
	if duration <= 0 {
		duration = p.DefaultDuration
	}
	step := p.Step
	if step <= 0 {
		step = Step
	}

	for t := p.DayStart; t+duration <= p.DayEnd; t += step {
		candidate := Interval{Start: t, End: t + duration}
		if !hasConflict(candidate, busy) {
			return Slot{Start: candidate.Start, End: candidate.End}, nil
		}
	}
	return Slot{}, ErrNoFreeSlot
}

func hasConflict(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
