// Package scheduler содержит подбор свободного окна для бронирования и
// проверку пересечения интервалов. Время задаётся целым числом минут от полуночи.
package scheduler

// Interval — полуоткрытый интервал [Start, End) в минутах от полуночи.
type Interval struct {
	Start int
	End   int
}

// Overlaps сообщает, пересекаются ли полуоткрытые интервалы [aStart, aEnd) и [bStart, bEnd).
// Смежные интервалы (aEnd == bStart) не пересекаются.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// Overlaps сообщает, пересекается ли интервал с other.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// ConflictsWith возвращает занятые интервалы из busy, пересекающиеся с i, в исходном порядке.
func (i Interval) ConflictsWith(busy []Interval) []Interval {
	var conflicts []Interval
	for _, b := range busy {
		if i.Overlaps(b) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}
