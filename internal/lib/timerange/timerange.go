// Package timerange содержит арифметику полуинтервалов времени [start, start+duration),
// используемую для проверки пересечения расписаний воркшопов.
package timerange

import "time"

// Range — полуинтервал [Start, Start+Duration).
type Range struct {
	Start    time.Time
	Duration time.Duration
}

// New создаёт интервал по началу и длительности.
func New(start time.Time, d time.Duration) Range {
	return Range{Start: start, Duration: d}
}

// End возвращает правую (не включённую) границу интервала.
func (r Range) End() time.Time {
	return r.Start.Add(r.Duration)
}

// Overlap возвращает длину пересечения двух интервалов.
// Для непересекающихся интервалов результат отрицателен или равен нулю:
// это расстояние между ними со знаком минус.
func Overlap(a, b Range) time.Duration {
	end := a.End()
	if bEnd := b.End(); bEnd.Before(end) {
		end = bEnd
	}
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	return end.Sub(start)
}

// Conflicts сообщает, что интервалы пересекаются больше чем на tolerance.
// Встык идущие интервалы (пересечение 0) конфликтом не считаются.
func Conflicts(a, b Range, tolerance time.Duration) bool {
	return Overlap(a, b) > tolerance
}
