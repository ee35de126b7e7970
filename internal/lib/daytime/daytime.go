// Package daytime содержит функции для перевода времени суток между
// строковым форматом HH:MM, минутами от полуночи и абсолютными метками времени.
// Все функции чистые; ToTimeHHMM никогда не возвращает ошибку.
package daytime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MinutesPerDay количество минут в сутках
	MinutesPerDay = 24 * 60
	// DateLayout формат календарной даты, принятый бэкендом.
	DateLayout = "2006-01-02"
	// ClockLayout формат времени суток.
	ClockLayout = "15:04"

	localLayout = "2006-01-02T15:04:05"
)

// ErrInvalidClock возвращается, когда строку нельзя разобрать как HH:MM.
var ErrInvalidClock = errors.New("invalid HH:MM value")

// timestampLayouts перечисляет форматы, в которых бэкенд и клиент передают startAt/endAt.
// Форматы без зоны интерпретируются в переданной локации.
var timestampLayouts = []string{
	localLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// HHMMToMinutes переводит строку "HH:MM" в количество минут от полуночи.
func HHMMToMinutes(hhmm string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, hhmm)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, hhmm)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 || hours < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, hhmm)
	}
	return hours*60 + minutes, nil
}

// MinutesToHHMM переводит минуты от полуночи в строку "HH:MM" с ведущими нулями.
// Переход через полночь не выполняется: 1500 минут дадут "25:00".
func MinutesToHHMM(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseTimestamp разбирает метку времени бэкенда и приводит её к локации loc.
// Поддерживаются RFC 3339 и форматы без зоны, которые отправляет клиент.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("daytime.ParseTimestamp: unsupported timestamp %q", raw)
}

// MinuteOfDay возвращает количество минут от полуночи для t, дата отбрасывается.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ToTimeHHMM возвращает время суток метки raw в формате HH:MM.
// Если метку разобрать не удалось, возвращается исходная строка без изменений.
func ToTimeHHMM(raw string, loc *time.Location) string {
	t, err := ParseTimestamp(raw, loc)
	if err != nil {
		return raw
	}
	return t.Format(ClockLayout)
}

// LocalTimestamp собирает метку без зоны "YYYY-MM-DDTHH:MM:00" из дня day и минуты суток,
// в том виде, в котором бронирование отправляется на бэкенд.
// Минута MinutesPerDay (24:00) даёт 00:00 следующего дня.
func LocalTimestamp(day time.Time, minute int) string {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return d.Add(time.Duration(minute) * time.Minute).Format(localLayout)
}
