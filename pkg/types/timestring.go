package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const timeLayout = "15:04"

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, если время выходит за пределы суток
	ErrTimeOverflow = errors.New("time is out of day range")
)

// TimeString время суток в формате HH:MM
// Хранится как количество минут от полуночи, чтобы сравнение и сложение были дешёвыми
type TimeString struct {
	minutes int
	valid   bool
}

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*60 + t.Minute(), valid: true}
}

// NewTimeStringFromString парсит строку формата HH:MM (допускается HH:MM:SS)
func NewTimeStringFromString(s string) (TimeString, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
		}
	}
	return NewTimeString(t), nil
}

// NewTimeStringFromMinutes создает TimeString из количества минут от полуночи
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > 24*60 {
		return TimeString{}, ErrTimeOverflow
	}
	return TimeString{minutes: minutes, valid: true}, nil
}

// MustTimeString парсит строку и паникует при ошибке (для констант и тестов)
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// String возвращает время в формате HH:MM
func (t TimeString) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return !t.valid
}

// Validate проверяет корректность значения
func (t TimeString) Validate() error {
	if !t.valid {
		return ErrInvalidTimeString
	}
	if t.minutes < 0 || t.minutes > 24*60 {
		return ErrTimeOverflow
	}
	return nil
}

// Minutes возвращает количество минут от полуночи
func (t TimeString) Minutes() int {
	return t.minutes
}

// AddMinutes возвращает новое время, сдвинутое на n минут
// Выход за пределы суток (больше 24:00) считается ошибкой
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	return NewTimeStringFromMinutes(t.minutes + n)
}

// IsBefore строго раньше
func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

// IsAfter строго позже
func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

// Equal совпадает ли время
func (t TimeString) Equal(other TimeString) bool {
	return t.valid == other.valid && t.minutes == other.minutes
}

// On комбинирует время с датой в указанной локации
func (t TimeString) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t.minutes) * time.Minute)
}

// MarshalText для JSON и TOML
func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText для JSON и TOML
func (t *TimeString) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*t = TimeString{}
		return nil
	}
	parsed, err := NewTimeStringFromString(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan реализует sql.Scanner (Postgres TIME приходит строкой или time.Time)
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.UnmarshalText(v)
	case string:
		return t.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return t.String(), nil
}
