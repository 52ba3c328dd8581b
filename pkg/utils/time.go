package utils

import (
	"time"
)

// time.go - утилиты для работы с торговым временем
//
// Назначение:
// Вспомогательные функции для работы с регулярной торговой сессией
// (RTH, 09:30-16:00 US/Eastern) и торговым календарём.
//
// Функции:
// - MarketLocation: timezone биржи (US/Eastern)
// - InRTH / BeforeRTH / AtOrAfterRTHEnd: положение бара относительно сессии
// - SameDate: сравнение календарных дат
// - AddWorkdays: сдвиг даты на рабочие дни (для lookback-окна)

// Границы регулярной торговой сессии NYSE/NASDAQ
const (
	RTHStartHour   = 9
	RTHStartMinute = 30
	RTHEndHour     = 16
	RTHEndMinute   = 0
)

var marketLocation *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// tzdata недоступна - работаем в UTC, смещение придётся задавать в данных
		loc = time.UTC
	}
	marketLocation = loc
}

// MarketLocation возвращает timezone биржи (US/Eastern)
func MarketLocation() *time.Location {
	return marketLocation
}

// rthMinutes возвращает минуты от полуночи биржевого времени
func rthMinutes(t time.Time) int {
	local := t.In(marketLocation)
	return local.Hour()*60 + local.Minute()
}

// InRTH сообщает, попадает ли время внутрь регулярной сессии [09:30, 16:00)
func InRTH(t time.Time) bool {
	m := rthMinutes(t)
	return m >= RTHStartHour*60+RTHStartMinute && m < RTHEndHour*60+RTHEndMinute
}

// BeforeRTH сообщает, находится ли время до открытия сессии
func BeforeRTH(t time.Time) bool {
	return rthMinutes(t) < RTHStartHour*60+RTHStartMinute
}

// AtOrAfterRTHEnd сообщает, находится ли время на закрытии сессии или позже
func AtOrAfterRTHEnd(t time.Time) bool {
	return rthMinutes(t) >= RTHEndHour*60+RTHEndMinute
}

// SameDate сравнивает календарные даты в биржевом времени
func SameDate(a, b time.Time) bool {
	al := a.In(marketLocation)
	bl := b.In(marketLocation)
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// MarketDate возвращает календарную дату (00:00) в биржевом времени
func MarketDate(t time.Time) time.Time {
	local := t.In(marketLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, marketLocation)
}

// AddWorkdays сдвигает дату на n рабочих дней (выходные пропускаются).
//
// Отрицательное n сдвигает назад. Праздники не учитываются -
// для lookback-окна это даёт консервативно более раннюю дату.
//
// Примеры:
//   - AddWorkdays(пятница, 1) = понедельник
//   - AddWorkdays(понедельник, -1) = пятница
func AddWorkdays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	result := t
	for i := 0; i < n; i++ {
		result = result.AddDate(0, 0, step)
		for result.Weekday() == time.Saturday || result.Weekday() == time.Sunday {
			result = result.AddDate(0, 0, step)
		}
	}
	return result
}
