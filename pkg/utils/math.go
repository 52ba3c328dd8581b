package utils

import (
	"math"
)

// math.go - математические утилиты для парной торговли
//
// Назначение:
// Вспомогательные математические функции для торговых операций.
// Все функции являются чистыми (pure functions) без побочных эффектов.
//
// Функции:
// - PriceRound: округление цены до шага (tick) биржи
// - DefaultTickIncrement: шаг цены по умолчанию для лимитных ордеров
// - RoundToInt: округление количества акций
// - Mean / Std: статистика спреда за lookback-окно

// PriceRound округляет цену до ближайшего кратного base, затем
// до precision знаков после запятой.
//
// Используется для приведения лимитной цены к шагу биржи.
//
// Формула:
//
//	PriceRound(x) = round(base × round(x/base), precision)
//
// Параметры:
//   - value: исходная цена
//   - precision: количество знаков после запятой
//   - base: шаг цены (tick size)
//
// Возвращает:
//   - Округлённую цену
//   - Если base <= 0, возвращает исходное значение
//
// Примеры:
//   - PriceRound(10.23, 2, 0.05) = 10.25
//   - PriceRound(10.21, 2, 0.05) = 10.20
//   - PriceRound(0.12345, 4, 0.0001) = 0.1235
func PriceRound(value float64, precision int, base float64) float64 {
	if base <= 0 {
		return value
	}
	rounded := base * math.Round(value/base)
	scale := math.Pow(10, float64(precision))
	return math.Round(rounded*scale) / scale
}

// DefaultTickIncrement возвращает шаг цены по умолчанию для инструмента.
//
// Для акций дороже $1 шаг составляет один цент, для дешёвых
// (sub-dollar) инструментов - 0.0001.
func DefaultTickIncrement(price float64) float64 {
	if price >= 1.0 {
		return 0.01
	}
	return 0.0001
}

// TickPrecision возвращает количество знаков после запятой для шага цены
func TickPrecision(tick float64) int {
	switch {
	case tick >= 0.01:
		return 2
	default:
		return 4
	}
}

// RoundToInt округляет к ближайшему целому (половины - от нуля)
func RoundToInt(value float64) int {
	return int(math.Round(value))
}

// Mean вычисляет среднее арифметическое.
//
// Возвращает 0 для пустого слайса.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std вычисляет стандартное отклонение (population, ddof=0).
//
// Возвращает 0 для пустого слайса.
func Std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Abs возвращает абсолютное значение числа
func Abs(x float64) float64 {
	return math.Abs(x)
}

// AbsInt возвращает абсолютное значение целого числа
func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// SignInt возвращает знак целого числа (-1, 0, 1)
func SignInt(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
