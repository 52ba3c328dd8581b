package bot

import (
	"errors"
	"math"

	"github.com/tibkiss/huba-v1/internal/models"
)

// riskmanager.go - аллокатор капитала и позиций
//
// Ограничивает число одновременно открытых пар и вычисляет максимальное
// целое количество акций на ногу при заданном капитале, плече и
// комиссии. Принадлежит оркестратору; все вызовы идут из его
// однопоточного цикла диспетчеризации.

// MinQty - минимальное допустимое количество акций на ногу
const MinQty = 5

// Ошибки аллокатора
var (
	// ErrCapacityExceeded - реестр полон, новая пара не зарегистрирована.
	// Ожидаемая, восстановимая ситуация: вход просто не состоится.
	ErrCapacityExceeded = errors.New("position capacity exceeded")

	// ErrQuantityTooSmall - расчётное количество меньше MinQty.
	// Регистрация при этом НЕ откатывается: вызывающий обязан сам
	// снять регистрацию при отказе от входа.
	ErrQuantityTooSmall = errors.New("calculated quantity below minimum")

	// ErrNotRegistered - снятие незарегистрированной пары.
	// Протокольная ошибка: для вызывающей стратегии фатальна.
	ErrNotRegistered = errors.New("position not registered")
)

// CommissionModel оценивает комиссию за ордер на qty акций
type CommissionModel interface {
	Estimate(qty int, price float64) float64
}

// FixedPlusPerShare - комиссия вида fixed + perShare·qty
type FixedPlusPerShare struct {
	Fixed    float64
	PerShare float64
}

// Estimate возвращает комиссию за ордер
func (c FixedPlusPerShare) Estimate(qty int, price float64) float64 {
	return c.Fixed + c.PerShare*float64(qty)
}

// RiskManager - реестр открытых позиций и калькулятор размеров
type RiskManager struct {
	tradeCapital     float64
	leverage         float64
	maxPositionCount int
	legsPerPosition  int
	commission       CommissionModel // nil = без комиссии

	positions map[models.Pair]struct{}
}

// NewRiskManager создаёт аллокатор.
// commission может быть nil.
func NewRiskManager(tradeCapital, leverage float64, maxPositionCount, legsPerPosition int, commission CommissionModel) *RiskManager {
	return &RiskManager{
		tradeCapital:     tradeCapital,
		leverage:         leverage,
		maxPositionCount: maxPositionCount,
		legsPerPosition:  legsPerPosition,
		commission:       commission,
		positions:        make(map[models.Pair]struct{}),
	}
}

// SetTradeCapital обновляет торговый капитал (вызывается на старте дня)
func (rm *RiskManager) SetTradeCapital(capital float64) {
	rm.tradeCapital = capital
}

// GetTradeCapital возвращает текущий торговый капитал
func (rm *RiskManager) GetTradeCapital() float64 {
	return rm.tradeCapital
}

// PositionCount возвращает число зарегистрированных пар
func (rm *RiskManager) PositionCount() int {
	return len(rm.positions)
}

// Capacity возвращает максимальное число одновременных пар
func (rm *RiskManager) Capacity() int {
	return rm.maxPositionCount
}

// IsRegistered сообщает, зарегистрирована ли пара
func (rm *RiskManager) IsRegistered(pair models.Pair) bool {
	_, ok := rm.positions[pair]
	return ok
}

// AddPosition регистрирует пару и, если передана цена, возвращает
// максимальное количество акций на ногу.
//
// Семантика:
//   - пара уже в реестре: идемпотентно, без ошибки
//   - реестр полон и пара новая: ErrCapacityExceeded
//   - price <= 0: только регистрация, количество не считается
//   - расчётное количество < MinQty: ErrQuantityTooSmall, но
//     регистрация СОХРАНЯЕТСЯ - откат на совести вызывающего
func (rm *RiskManager) AddPosition(pair models.Pair, price float64) (int, error) {
	if _, ok := rm.positions[pair]; !ok {
		if len(rm.positions) >= rm.maxPositionCount {
			return 0, ErrCapacityExceeded
		}
		rm.positions[pair] = struct{}{}
	}

	if price <= 0 {
		return 0, nil
	}

	return rm.calcQty(price)
}

// RemovePosition снимает регистрацию пары
func (rm *RiskManager) RemovePosition(pair models.Pair) error {
	if _, ok := rm.positions[pair]; !ok {
		return ErrNotRegistered
	}
	delete(rm.positions, pair)
	return nil
}

// calcQty вычисляет максимальное целое количество акций на ногу.
//
// capitalPerPosition = tradeCapital·leverage / maxPositionCount
// qty = floor(capitalPerPosition / (price·legsPerPosition))
//
// При наличии модели комиссии из capitalPerPosition вычитается оценка
// комиссии за ордер КАЖДОЙ ноги (legsPerPosition ордеров на вход) и
// количество пересчитывается один раз (пессимистично, без итерации до
// неподвижной точки).
func (rm *RiskManager) calcQty(price float64) (int, error) {
	capitalPerPosition := rm.tradeCapital * rm.leverage / float64(rm.maxPositionCount)
	qty := int(math.Floor(capitalPerPosition / (price * float64(rm.legsPerPosition))))

	if rm.commission != nil {
		capitalPerPosition -= float64(rm.legsPerPosition) * rm.commission.Estimate(qty, price)
		qty = int(math.Floor(capitalPerPosition / (price * float64(rm.legsPerPosition))))
	}

	if qty < MinQty {
		return 0, ErrQuantityTooSmall
	}
	return qty, nil
}
