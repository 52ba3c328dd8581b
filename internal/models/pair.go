package models

import "fmt"

// Pair представляет торгуемую пару инструментов.
//
// Идентичность пары - упорядоченный кортеж (Leg0, Leg1);
// пара неизменяема на протяжении жизни стратегии.
type Pair struct {
	Leg0 string `json:"leg0"`
	Leg1 string `json:"leg1"`
}

// NewPair создаёт пару из двух тикеров
func NewPair(leg0, leg1 string) Pair {
	return Pair{Leg0: leg0, Leg1: leg1}
}

// Key возвращает строковый ключ пары для логов, метрик и БД
func (p Pair) Key() string {
	return p.Leg0 + "/" + p.Leg1
}

// Contains сообщает, входит ли инструмент в пару
func (p Pair) Contains(instrument string) bool {
	return p.Leg0 == instrument || p.Leg1 == instrument
}

// LegIndex возвращает индекс ноги (0 или 1) для инструмента, -1 если чужой
func (p Pair) LegIndex(instrument string) int {
	switch instrument {
	case p.Leg0:
		return 0
	case p.Leg1:
		return 1
	default:
		return -1
	}
}

func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", p.Leg0, p.Leg1)
}

// Состояния стратегии пары
const (
	StateInitial      = "Initial"
	StateCleanup      = "Cleanup"
	StateWaitForEntry = "WaitForEntry"
	StateEntering     = "Entering"
	StateInTrade      = "InTrade"
	StateExiting      = "Exiting"
	StateStopped      = "Stopped"
)

// PairStatus - снимок состояния стратегии пары для API и дашборда
type PairStatus struct {
	Pair       string  `json:"pair"`
	State      string  `json:"state"`
	Direction  string  `json:"direction"`
	ZScore     float64 `json:"zscore"`
	HasZScore  bool    `json:"has_zscore"`
	HedgeRatio float64 `json:"hedge_ratio"`
	Alive      bool    `json:"alive"`
}

// Направление открытой позиции пары
type Direction int

const (
	DirInvalid Direction = iota
	DirLong              // leg0 куплена, leg1 продана
	DirShort             // leg0 продана, leg1 куплена
)

func (d Direction) String() string {
	switch d {
	case DirLong:
		return "LONG"
	case DirShort:
		return "SHORT"
	default:
		return "INVALID"
	}
}
