package bot

import "github.com/tibkiss/huba-v1/internal/models"

// ValidTransitions определяет допустимые переходы между состояниями
var ValidTransitions = map[string][]string{
	models.StateInitial:      {models.StateCleanup, models.StateWaitForEntry, models.StateInTrade, models.StateStopped},
	models.StateCleanup:      {models.StateWaitForEntry, models.StateStopped},
	models.StateWaitForEntry: {models.StateEntering, models.StateStopped},
	models.StateEntering:     {models.StateInTrade, models.StateStopped},
	models.StateInTrade:      {models.StateExiting, models.StateStopped},
	models.StateExiting:      {models.StateWaitForEntry, models.StateStopped},
	models.StateStopped:      {}, // терминальное
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// CanReceiveOrderUpdate сообщает, допустимо ли событие исполнения
// в данном состоянии. В остальных состояниях событие - протокольная
// ошибка, фатальная для пары.
func CanReceiveOrderUpdate(s string) bool {
	return s == models.StateCleanup || s == models.StateEntering || s == models.StateExiting
}

// HasOpenPosition возвращает true, если у пары есть открытая позиция
func HasOpenPosition(s string) bool {
	return s == models.StateInTrade || s == models.StateExiting
}

// IsTerminal возвращает true для терминального состояния
func IsTerminal(s string) bool {
	return s == models.StateStopped
}

// StateInfo возвращает описание состояния для логов и API
func StateInfo(s string) string {
	switch s {
	case models.StateInitial:
		return "Initializing: reconciling venue position"
	case models.StateCleanup:
		return "Flattening inconsistent legs"
	case models.StateWaitForEntry:
		return "Waiting for entry threshold"
	case models.StateEntering:
		return "Entry orders submitted"
	case models.StateInTrade:
		return "Position open"
	case models.StateExiting:
		return "Exit orders submitted"
	case models.StateStopped:
		return "Stopped"
	default:
		return "Unknown state"
	}
}
