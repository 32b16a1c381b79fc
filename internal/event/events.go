package event

import (
	"time"
)

type Event interface {
	Message() string
	OccurredAt() time.Time
	Supervisor() string
}

type BaseEvent struct {
	message    string
	occurredAt time.Time
	supervisor string
}

func (b BaseEvent) Message() string {
	return b.message
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func (b BaseEvent) Supervisor() string {
	return b.supervisor
}

func Text(supervisor string, message string) BaseEvent {
	return BaseEvent{
		message:    message,
		occurredAt: time.Now(),
		supervisor: supervisor,
	}
}

// ErrorMessageEvent carries a red client error line ("Target not in line of
// sight", "Out of range", ...). The combat loop subscribes to these while it
// owns a target.
type ErrorMessageEvent struct {
	BaseEvent
	ErrorText string
}

func ErrorMessage(be BaseEvent, errorText string) ErrorMessageEvent {
	return ErrorMessageEvent{BaseEvent: be, ErrorText: errorText}
}

type LevelUpEvent struct {
	BaseEvent
	Level int
}

func LevelUp(be BaseEvent, level int) LevelUpEvent {
	return LevelUpEvent{BaseEvent: be, Level: level}
}

type RareLootEvent struct {
	BaseEvent
	ItemName string
	Quality  string
}

func RareLoot(be BaseEvent, itemName string, quality string) RareLootEvent {
	return RareLootEvent{BaseEvent: be, ItemName: itemName, Quality: quality}
}

type DeathEvent struct {
	BaseEvent
	Zone       string
	DeathCount int
}

func Death(be BaseEvent, zone string, deathCount int) DeathEvent {
	return DeathEvent{BaseEvent: be, Zone: zone, DeathCount: deathCount}
}

type KillswitchEvent struct {
	BaseEvent
	Reason string
}

func Killswitch(be BaseEvent, reason string) KillswitchEvent {
	return KillswitchEvent{BaseEvent: be, Reason: reason}
}

type StateChangedEvent struct {
	BaseEvent
	FromState string
	ToState   string
}

func StateChanged(be BaseEvent, fromState string, toState string) StateChangedEvent {
	return StateChangedEvent{BaseEvent: be, FromState: fromState, ToState: toState}
}

type BotStuckEvent struct {
	BaseEvent
	StateName string
}

func BotStuck(be BaseEvent, stateName string) BotStuckEvent {
	return BotStuckEvent{BaseEvent: be, StateName: stateName}
}
