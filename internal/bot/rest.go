package bot

import (
	"time"
)

const restDonePercent = 95

// RestState eats and drinks until health and mana are back up, breaking off
// immediately if something pulls aggro mid-rest.
type RestState struct {
	timers Scoped
}

func NewRestState(ctx *Ctx) *RestState {
	return &RestState{timers: ctx.Timers.NewScope("Rest")}
}

func (s *RestState) Name() string { return "Rest" }

func (s *RestState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if threat := ctx.Aggressor(); threat != nil {
		return PopPush(NewCombatState(ctx, threat.Guid))
	}

	healthDone := p.HealthPercent() >= restDonePercent
	manaDone := p.MaxMana == 0 || p.Mana*100/p.MaxMana >= restDonePercent
	if healthDone && manaDone {
		return Pop()
	}

	if !healthDone && ctx.Cfg.Food != "" && !p.HasBuff("Food") {
		if s.timers.ForReset("UseFood", time.Second) {
			if food := ctx.FindBagItem(ctx.Cfg.Food); food != nil {
				ctx.Client.UseItem(food.Guid)
			}
		}
	}
	if !manaDone && ctx.Cfg.Drink != "" && !p.HasBuff("Drink") {
		if s.timers.ForReset("UseDrink", time.Second) {
			if drink := ctx.FindBagItem(ctx.Cfg.Drink); drink != nil {
				ctx.Client.UseItem(drink.Guid)
			}
		}
	}

	return Continue()
}

func (s *RestState) Exit(ctx *Ctx) {
	s.timers.Close()
}
