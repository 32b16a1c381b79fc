package bot

import (
	"time"

	"github.com/varkas/grindbot/internal/game"
)

const (
	equipDelay  = 500 * time.Millisecond
	maxBagSlots = 4
)

// EquipBagsState equips a looted bag when a bag slot is free, then hands off
// to armor cleanup.
type EquipBagsState struct {
	timers  Scoped
	pending bool
}

func NewEquipBagsState(ctx *Ctx) *EquipBagsState {
	return &EquipBagsState{timers: ctx.Timers.NewScope("EquipBags")}
}

func (s *EquipBagsState) Name() string { return "EquipBags" }

func (s *EquipBagsState) Update(ctx *Ctx) Transition {
	if s.pending {
		if s.timers.For("EquipBagDelay", equipDelay) {
			return PopPush(NewEquipArmorState(ctx))
		}
		return Continue()
	}

	equipped, err := ctx.Client.EquippedBagCount()
	if err != nil || equipped >= maxBagSlots {
		return PopPush(NewEquipArmorState(ctx))
	}

	snapshot := ctx.Snapshot()
	if snapshot == nil {
		return Continue()
	}
	for _, c := range snapshot.Containers {
		if c.Info.IsQuest {
			continue
		}
		ctx.Client.UseItem(c.Guid)
		s.pending = true
		s.timers.For("EquipBagDelay", equipDelay)
		return Continue()
	}

	return PopPush(NewEquipArmorState(ctx))
}

func (s *EquipBagsState) Exit(ctx *Ctx) {
	s.timers.Close()
}

// armorSlots is the slot list scanned for holes, in fill order.
var armorSlots = []game.EquipSlot{
	game.SlotChest,
	game.SlotLegs,
	game.SlotFeet,
	game.SlotHands,
	game.SlotWaist,
	game.SlotWrist,
	game.SlotShoulders,
	game.SlotHead,
	game.SlotBack,
}

// classArmor maps each class to the armor material it can wear at low level.
var classArmor = map[game.Class]game.ItemSubclass{
	game.ClassWarrior: game.SubclassMail,
	game.ClassPaladin: game.SubclassMail,
	game.ClassHunter:  game.SubclassLeather,
	game.ClassShaman:  game.SubclassLeather,
	game.ClassRogue:   game.SubclassLeather,
	game.ClassDruid:   game.SubclassLeather,
	game.ClassPriest:  game.SubclassCloth,
	game.ClassMage:    game.SubclassCloth,
	game.ClassWarlock: game.SubclassCloth,
}

// EquipArmorState fills empty armor slots from looted inventory. One item per
// visit: equip, confirm if the quality tier requires it, pop back to resting.
type EquipArmorState struct {
	timers  Scoped
	pending *game.Item
}

func NewEquipArmorState(ctx *Ctx) *EquipArmorState {
	return &EquipArmorState{timers: ctx.Timers.NewScope("EquipArmor")}
}

func (s *EquipArmorState) Name() string { return "EquipArmor" }

func (s *EquipArmorState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if s.pending != nil {
		if !s.timers.For("EquipConfirmDelay", equipDelay) {
			return Continue()
		}
		// Items above common quality pop a confirmation dialog before they
		// bind, common ones equip silently.
		if s.pending.Quality > game.QualityCommon {
			ctx.Client.ConfirmEquipPending()
		}
		s.pending = nil
		s.timers.Remove("EquipConfirmDelay")
		return Continue()
	}

	for _, slot := range armorSlots {
		guid, err := ctx.Client.EquippedItemGuid(slot)
		if err != nil || !guid.IsZero() {
			continue
		}
		if candidate := s.findUpgrade(ctx, p, slot); candidate != nil {
			ctx.Logger.Debug("Equipping armor", "item", candidate.Name, "slot", slot.String())
			ctx.Client.UseItem(candidate.Guid)
			s.pending = candidate
			s.timers.For("EquipConfirmDelay", equipDelay)
			return Continue()
		}
	}

	return PopPush(NewRestState(ctx))
}

func (s *EquipArmorState) findUpgrade(ctx *Ctx, p *game.LocalPlayer, slot game.EquipSlot) *game.Item {
	snapshot := ctx.Snapshot()
	if snapshot == nil {
		return nil
	}
	wearable := classArmor[p.Class]

	for _, item := range snapshot.Items {
		if item.Class != game.ItemClassArmor || item.RequiredLevel > p.Level {
			continue
		}
		if !itemFitsSlot(item, slot) {
			continue
		}
		// Cloaks are cloth for everyone.
		if item.Subclass != wearable && !(slot == game.SlotBack && item.Subclass == game.SubclassCloth) {
			continue
		}
		return item
	}
	return nil
}

func itemFitsSlot(item *game.Item, slot game.EquipSlot) bool {
	for _, s := range item.Info.EquipSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func (s *EquipArmorState) Exit(ctx *Ctx) {
	s.timers.Close()
}
