package bot

import (
	"time"

	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/store"
)

type vendorPhase int

const (
	phaseUninitialized vendorPhase = iota
	phaseInteracting
	phasePrepMerchantFrame
	phaseDialog
	phaseInitialized
	phaseCloseMerchantFrame
	phaseReadyToPop
)

const (
	merchantInteractDelay = 500 * time.Millisecond
	merchantFrameDelay    = 500 * time.Millisecond
	merchantItemDelay     = 200 * time.Millisecond
	vendorApproachRadius  = 5.0
	provisionStackTarget  = 10
)

// merchantInteraction is the shared open-the-merchant-window dance: walk to
// the NPC, interact, bounce between the gossip dialog and the merchant frame
// until the frame reports ready. Every transition is debounce-gated because
// the client UI needs real wall-clock time to populate after each click.
type merchantInteraction struct {
	timers Scoped
	npc    *store.Npc
	phase  vendorPhase
}

// step drives the phase machine. The returned flag is true when the merchant
// frame is open and the owning state can do its work.
func (m *merchantInteraction) step(ctx *Ctx) (Transition, bool) {
	p := ctx.Player()
	if p == nil {
		return Continue(), false
	}

	switch m.phase {
	case phaseUninitialized:
		if p.Position.DistanceTo(m.npc.Position) > vendorApproachRadius {
			return Push(NewMoveToPositionState(m.npc.Position)), false
		}
		unit := m.findNpcUnit(ctx)
		if unit == nil {
			ctx.Logger.Warn("Vendor not found at expected position", "npc", m.npc.Name)
			return Pop(), false
		}
		ctx.Client.Interact(unit.Guid)
		m.phase = phaseInteracting
		return Continue(), false

	case phaseInteracting:
		if m.timers.ForReset("InteractDelay", merchantInteractDelay) {
			m.phase = phasePrepMerchantFrame
		}
		return Continue(), false

	case phasePrepMerchantFrame:
		if !m.timers.ForReset("PrepMerchantFrameDelay", merchantFrameDelay) {
			return Continue(), false
		}
		ready, err := ctx.Client.MerchantFrameReady()
		if err != nil {
			return Pop(), false
		}
		if ready {
			m.phase = phaseInitialized
		} else {
			m.phase = phaseDialog
		}
		return Continue(), false

	case phaseDialog:
		frame, err := ctx.Client.DialogFrame()
		if err != nil || frame == nil || !frame.Has(game.DialogVendor) {
			return Pop(), false
		}
		ctx.Client.SelectDialogOption(game.DialogVendor)
		m.phase = phasePrepMerchantFrame
		return Continue(), false

	case phaseInitialized:
		return Continue(), true

	case phaseCloseMerchantFrame:
		ctx.Client.CloseMerchantFrame()
		m.phase = phaseReadyToPop
		return Continue(), false
	}

	return Pop(), false
}

func (m *merchantInteraction) findNpcUnit(ctx *Ctx) *game.Unit {
	s := ctx.Snapshot()
	if s == nil {
		return nil
	}
	for _, u := range s.Units {
		if u.Name == m.npc.Name && !u.IsDead() {
			return u
		}
	}
	return nil
}

func (m *merchantInteraction) finish() {
	m.phase = phaseCloseMerchantFrame
}

// SellItemsState dumps grind loot at a vendor: everything below the quality
// ceiling that is not protected by the keep filters.
type SellItemsState struct {
	merchantInteraction
}

func NewSellItemsState(ctx *Ctx, npc *store.Npc) *SellItemsState {
	return &SellItemsState{merchantInteraction{
		timers: ctx.Timers.NewScope("SellItems"),
		npc:    npc,
	}}
}

func (s *SellItemsState) Name() string { return "SellItems" }

func (s *SellItemsState) Update(ctx *Ctx) Transition {
	t, ready := s.step(ctx)
	if !ready {
		return t
	}

	if !s.timers.ForReset("SellItemDelay", merchantItemDelay) {
		return Continue()
	}

	item := s.nextSellable(ctx)
	if item == nil {
		s.finish()
		return Continue()
	}
	ctx.Logger.Debug("Selling item", "item", item.Name, "quality", item.Quality.String())
	ctx.Client.SellItem(item.Guid, item.StackCount)

	return Continue()
}

func (s *SellItemsState) nextSellable(ctx *Ctx) *game.Item {
	snapshot := ctx.Snapshot()
	if snapshot == nil {
		return nil
	}
	for _, item := range snapshot.Items {
		if s.sellable(ctx, item) {
			return item
		}
	}
	return nil
}

func (s *SellItemsState) sellable(ctx *Ctx, item *game.Item) bool {
	if item.Name == "Hearthstone" || item.Info.IsQuest {
		return false
	}
	if item.Class == game.ItemClassContainer || item.Class == game.ItemClassQuest {
		return false
	}
	if item.Name == ctx.Cfg.Food || item.Name == ctx.Cfg.Drink {
		return false
	}
	for _, name := range ctx.Cfg.Vendor.ExcludedNames {
		if name == item.Name {
			return false
		}
	}

	ceiling := game.QualityUncommon
	if !ctx.Cfg.Vendor.SellUncommon {
		ceiling = game.QualityCommon
	}
	return item.Quality <= ceiling
}

func (s *SellItemsState) Exit(ctx *Ctx) {
	s.timers.Close()
}

// BuyItemsState restocks food and drink up to the provision target.
type BuyItemsState struct {
	merchantInteraction
	bought map[string]bool
}

func NewBuyItemsState(ctx *Ctx, npc *store.Npc) *BuyItemsState {
	return &BuyItemsState{
		merchantInteraction: merchantInteraction{
			timers: ctx.Timers.NewScope("BuyItems"),
			npc:    npc,
		},
		bought: make(map[string]bool),
	}
}

func (s *BuyItemsState) Name() string { return "BuyItems" }

func (s *BuyItemsState) Update(ctx *Ctx) Transition {
	t, ready := s.step(ctx)
	if !ready {
		return t
	}

	if !s.timers.ForReset("BuyItemDelay", merchantItemDelay) {
		return Continue()
	}

	for _, name := range []string{ctx.Cfg.Food, ctx.Cfg.Drink} {
		if name == "" || s.bought[name] {
			continue
		}
		needed := provisionStackTarget - s.carriedCount(ctx, name)
		s.bought[name] = true
		if needed > 0 {
			ctx.Logger.Debug("Buying provisions", "item", name, "count", needed)
			ctx.Client.BuyItemByName(name, needed)
			return Continue()
		}
	}

	s.finish()
	return Continue()
}

func (s *BuyItemsState) carriedCount(ctx *Ctx, name string) int {
	snapshot := ctx.Snapshot()
	if snapshot == nil {
		return 0
	}
	total := 0
	for _, item := range snapshot.Items {
		if item.Name == name {
			count := item.StackCount
			if count == 0 {
				count = 1
			}
			total += count
		}
	}
	return total
}

func (s *BuyItemsState) Exit(ctx *Ctx) {
	s.timers.Close()
}

// RepairEquipmentState runs the repair-all click at a repair-capable vendor.
type RepairEquipmentState struct {
	merchantInteraction
	repaired bool
}

func NewRepairEquipmentState(ctx *Ctx, npc *store.Npc) *RepairEquipmentState {
	return &RepairEquipmentState{merchantInteraction: merchantInteraction{
		timers: ctx.Timers.NewScope("RepairEquipment"),
		npc:    npc,
	}}
}

func (s *RepairEquipmentState) Name() string { return "RepairEquipment" }

func (s *RepairEquipmentState) Update(ctx *Ctx) Transition {
	t, ready := s.step(ctx)
	if !ready {
		return t
	}

	if !s.repaired {
		ctx.Client.RepairAllItems()
		s.repaired = true
		return Continue()
	}
	if s.timers.For("RepairSettleDelay", merchantItemDelay) {
		s.finish()
	}
	return Continue()
}

func (s *RepairEquipmentState) Exit(ctx *Ctx) {
	s.timers.Close()
}
