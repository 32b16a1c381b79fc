package game

// Client is the command surface of the attached game process. One
// implementation wraps the injected memory bridge; tests substitute a fake.
// All calls must happen on the engine tick goroutine, the client is not safe
// for concurrent use.
type Client interface {
	Version() ClientVersion

	// Object manager.
	LocalPlayerGuid() (Guid, error)
	VisibleObjects() ([]Object, error)
	MapID() (int, error)
	ZoneText() (string, error)

	// Movement control bits mirror the held-key state of the client. Bits
	// stay set until explicitly cleared.
	StartMovement(bit ControlBits)
	StopMovement(bit ControlBits)
	StopAllMovement()
	Face(p Position)
	Jump()

	// Targeting and combat.
	SetTarget(g Guid)
	StartAttack()
	IsAutoRepeatingAction(slot int) (bool, error)
	UseActionSlot(slot int)
	CastSpellByName(name string, onSelf bool)
	SpellReady(name string) (bool, error)

	// RunScript executes a raw client command, the escape hatch for actions
	// without a direct binding. TeleportTo is the out-of-band recovery jump
	// used only by last-resort stuck handling.
	RunScript(command string)
	TeleportTo(p Position)

	Interact(g Guid)
	UseItem(g Guid)
	ConfirmEquipPending()
	SendChat(message string)

	// PollUiMessages drains the red error lines the client printed since the
	// last poll ("Target not in line of sight", "Out of range", ...).
	PollUiMessages() ([]string, error)

	// Loot frame.
	LootFrame() (*LootFrame, error)
	LootSlot(index int)
	CloseLootFrame()

	// NPC dialog and merchant frame.
	DialogFrame() (*DialogFrame, error)
	SelectDialogOption(t DialogType)
	MerchantFrameReady() (bool, error)
	BuyItemByName(itemName string, quantity int)
	SellItem(g Guid, quantity int)
	RepairAllItems()
	CloseMerchantFrame()

	// Equipment.
	EquippedItemGuid(slot EquipSlot) (Guid, error)
	EquippedBagCount() (int, error)

	// Death and corpse.
	RepopMe()
	RetrieveCorpse()
	CorpsePosition() (Position, error)

	// Battleground and arena queues.
	JoinBattlefieldQueue(index int)
	BattlefieldPortReady() (bool, error)
	AcceptBattlefieldPort()
	LeaveBattlefield()
}

// LootFrame is the open loot window. A nil frame means no window is open.
type LootFrame struct {
	Items []LootFrameItem
}

type LootFrameItem struct {
	Index    int
	ItemID   int
	Name     string
	Quality  ItemQuality
	IsCoin   bool
	IsLocked bool
}

// DialogFrame is an open gossip window with its selectable options.
type DialogFrame struct {
	Options []DialogOption
}

type DialogOption struct {
	Type DialogType
	Text string
}

func (d *DialogFrame) Has(t DialogType) bool {
	for _, opt := range d.Options {
		if opt.Type == t {
			return true
		}
	}
	return false
}

// Profile captures per-client-generation behavior differences so states never
// branch on raw version numbers.
type Profile interface {
	// EnsureAutoAttack turns melee auto-attack on without toggling it off
	// when it is already running.
	EnsureAutoAttack(c Client, playerClass Class)
}

// VanillaProfile polls the action bar, the original client has no script API
// to query the attack state and blindly calling attack would toggle it off.
type VanillaProfile struct{}

func (VanillaProfile) EnsureAutoAttack(c Client, playerClass Class) {
	slot := 12
	if playerClass == ClassWarrior {
		slot = 84
	}
	repeating, err := c.IsAutoRepeatingAction(slot)
	if err != nil || !repeating {
		c.UseActionSlot(slot)
	}
}

// ModernProfile covers expansion clients where the attack call is idempotent.
type ModernProfile struct{}

func (ModernProfile) EnsureAutoAttack(c Client, playerClass Class) {
	c.StartAttack()
}

func ProfileFor(v ClientVersion) Profile {
	if v == VersionVanilla {
		return VanillaProfile{}
	}
	return ModernProfile{}
}
