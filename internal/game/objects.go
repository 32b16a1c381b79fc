package game

// Object is a snapshot of one entry in the client object manager. Snapshots
// are immutable, states read them and issue commands through the Client.
type Object interface {
	ObjectGuid() Guid
	ObjectType() ObjectType
	ObjectName() string
	ObjectPosition() Position
}

type Entity struct {
	Guid     Guid
	Type     ObjectType
	Name     string
	Position Position
}

func (e *Entity) ObjectGuid() Guid         { return e.Guid }
func (e *Entity) ObjectType() ObjectType   { return e.Type }
func (e *Entity) ObjectName() string       { return e.Name }
func (e *Entity) ObjectPosition() Position { return e.Position }

// CreatureType separates real mobs from ambient critters and totems, which
// threat scans ignore.
type CreatureType int

const (
	CreatureNormal CreatureType = iota
	CreatureCritter
	CreatureTotem
)

type Unit struct {
	Entity
	Health         int
	MaxHealth      int
	Mana           int
	MaxMana        int
	Level          int
	TargetGuid     Guid
	SummonedByGuid Guid
	Reaction       UnitReaction
	NpcID          int
	Creature       CreatureType
	TappedByOther  bool
	InCombat       bool
	IsSwimming     bool
	Buffs          []string
}

func (u *Unit) IsDead() bool { return u.Health <= 0 }

func (u *Unit) IsPet() bool { return !u.SummonedByGuid.IsZero() }

func (u *Unit) HealthPercent() int {
	if u.MaxHealth <= 0 {
		return 0
	}
	return u.Health * 100 / u.MaxHealth
}

func (u *Unit) HasBuff(name string) bool {
	for _, b := range u.Buffs {
		if b == name {
			return true
		}
	}
	return false
}

// Hostile reports whether the unit would attack the local player on sight.
func (u *Unit) Hostile() bool {
	return u.Reaction == ReactionHated || u.Reaction == ReactionHostile
}

type Player struct {
	Unit
	Class Class
}

type Item struct {
	Entity
	ItemID        int
	Quality       ItemQuality
	Class         ItemClass
	Subclass      ItemSubclass
	RequiredLevel int
	StackCount    int
	Durability    int
	MaxDurability int
	Info          ItemInfo
}

// ItemInfo carries the static template flags the vendor filters check.
type ItemInfo struct {
	IsFood     bool
	IsDrink    bool
	IsQuest    bool
	EquipSlots []EquipSlot
}

func (i *Item) DurabilityPercent() int {
	if i.MaxDurability <= 0 {
		return 100
	}
	return i.Durability * 100 / i.MaxDurability
}

type Container struct {
	Item
	Slots int
}

// GameObjectKind classifies world objects the bot interacts with.
type GameObjectKind int

const (
	GoKindGeneric GameObjectKind = iota
	GoKindChest
	GoKindHerb
	GoKindMineral
	GoKindPlayerCorpse
)

type GameObject struct {
	Entity
	Kind        GameObjectKind
	CreatedBy   Guid
	DisplayID   int
	CanBeOpened bool
}
