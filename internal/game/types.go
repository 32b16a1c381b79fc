package game

import (
	"fmt"
	"math"
)

// Guid is the opaque 64-bit identifier the client assigns to every object it
// knows about. It is stable for the lifetime of the object but not across
// despawns; zero means "no object".
type Guid uint64

func (g Guid) IsZero() bool { return g == 0 }

func (g Guid) String() string { return fmt.Sprintf("0x%016X", uint64(g)) }

// Position is a point in world space. Most distance checks in the bot are
// full 3-D; a handful of ghost-run checks deliberately ignore Z because the
// corpse marker often reports a bogus height.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (p Position) DistanceTo(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	dz := float64(p.Z - other.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (p Position) DistanceTo2D(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Position) IsZero() bool { return p.X == 0 && p.Y == 0 && p.Z == 0 }

// ObjectType discriminates the typed wrappers built during snapshot
// enumeration.
type ObjectType int

const (
	ObjectTypeNone ObjectType = iota
	ObjectTypeItem
	ObjectTypeContainer
	ObjectTypeUnit
	ObjectTypePlayer
	ObjectTypeGameObject
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeItem:
		return "Item"
	case ObjectTypeContainer:
		return "Container"
	case ObjectTypeUnit:
		return "Unit"
	case ObjectTypePlayer:
		return "Player"
	case ObjectTypeGameObject:
		return "GameObject"
	}
	return "None"
}

// Class is the character class of a player unit.
type Class int

const (
	ClassNone Class = iota
	ClassWarrior
	ClassPaladin
	ClassHunter
	ClassRogue
	ClassPriest
	ClassShaman
	ClassMage
	ClassWarlock
	ClassDruid
)

// UnitReaction is the faction disposition of a unit toward the local player.
type UnitReaction int

const (
	ReactionHated UnitReaction = iota + 1
	ReactionHostile
	ReactionUnfriendly
	ReactionNeutral
	ReactionFriendly
	ReactionHonored
	ReactionRevered
	ReactionExalted
)

// ItemQuality tiers. Anything above Common requires an explicit equip
// confirmation in the client UI.
type ItemQuality int

const (
	QualityPoor ItemQuality = iota
	QualityCommon
	QualityUncommon
	QualityRare
	QualityEpic
	QualityLegendary
)

func (q ItemQuality) String() string {
	switch q {
	case QualityPoor:
		return "Poor"
	case QualityCommon:
		return "Common"
	case QualityUncommon:
		return "Uncommon"
	case QualityRare:
		return "Rare"
	case QualityEpic:
		return "Epic"
	case QualityLegendary:
		return "Legendary"
	}
	return "Unknown"
}

// ItemClass is the coarse item category the vendor/sell filters care about.
type ItemClass int

const (
	ItemClassConsumable ItemClass = iota
	ItemClassContainer
	ItemClassWeapon
	ItemClassArmor
	ItemClassReagent
	ItemClassProjectile
	ItemClassTradeGoods
	ItemClassRecipe
	ItemClassQuiver
	ItemClassQuest
	ItemClassKey
	ItemClassMisc
)

// ItemSubclass carries the armor material, which the equip logic matches
// against the wearer's class.
type ItemSubclass int

const (
	SubclassNone ItemSubclass = iota
	SubclassCloth
	SubclassLeather
	SubclassMail
	SubclassPlate
)

// EquipSlot enumerates the character equipment slots the armor/repair logic
// inspects.
type EquipSlot int

const (
	SlotHead EquipSlot = iota
	SlotNeck
	SlotShoulders
	SlotBack
	SlotChest
	SlotWrist
	SlotHands
	SlotWaist
	SlotLegs
	SlotFeet
	SlotFinger1
	SlotFinger2
	SlotTrinket1
	SlotTrinket2
	SlotMainHand
	SlotOffHand
	SlotRanged
)

func (s EquipSlot) String() string {
	names := [...]string{
		"Head", "Neck", "Shoulders", "Back", "Chest", "Wrist", "Hands",
		"Waist", "Legs", "Feet", "Finger1", "Finger2", "Trinket1",
		"Trinket2", "MainHand", "OffHand", "Ranged",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// ControlBits are the client movement control flags toggled by
// StartMovement/StopMovement.
type ControlBits uint32

const (
	ControlFront ControlBits = 1 << iota
	ControlBack
	ControlStrafeLeft
	ControlStrafeRight
)

// DialogType identifies gossip options in an NPC dialog frame.
type DialogType int

const (
	DialogGossip DialogType = iota
	DialogVendor
	DialogTaxi
	DialogTrainer
	DialogBinder
	DialogBanker
)

// ClientVersion distinguishes client generations with diverging APIs (the
// auto-attack path differs between them).
type ClientVersion int

const (
	VersionVanilla ClientVersion = iota
	VersionTBC
	VersionWotLK
)
