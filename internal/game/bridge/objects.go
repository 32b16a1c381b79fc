package bridge

import (
	"fmt"

	"github.com/varkas/grindbot/internal/game"
)

// wireObject is the flat record the helper emits for every object manager
// entry. Fields irrelevant to the object's type are simply zero.
type wireObject struct {
	Guid           uint64        `json:"guid"`
	Type           string        `json:"type"`
	Name           string        `json:"name"`
	Position       game.Position `json:"position"`
	Health         int           `json:"health"`
	MaxHealth      int           `json:"maxHealth"`
	Mana           int           `json:"mana"`
	MaxMana        int           `json:"maxMana"`
	Rage           int           `json:"rage"`
	Energy         int           `json:"energy"`
	Level          int           `json:"level"`
	TargetGuid     uint64        `json:"targetGuid"`
	SummonedByGuid uint64        `json:"summonedByGuid"`
	Reaction       int           `json:"reaction"`
	NpcID          int           `json:"npcId"`
	CreatureType   int           `json:"creatureType"`
	TappedByOther  bool          `json:"tappedByOther"`
	InCombat       bool          `json:"inCombat"`
	IsSwimming     bool          `json:"isSwimming"`
	Buffs          []string      `json:"buffs"`
	Class          int           `json:"class"`
	IsLocalPlayer  bool          `json:"isLocalPlayer"`
	IsGhost        bool          `json:"isGhost"`
	IsCasting      bool          `json:"isCasting"`
	IsChanneling   bool          `json:"isChanneling"`
	IsStunned      bool          `json:"isStunned"`
	Corpse         game.Position `json:"corpse"`
	ItemID         int           `json:"itemId"`
	Quality        int           `json:"quality"`
	ItemClass      int           `json:"itemClass"`
	ItemSubclass   int           `json:"itemSubclass"`
	RequiredLevel  int           `json:"requiredLevel"`
	StackCount     int           `json:"stackCount"`
	Durability     int           `json:"durability"`
	MaxDurability  int           `json:"maxDurability"`
	IsFood         bool          `json:"isFood"`
	IsDrink        bool          `json:"isDrink"`
	IsQuest        bool          `json:"isQuest"`
	EquipSlots     []int         `json:"equipSlots"`
	ContainerSlots int           `json:"containerSlots"`
	GoKind         int           `json:"goKind"`
	CreatedBy      uint64        `json:"createdBy"`
	DisplayID      int           `json:"displayId"`
	CanBeOpened    bool          `json:"canBeOpened"`
}

func (c *Conn) VisibleObjects() ([]game.Object, error) {
	var wire []wireObject
	if err := c.call("VisibleObjects", nil, &wire); err != nil {
		return nil, err
	}

	objects := make([]game.Object, 0, len(wire))
	for _, w := range wire {
		obj, err := decodeObject(w)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func decodeObject(w wireObject) (game.Object, error) {
	switch w.Type {
	case "unit":
		u := decodeUnit(w, game.ObjectTypeUnit)
		return &u, nil

	case "player":
		p := game.Player{
			Unit:  decodeUnit(w, game.ObjectTypePlayer),
			Class: game.Class(w.Class),
		}
		if !w.IsLocalPlayer {
			return &p, nil
		}
		return &game.LocalPlayer{
			Player:       p,
			Rage:         w.Rage,
			Energy:       w.Energy,
			IsGhost:      w.IsGhost,
			IsCasting:    w.IsCasting,
			IsChanneling: w.IsChanneling,
			IsStunned:    w.IsStunned,
			Corpse:       w.Corpse,
		}, nil

	case "item":
		i := decodeItem(w)
		return &i, nil

	case "container":
		return &game.Container{
			Item:  decodeItem(w),
			Slots: w.ContainerSlots,
		}, nil

	case "gameobject":
		return &game.GameObject{
			Entity:      decodeEntity(w, game.ObjectTypeGameObject),
			Kind:        game.GameObjectKind(w.GoKind),
			CreatedBy:   game.Guid(w.CreatedBy),
			DisplayID:   w.DisplayID,
			CanBeOpened: w.CanBeOpened,
		}, nil
	}

	return nil, fmt.Errorf("unknown object type %q for guid %d", w.Type, w.Guid)
}

func decodeEntity(w wireObject, t game.ObjectType) game.Entity {
	return game.Entity{
		Guid:     game.Guid(w.Guid),
		Type:     t,
		Name:     w.Name,
		Position: w.Position,
	}
}

func decodeUnit(w wireObject, t game.ObjectType) game.Unit {
	return game.Unit{
		Entity:         decodeEntity(w, t),
		Health:         w.Health,
		MaxHealth:      w.MaxHealth,
		Mana:           w.Mana,
		MaxMana:        w.MaxMana,
		Level:          w.Level,
		TargetGuid:     game.Guid(w.TargetGuid),
		SummonedByGuid: game.Guid(w.SummonedByGuid),
		Reaction:       game.UnitReaction(w.Reaction),
		NpcID:          w.NpcID,
		Creature:       game.CreatureType(w.CreatureType),
		TappedByOther:  w.TappedByOther,
		InCombat:       w.InCombat,
		IsSwimming:     w.IsSwimming,
		Buffs:          w.Buffs,
	}
}

func decodeItem(w wireObject) game.Item {
	slots := make([]game.EquipSlot, 0, len(w.EquipSlots))
	for _, s := range w.EquipSlots {
		slots = append(slots, game.EquipSlot(s))
	}
	return game.Item{
		Entity:        decodeEntity(w, game.ObjectTypeItem),
		ItemID:        w.ItemID,
		Quality:       game.ItemQuality(w.Quality),
		Class:         game.ItemClass(w.ItemClass),
		Subclass:      game.ItemSubclass(w.ItemSubclass),
		RequiredLevel: w.RequiredLevel,
		StackCount:    w.StackCount,
		Durability:    w.Durability,
		MaxDurability: w.MaxDurability,
		Info: game.ItemInfo{
			IsFood:     w.IsFood,
			IsDrink:    w.IsDrink,
			IsQuest:    w.IsQuest,
			EquipSlots: slots,
		},
	}
}

func (c *Conn) EquippedBagCount() (int, error) {
	var count int
	err := c.call("EquippedBagCount", nil, &count)
	return count, err
}

// CalculatePath satisfies the path provider contract using the navmesh
// loaded inside the game process.
func (c *Conn) CalculatePath(mapID int, start, end game.Position, smooth bool) ([]game.Position, error) {
	var path []game.Position
	err := c.call("CalculatePath", map[string]any{
		"mapId":  mapID,
		"start":  start,
		"end":    end,
		"smooth": smooth,
	}, &path)
	return path, err
}
