package bot

import (
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/varkas/grindbot/internal/config"
	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/pather"
	"github.com/varkas/grindbot/internal/store"
)

// fakeClient records every command and serves snapshots from its object
// list. Query hooks default to benign values and can be overridden per test.
type fakeClient struct {
	calls []string

	playerGuid game.Guid
	objects    []game.Object
	mapID      int
	zone       string

	lootFrame       *game.LootFrame
	dialogFrame     *game.DialogFrame
	merchantReady   bool
	corpsePos       game.Position
	portReady       bool
	spellReady      bool
	autoRepeating   bool
	equippedGuids   map[game.EquipSlot]game.Guid
	equippedBags    int
	heldBits        game.ControlBits
	target          game.Guid
	teleportedTo    []game.Position
	lootedSlots     []int
	soldItems       []game.Guid
	boughtItems     []string
	usedItems       []game.Guid
	interactedGuids []game.Guid
	uiMessages      []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		playerGuid:    1,
		mapID:         1,
		zone:          "Durotar",
		spellReady:    true,
		equippedGuids: map[game.EquipSlot]game.Guid{},
	}
}

func (f *fakeClient) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeClient) called(name string) bool {
	return f.count(name) > 0
}

func (f *fakeClient) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) Version() game.ClientVersion { return game.VersionVanilla }

func (f *fakeClient) LocalPlayerGuid() (game.Guid, error) { return f.playerGuid, nil }
func (f *fakeClient) VisibleObjects() ([]game.Object, error) {
	return f.objects, nil
}
func (f *fakeClient) MapID() (int, error)       { return f.mapID, nil }
func (f *fakeClient) ZoneText() (string, error) { return f.zone, nil }

func (f *fakeClient) StartMovement(bit game.ControlBits) {
	f.record("StartMovement")
	f.heldBits |= bit
}
func (f *fakeClient) StopMovement(bit game.ControlBits) {
	f.record("StopMovement")
	f.heldBits &^= bit
}
func (f *fakeClient) StopAllMovement() {
	f.record("StopAllMovement")
	f.heldBits = 0
}
func (f *fakeClient) Face(p game.Position) { f.record("Face") }
func (f *fakeClient) Jump()                { f.record("Jump") }

func (f *fakeClient) SetTarget(g game.Guid) {
	f.record("SetTarget")
	f.target = g
}
func (f *fakeClient) StartAttack() { f.record("StartAttack") }
func (f *fakeClient) IsAutoRepeatingAction(slot int) (bool, error) {
	return f.autoRepeating, nil
}
func (f *fakeClient) UseActionSlot(slot int) { f.record("UseActionSlot") }
func (f *fakeClient) CastSpellByName(name string, onSelf bool) {
	f.record("CastSpellByName:" + name)
}
func (f *fakeClient) SpellReady(name string) (bool, error) { return f.spellReady, nil }
func (f *fakeClient) RunScript(command string)             { f.record("RunScript") }
func (f *fakeClient) TeleportTo(p game.Position) {
	f.record("TeleportTo")
	f.teleportedTo = append(f.teleportedTo, p)
}

func (f *fakeClient) Interact(g game.Guid) {
	f.record("Interact")
	f.interactedGuids = append(f.interactedGuids, g)
}
func (f *fakeClient) UseItem(g game.Guid) {
	f.record("UseItem")
	f.usedItems = append(f.usedItems, g)
}
func (f *fakeClient) ConfirmEquipPending() { f.record("ConfirmEquipPending") }
func (f *fakeClient) SendChat(message string) {
	f.record("SendChat")
}
func (f *fakeClient) PollUiMessages() ([]string, error) {
	f.record("PollUiMessages")
	msgs := f.uiMessages
	f.uiMessages = nil
	return msgs, nil
}

func (f *fakeClient) LootFrame() (*game.LootFrame, error) { return f.lootFrame, nil }
func (f *fakeClient) LootSlot(index int) {
	f.record("LootSlot")
	f.lootedSlots = append(f.lootedSlots, index)
}
func (f *fakeClient) CloseLootFrame() { f.record("CloseLootFrame") }

func (f *fakeClient) DialogFrame() (*game.DialogFrame, error) { return f.dialogFrame, nil }
func (f *fakeClient) SelectDialogOption(t game.DialogType)    { f.record("SelectDialogOption") }
func (f *fakeClient) MerchantFrameReady() (bool, error)       { return f.merchantReady, nil }
func (f *fakeClient) BuyItemByName(itemName string, quantity int) {
	f.record("BuyItemByName")
	f.boughtItems = append(f.boughtItems, itemName)
}
func (f *fakeClient) SellItem(g game.Guid, quantity int) {
	f.record("SellItem")
	f.soldItems = append(f.soldItems, g)
}
func (f *fakeClient) RepairAllItems()     { f.record("RepairAllItems") }
func (f *fakeClient) CloseMerchantFrame() { f.record("CloseMerchantFrame") }

func (f *fakeClient) EquippedItemGuid(slot game.EquipSlot) (game.Guid, error) {
	return f.equippedGuids[slot], nil
}
func (f *fakeClient) EquippedBagCount() (int, error) { return f.equippedBags, nil }

func (f *fakeClient) RepopMe()        { f.record("RepopMe") }
func (f *fakeClient) RetrieveCorpse() { f.record("RetrieveCorpse") }
func (f *fakeClient) CorpsePosition() (game.Position, error) {
	return f.corpsePos, nil
}

func (f *fakeClient) JoinBattlefieldQueue(index int)       { f.record("JoinBattlefieldQueue") }
func (f *fakeClient) BattlefieldPortReady() (bool, error)  { return f.portReady, nil }
func (f *fakeClient) AcceptBattlefieldPort()               { f.record("AcceptBattlefieldPort") }
func (f *fakeClient) LeaveBattlefield()                    { f.record("LeaveBattlefield") }

// straightLineProvider returns two-point paths, distance checks degrade to
// straight-line without a collision grid.
type straightLineProvider struct{}

func (straightLineProvider) CalculatePath(mapID int, start, end game.Position, smooth bool) ([]game.Position, error) {
	return []game.Position{start, end}, nil
}

// testWorld is an in-memory store.WorldData with a single hotspot.
type testWorld struct {
	hotspot *store.Hotspot
}

func (w *testWorld) HotspotByID(id int) (*store.Hotspot, error)          { return w.hotspot, nil }
func (w *testWorld) HotspotsForLevel(level int) ([]*store.Hotspot, error) {
	return []*store.Hotspot{w.hotspot}, nil
}
func (w *testWorld) NpcByName(name string) (*store.Npc, error) { return nil, nil }
func (w *testWorld) TravelPathByName(name string) (*store.TravelPath, error) {
	return nil, nil
}

type testFixture struct {
	ctx    *Ctx
	client *fakeClient
	clock  *fakeClock
}

// newTestFixture wires a Ctx around a fakeClient. The player starts alive at
// the origin; call addUnit / setPlayer then refresh to publish a snapshot.
func newTestFixture() *testFixture {
	client := newFakeClient()
	clock := newFakeClock()

	c := &Ctx{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Client:  client,
		Profile: game.ProfileFor(game.VersionVanilla),
		Manager: game.NewManager(client),
		Session: game.NewSession(),
		Timers:  NewTimers(clock.Now),
		Pather:  pather.NewPathFinder(straightLineProvider{}),
		Cfg:     &config.CharacterCfg{},
		Events:  event.NewListener(slog.New(slog.NewTextHandler(io.Discard, nil))),
		Rand:    rand.New(rand.NewSource(1)),
		Clock:   clock.Now,
		Name:    "tester",
	}
	c.Schedule = func(fn func()) { fn() }

	f := &testFixture{ctx: c, client: client, clock: clock}
	f.setPlayer(alivePlayer())
	f.setHotspot(&store.Hotspot{ID: 1, Zone: "Durotar"})
	f.refresh()
	return f
}

func (f *testFixture) setHotspot(h *store.Hotspot) {
	f.ctx.Hotspot = h
	f.ctx.Data = &testWorld{hotspot: h}
}

func (f *testFixture) setPlayer(p *game.LocalPlayer) {
	f.client.playerGuid = p.Guid
	for i, o := range f.client.objects {
		if o.ObjectGuid() == p.Guid {
			f.client.objects[i] = p
			return
		}
	}
	f.client.objects = append(f.client.objects, p)
}

func (f *testFixture) addUnit(u *game.Unit) {
	u.Type = game.ObjectTypeUnit
	f.client.objects = append(f.client.objects, u)
}

func (f *testFixture) addObject(o game.Object) {
	f.client.objects = append(f.client.objects, o)
}

func (f *testFixture) dropSoldObjects() {
	if len(f.client.soldItems) == 0 {
		return
	}
	kept := f.client.objects[:0]
	for _, o := range f.client.objects {
		sold := false
		for _, g := range f.client.soldItems {
			if o.ObjectGuid() == g {
				sold = true
				break
			}
		}
		if !sold {
			kept = append(kept, o)
		}
	}
	f.client.objects = kept
	f.refresh()
}

func (f *testFixture) refresh() {
	if err := f.ctx.Manager.Refresh(); err != nil {
		panic(err)
	}
}

func (f *testFixture) advance(d time.Duration) {
	f.clock.Advance(d)
}

func alivePlayer() *game.LocalPlayer {
	return &game.LocalPlayer{
		Player: game.Player{
			Unit: game.Unit{
				Entity: game.Entity{
					Guid: 1,
					Type: game.ObjectTypePlayer,
					Name: "tester",
				},
				Health:    100,
				MaxHealth: 100,
				Mana:      100,
				MaxMana:   100,
				Level:     20,
			},
			Class: game.ClassWarrior,
		},
	}
}

func hostileUnit(guid game.Guid, level int, pos game.Position) *game.Unit {
	return &game.Unit{
		Entity: game.Entity{
			Guid:     guid,
			Type:     game.ObjectTypeUnit,
			Name:     "Scorpid Worker",
			Position: pos,
		},
		Health:    50,
		MaxHealth: 50,
		Level:     level,
		Reaction:  game.ReactionHostile,
	}
}
