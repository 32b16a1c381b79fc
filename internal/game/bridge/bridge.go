// Package bridge implements game.Client over the JSON line protocol spoken
// by the injected helper running inside the game process. One request, one
// response, newline framed. The engine serializes all calls on its tick
// goroutine so the connection needs no locking, but a mutex guards against
// accidental misuse.
package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/varkas/grindbot/internal/game"
)

type Conn struct {
	mu      sync.Mutex
	conn    net.Conn
	enc     *json.Encoder
	scanner *bufio.Scanner
	version game.ClientVersion
}

func Dial(addr string, version game.ClientVersion) (*Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("error connecting to client bridge at %s: %w", addr, err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	return &Conn{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		scanner: scanner,
		version: version,
	}, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

type request struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

type response struct {
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

func (c *Conn) call(method string, params map[string]any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enc.Encode(request{Method: method, Params: params}); err != nil {
		return fmt.Errorf("bridge call %s: %w", method, err)
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("bridge call %s: %w", method, err)
		}
		return fmt.Errorf("bridge call %s: connection closed", method)
	}

	var resp response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("bridge call %s: malformed response: %w", method, err)
	}
	if resp.Error != "" {
		return fmt.Errorf("bridge call %s: %s", method, resp.Error)
	}
	if out != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("bridge call %s: decoding result: %w", method, err)
		}
	}
	return nil
}

// fire issues a command-style call whose failure the states cannot act on
// anyway: the next snapshot shows whether the command took effect.
func (c *Conn) fire(method string, params map[string]any) {
	_ = c.call(method, params, nil)
}

func posParams(p game.Position) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y, "z": p.Z}
}

func (c *Conn) Version() game.ClientVersion { return c.version }

func (c *Conn) LocalPlayerGuid() (game.Guid, error) {
	var g uint64
	err := c.call("LocalPlayerGuid", nil, &g)
	return game.Guid(g), err
}

func (c *Conn) MapID() (int, error) {
	var id int
	err := c.call("MapId", nil, &id)
	return id, err
}

func (c *Conn) ZoneText() (string, error) {
	var zone string
	err := c.call("ZoneText", nil, &zone)
	return zone, err
}

func (c *Conn) StartMovement(bit game.ControlBits) {
	c.fire("StartMovement", map[string]any{"bit": uint32(bit)})
}

func (c *Conn) StopMovement(bit game.ControlBits) {
	c.fire("StopMovement", map[string]any{"bit": uint32(bit)})
}

func (c *Conn) StopAllMovement() { c.fire("StopAllMovement", nil) }

func (c *Conn) Face(p game.Position) { c.fire("Face", posParams(p)) }

func (c *Conn) Jump() { c.fire("Jump", nil) }

func (c *Conn) SetTarget(g game.Guid) {
	c.fire("SetTarget", map[string]any{"guid": uint64(g)})
}

func (c *Conn) StartAttack() { c.fire("StartAttack", nil) }

func (c *Conn) IsAutoRepeatingAction(slot int) (bool, error) {
	var repeating bool
	err := c.call("IsAutoRepeatingAction", map[string]any{"slot": slot}, &repeating)
	return repeating, err
}

func (c *Conn) UseActionSlot(slot int) {
	c.fire("UseActionSlot", map[string]any{"slot": slot})
}

func (c *Conn) CastSpellByName(name string, onSelf bool) {
	c.fire("CastSpellByName", map[string]any{"name": name, "onSelf": onSelf})
}

func (c *Conn) SpellReady(name string) (bool, error) {
	var ready bool
	err := c.call("SpellReady", map[string]any{"name": name}, &ready)
	return ready, err
}

func (c *Conn) RunScript(command string) {
	c.fire("RunScript", map[string]any{"command": command})
}

func (c *Conn) TeleportTo(p game.Position) { c.fire("TeleportTo", posParams(p)) }

func (c *Conn) Interact(g game.Guid) {
	c.fire("Interact", map[string]any{"guid": uint64(g)})
}

func (c *Conn) UseItem(g game.Guid) {
	c.fire("UseItem", map[string]any{"guid": uint64(g)})
}

func (c *Conn) ConfirmEquipPending() { c.fire("ConfirmEquipPending", nil) }

func (c *Conn) SendChat(message string) {
	c.fire("SendChat", map[string]any{"message": message})
}

func (c *Conn) PollUiMessages() ([]string, error) {
	var msgs []string
	err := c.call("PollUiMessages", nil, &msgs)
	return msgs, err
}

func (c *Conn) LootFrame() (*game.LootFrame, error) {
	var frame *game.LootFrame
	if err := c.call("LootFrame", nil, &frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (c *Conn) LootSlot(index int) {
	c.fire("LootSlot", map[string]any{"index": index})
}

func (c *Conn) CloseLootFrame() { c.fire("CloseLootFrame", nil) }

func (c *Conn) DialogFrame() (*game.DialogFrame, error) {
	var frame *game.DialogFrame
	if err := c.call("DialogFrame", nil, &frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (c *Conn) SelectDialogOption(t game.DialogType) {
	c.fire("SelectDialogOption", map[string]any{"type": int(t)})
}

func (c *Conn) MerchantFrameReady() (bool, error) {
	var ready bool
	err := c.call("MerchantFrameReady", nil, &ready)
	return ready, err
}

func (c *Conn) BuyItemByName(itemName string, quantity int) {
	c.fire("BuyItemByName", map[string]any{"name": itemName, "quantity": quantity})
}

func (c *Conn) SellItem(g game.Guid, quantity int) {
	c.fire("SellItem", map[string]any{"guid": uint64(g), "quantity": quantity})
}

func (c *Conn) RepairAllItems() { c.fire("RepairAllItems", nil) }

func (c *Conn) CloseMerchantFrame() { c.fire("CloseMerchantFrame", nil) }

func (c *Conn) EquippedItemGuid(slot game.EquipSlot) (game.Guid, error) {
	var g uint64
	err := c.call("EquippedItemGuid", map[string]any{"slot": int(slot)}, &g)
	return game.Guid(g), err
}

func (c *Conn) RepopMe() { c.fire("RepopMe", nil) }

func (c *Conn) RetrieveCorpse() { c.fire("RetrieveCorpse", nil) }

func (c *Conn) CorpsePosition() (game.Position, error) {
	var p game.Position
	err := c.call("CorpsePosition", nil, &p)
	return p, err
}

func (c *Conn) JoinBattlefieldQueue(index int) {
	c.fire("JoinBattlefieldQueue", map[string]any{"index": index})
}

func (c *Conn) BattlefieldPortReady() (bool, error) {
	var ready bool
	err := c.call("BattlefieldPortReady", nil, &ready)
	return ready, err
}

func (c *Conn) AcceptBattlefieldPort() { c.fire("AcceptBattlefieldPort", nil) }

func (c *Conn) LeaveBattlefield() { c.fire("LeaveBattlefield", nil) }
