package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// printJSONEvents maps the server's PrintJSON message types onto canonical
// event types. Unmapped types fall through to raw_message.
var printJSONEvents = map[string]EventType{
	"ItemSend":           EventItemSent,
	"ItemCheat":          EventItemSent,
	"Hint":               EventHint,
	"Join":               EventPlayerJoined,
	"Part":               EventPlayerLeft,
	"Chat":               EventChat,
	"ServerChat":         EventServerMessage,
	"Tutorial":           EventServerMessage,
	"TagsChanged":        EventServerMessage,
	"CommandResult":      EventServerMessage,
	"AdminCommandResult": EventServerMessage,
	"Goal":               EventGoalCompleted,
	"Release":            EventRelease,
	"Collect":            EventCollect,
	"Countdown":          EventCountdown,
}

type netItem struct {
	Item     int64 `json:"item"`
	Location int64 `json:"location"`
	Player   int   `json:"player"`
	Flags    int   `json:"flags"`
}

type netPlayer struct {
	Team  int    `json:"team"`
	Slot  int    `json:"slot"`
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// jsonPart is one element of a PrintJSON data list. For *_id parts the text
// holds the numeric id.
type jsonPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// APClient is the protocol-client ingestion strategy: it speaks the
// Archipelago JSON-over-websocket protocol directly, joining the session as
// a tracker slot, and explodes server packets into canonical events with all
// ids resolved through the name table.
type APClient struct {
	cfg         ArchipelagoConfig
	names       *NameTable
	subscribers []EventSubscriber
	conn        *websocket.Conn
}

func NewAPClient(cfg ArchipelagoConfig, names *NameTable) *APClient {
	return &APClient{cfg: cfg, names: names}
}

func (c *APClient) Subscribe(sub EventSubscriber) {
	c.subscribers = append(c.subscribers, sub)
}

func (c *APClient) emit(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	for _, sub := range c.subscribers {
		sub.OnEvent(event)
	}
}

// Run dials the server (wss first, plain ws as fallback, matching the
// official client) and processes packets until the socket closes or ctx is
// cancelled. A malformed packet is logged and skipped, never fatal.
func (c *APClient) Run(ctx context.Context) error {
	addr := net.JoinHostPort(c.cfg.Host, c.cfg.Port)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "wss://"+addr, nil)
	if err != nil {
		conn, _, err = websocket.DefaultDialer.DialContext(ctx, "ws://"+addr, nil)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	c.conn = conn
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	log.Printf("connected to archipelago server at %s", addr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.emit(Event{Type: EventDisconnected, Text: "Lost connection to Archipelago server"})
			return fmt.Errorf("read: %w", err)
		}

		var packets []json.RawMessage
		if err := json.Unmarshal(data, &packets); err != nil {
			log.Printf("malformed packet batch: %v (%.200s)", err, data)
			continue
		}
		for _, raw := range packets {
			if err := c.handlePacket(raw); err != nil {
				log.Printf("packet error: %v", err)
			}
		}
	}
}

func (c *APClient) send(packet map[string]interface{}) error {
	return c.conn.WriteJSON([]interface{}{packet})
}

func (c *APClient) handlePacket(raw json.RawMessage) error {
	var head struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("packet header: %w", err)
	}

	switch head.Cmd {
	case "RoomInfo":
		return c.handleRoomInfo(raw)
	case "Connected":
		return c.handleConnected(raw)
	case "ConnectionRefused":
		return c.handleConnectionRefused(raw)
	case "ReceivedItems":
		return c.handleReceivedItems(raw)
	case "LocationInfo":
		return c.handleLocationInfo(raw)
	case "RoomUpdate":
		c.emit(Event{Type: EventRoomUpdate, Text: "Room state updated"})
		return nil
	case "DataPackage":
		return c.handleDataPackage(raw)
	case "PrintJSON":
		return c.handlePrintJSON(raw)
	default:
		log.Printf("unhandled command: %s", head.Cmd)
		return nil
	}
}

func (c *APClient) handleRoomInfo(raw json.RawMessage) error {
	var pkt struct {
		SeedName string   `json:"seed_name"`
		HintCost int      `json:"hint_cost"`
		Games    []string `json:"games"`
	}
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return fmt.Errorf("RoomInfo: %w", err)
	}

	c.emit(Event{
		Type: EventRoomInfo,
		Text: "Room " + pkt.SeedName,
		Fields: map[string]string{
			"seed_name":  pkt.SeedName,
			"hint_cost":  strconv.Itoa(pkt.HintCost),
			"game_count": strconv.Itoa(len(pkt.Games)),
		},
	})

	if err := c.send(map[string]interface{}{"cmd": "GetDataPackage"}); err != nil {
		return fmt.Errorf("GetDataPackage: %w", err)
	}
	return c.send(map[string]interface{}{
		"cmd":      "Connect",
		"game":     "",
		"name":     c.cfg.SlotName,
		"password": c.cfg.Password,
		"uuid":     uuid.NewString(),
		"version": map[string]interface{}{
			"major": 0, "minor": 5, "build": 0, "class": "Version",
		},
		"items_handling": 0,
		"tags":           []string{"Tracker", "Observer"},
		"slot_data":      true,
	})
}

func (c *APClient) handleConnected(raw json.RawMessage) error {
	var pkt struct {
		Players []netPlayer `json:"players"`
	}
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return fmt.Errorf("Connected: %w", err)
	}

	for _, p := range pkt.Players {
		name := p.Alias
		if name == "" {
			name = p.Name
		}
		c.names.SetPlayer(p.Slot, name)
	}

	log.Printf("observer connected, monitoring %d players", len(pkt.Players))
	c.emit(Event{
		Type: EventServerConnected,
		Text: fmt.Sprintf("Observing %d players", len(pkt.Players)),
		Fields: map[string]string{
			"player_count": strconv.Itoa(len(pkt.Players)),
		},
	})
	return nil
}

func (c *APClient) handleConnectionRefused(raw json.RawMessage) error {
	var pkt struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return fmt.Errorf("ConnectionRefused: %w", err)
	}
	reason := strings.Join(pkt.Errors, ", ")
	if reason == "" {
		reason = "unknown"
	}
	c.emit(Event{
		Type:   EventConnectionRefused,
		Text:   "Connection refused: " + reason,
		Fields: map[string]string{"reason": reason},
	})
	return nil
}

// handleReceivedItems explodes one batch packet into one event per item,
// preserving in-batch order.
func (c *APClient) handleReceivedItems(raw json.RawMessage) error {
	var pkt struct {
		Index int       `json:"index"`
		Items []netItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return fmt.Errorf("ReceivedItems: %w", err)
	}

	for i, item := range pkt.Items {
		player := c.names.ResolvePlayer(item.Player)
		itemName := c.names.ResolveItem(item.Item)
		locationName := c.names.ResolveLocation(item.Location)
		c.emit(Event{
			Type: EventItemReceived,
			Text: fmt.Sprintf("%s received %s from %s", player, itemName, locationName),
			Fields: map[string]string{
				"receiving_player": player,
				"item_name":        itemName,
				"location_name":    locationName,
				"index":            strconv.Itoa(pkt.Index + i),
			},
		})
	}
	return nil
}

func (c *APClient) handleLocationInfo(raw json.RawMessage) error {
	var pkt struct {
		Locations []netItem `json:"locations"`
	}
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return fmt.Errorf("LocationInfo: %w", err)
	}

	for _, loc := range pkt.Locations {
		player := c.names.ResolvePlayer(loc.Player)
		itemName := c.names.ResolveItem(loc.Item)
		locationName := c.names.ResolveLocation(loc.Location)
		c.emit(Event{
			Type: EventLocationChecked,
			Text: fmt.Sprintf("%s checked %s", player, locationName),
			Fields: map[string]string{
				"player_name":   player,
				"item_name":     itemName,
				"location_name": locationName,
			},
		})
	}
	return nil
}

func (c *APClient) handleDataPackage(raw json.RawMessage) error {
	var pkt struct {
		Data struct {
			Games map[string]GamePackage `json:"games"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return fmt.Errorf("DataPackage: %w", err)
	}

	for game, gamePkg := range pkt.Data.Games {
		c.names.AddGame(game, gamePkg)
	}

	log.Printf("data package loaded for %d games", len(pkt.Data.Games))
	c.emit(Event{
		Type: EventDataPackageUpdated,
		Text: fmt.Sprintf("Data package loaded for %d games", len(pkt.Data.Games)),
		Fields: map[string]string{
			"game_count": strconv.Itoa(len(pkt.Data.Games)),
		},
	})
	return nil
}

// handlePrintJSON flattens the ordered part list, substituting resolved
// names for id-tagged parts, and maps the message type onto an event type.
func (c *APClient) handlePrintJSON(raw json.RawMessage) error {
	var pkt struct {
		Type string     `json:"type"`
		Data []jsonPart `json:"data"`
	}
	if err := json.Unmarshal(raw, &pkt); err != nil {
		return fmt.Errorf("PrintJSON: %w", err)
	}

	text := c.flattenParts(pkt.Data)
	if text == "" {
		return nil
	}

	eventType, ok := printJSONEvents[pkt.Type]
	if !ok {
		eventType = EventRawMessage
	}
	c.emit(Event{
		Type:   eventType,
		Text:   text,
		Fields: map[string]string{"message": text, "message_type": pkt.Type},
	})
	return nil
}

func (c *APClient) flattenParts(parts []jsonPart) string {
	var b strings.Builder
	for _, part := range parts {
		switch part.Type {
		case "player_id":
			if id, err := strconv.Atoi(part.Text); err == nil {
				b.WriteString(c.names.ResolvePlayer(id))
				continue
			}
			b.WriteString(part.Text)
		case "item_id":
			if id, err := strconv.ParseInt(part.Text, 10, 64); err == nil {
				b.WriteString(c.names.ResolveItem(id))
				continue
			}
			b.WriteString(part.Text)
		case "location_id":
			if id, err := strconv.ParseInt(part.Text, 10, 64); err == nil {
				b.WriteString(c.names.ResolveLocation(id))
				continue
			}
			b.WriteString(part.Text)
		default:
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
