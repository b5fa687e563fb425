package main

import "testing"

func TestParseLineCategories(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   EventType
		text   string
		fields map[string]string
	}{
		{
			name: "item received",
			line: "Alice received Master Sword from Bob",
			want: EventItemReceived,
			text: "Alice received Master Sword from Bob",
			fields: map[string]string{
				"receiving_player": "Alice",
				"item_name":        "Master Sword",
				"sending_player":   "Bob",
			},
		},
		{
			name: "item sent",
			line: "Bob sent Bow to Alice",
			want: EventItemSent,
			text: "Bob sent Bow to Alice",
			fields: map[string]string{
				"sending_player":   "Bob",
				"item_name":        "Bow",
				"receiving_player": "Alice",
			},
		},
		{
			name: "location checked",
			line: "Alice checked Kakariko Well",
			want: EventLocationChecked,
			text: "Alice checked Kakariko Well",
			fields: map[string]string{
				"player_name":   "Alice",
				"location_name": "Kakariko Well",
			},
		},
		{
			name:   "player joined",
			line:   "Alice has joined the room",
			want:   EventPlayerJoined,
			text:   "Alice joined the game",
			fields: map[string]string{"player_name": "Alice"},
		},
		{
			name:   "player left",
			line:   "Alice has left the room",
			want:   EventPlayerLeft,
			text:   "Alice left the game",
			fields: map[string]string{"player_name": "Alice"},
		},
		{
			name:   "goal completed",
			line:   "Alice completed their goal",
			want:   EventGoalCompleted,
			text:   "Alice completed their goal!",
			fields: map[string]string{"player_name": "Alice"},
		},
		{
			name:   "hint",
			line:   "Hint: Bow is at the Shop",
			want:   EventHint,
			text:   "Hint: Bow is at the Shop",
			fields: map[string]string{"hint_text": "Bow is at the Shop"},
		},
		{
			name: "chat",
			line: "[12:34] Alice: good luck everyone",
			want: EventChat,
			text: "Alice: good luck everyone",
			fields: map[string]string{
				"timestamp_str": "12:34",
				"player_name":   "Alice",
				"message":       "good luck everyone",
			},
		},
		{
			name:   "server message",
			line:   "Notice (all): the server restarts soon",
			want:   EventServerMessage,
			text:   "the server restarts soon",
			fields: map[string]string{"message": "the server restarts soon"},
		},
		{
			name:   "compound slot name",
			line:   "GuvnahBRC__Team__1__viewing_Bomb_Rush_Cyberfunk has joined the room",
			want:   EventPlayerJoined,
			text:   "GuvnahBRC joined the game",
			fields: map[string]string{"player_name": "GuvnahBRC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := ParseLine(tt.line)
			if !ok {
				t.Fatalf("ParseLine(%q) matched nothing", tt.line)
			}
			if event.Type != tt.want {
				t.Fatalf("type = %s, want %s", event.Type, tt.want)
			}
			if event.Text != tt.text {
				t.Errorf("text = %q, want %q", event.Text, tt.text)
			}
			for key, want := range tt.fields {
				if got := event.Field(key); got != want {
					t.Errorf("field %s = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestParseLineFirstMatchWins(t *testing.T) {
	// Matches both the item_received and item_sent patterns; the earlier
	// rule must win every time.
	line := "Alice received Sword from Bob sent Axe to Carl"
	for i := 0; i < 50; i++ {
		event, ok := ParseLine(line)
		if !ok {
			t.Fatal("expected a match")
		}
		if event.Type != EventItemReceived {
			t.Fatalf("run %d: type = %s, want %s", i, event.Type, EventItemReceived)
		}
	}
}

func TestParseLineKeywordFallback(t *testing.T) {
	event, ok := ParseLine("the Player standings were updated")
	if !ok {
		t.Fatal("expected raw_message fallback")
	}
	if event.Type != EventRawMessage {
		t.Fatalf("type = %s, want %s", event.Type, EventRawMessage)
	}
	if event.Text != "the Player standings were updated" {
		t.Fatalf("text = %q", event.Text)
	}
}

func TestParseLineDropped(t *testing.T) {
	for _, line := range []string{"", "   ", "the weather is nice today"} {
		if event, ok := ParseLine(line); ok {
			t.Errorf("ParseLine(%q) = %v, want drop", line, event)
		}
	}
}

func TestCanonicalPlayerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GuvnahBRC__Team__1__viewing_Bomb_Rush_Cyberfunk", "GuvnahBRC"},
		{"Alice", "Alice"},
		{"Alice (AP)", "Alice"},
		{"Alice [tracker]", "Alice"},
		{"Bob__Team__2__viewing_OOT (spectating)", "Bob"},
	}
	for _, tt := range tests {
		if got := canonicalPlayerName(tt.in); got != tt.want {
			t.Errorf("canonicalPlayerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLineParserFansOut(t *testing.T) {
	parser := NewLineParser()
	var got []Event
	parser.Subscribe(eventCollector(func(e Event) { got = append(got, e) }))

	parser.OnLine("Alice received Bow from Bob\n")
	parser.OnLine("noise with no meaning\n")
	parser.OnLine("Bob has joined the room\n")

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Type != EventItemReceived || got[1].Type != EventPlayerJoined {
		t.Fatalf("unexpected event types: %s, %s", got[0].Type, got[1].Type)
	}
}

// eventCollector adapts a func to the EventSubscriber interface.
type eventCollector func(Event)

func (f eventCollector) OnEvent(e Event) { f(e) }
