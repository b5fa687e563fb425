package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// lineRule maps one output-line pattern to an event type. Rules are tried in
// slice order and the first match wins, so the order of lineRules is part of
// the parsing contract.
type lineRule struct {
	event   EventType
	pattern *regexp.Regexp
	extract func(m []string) (text string, fields map[string]string)
}

var lineRules = []lineRule{
	{
		event:   EventItemReceived,
		pattern: regexp.MustCompile(`^(.+?) received (.+?) from (.+)$`),
		extract: func(m []string) (string, map[string]string) {
			recv, send := canonicalPlayerName(m[1]), canonicalPlayerName(m[3])
			return fmt.Sprintf("%s received %s from %s", recv, m[2], send), map[string]string{
				"receiving_player": recv,
				"item_name":        m[2],
				"sending_player":   send,
			}
		},
	},
	{
		event:   EventItemSent,
		pattern: regexp.MustCompile(`^(.+?) sent (.+?) to (.+)$`),
		extract: func(m []string) (string, map[string]string) {
			send, recv := canonicalPlayerName(m[1]), canonicalPlayerName(m[3])
			return fmt.Sprintf("%s sent %s to %s", send, m[2], recv), map[string]string{
				"sending_player":   send,
				"item_name":        m[2],
				"receiving_player": recv,
			}
		},
	},
	{
		event:   EventLocationChecked,
		pattern: regexp.MustCompile(`^(.+?) checked (.+)$`),
		extract: func(m []string) (string, map[string]string) {
			player := canonicalPlayerName(m[1])
			return fmt.Sprintf("%s checked %s", player, m[2]), map[string]string{
				"player_name":   player,
				"location_name": m[2],
			}
		},
	},
	{
		event:   EventPlayerJoined,
		pattern: regexp.MustCompile(`^(.+?) has joined`),
		extract: func(m []string) (string, map[string]string) {
			player := canonicalPlayerName(m[1])
			return fmt.Sprintf("%s joined the game", player), map[string]string{
				"player_name": player,
			}
		},
	},
	{
		event:   EventPlayerLeft,
		pattern: regexp.MustCompile(`^(.+?) has left`),
		extract: func(m []string) (string, map[string]string) {
			player := canonicalPlayerName(m[1])
			return fmt.Sprintf("%s left the game", player), map[string]string{
				"player_name": player,
			}
		},
	},
	{
		event:   EventGoalCompleted,
		pattern: regexp.MustCompile(`^(.+?) completed their goal`),
		extract: func(m []string) (string, map[string]string) {
			player := canonicalPlayerName(m[1])
			return fmt.Sprintf("%s completed their goal!", player), map[string]string{
				"player_name": player,
			}
		},
	},
	{
		event:   EventHint,
		pattern: regexp.MustCompile(`^Hint: (.+)$`),
		extract: func(m []string) (string, map[string]string) {
			return "Hint: " + m[1], map[string]string{"hint_text": m[1]}
		},
	},
	{
		event:   EventChat,
		pattern: regexp.MustCompile(`^\[(.+?)\] (.+?): (.+)$`),
		extract: func(m []string) (string, map[string]string) {
			player := canonicalPlayerName(m[2])
			return fmt.Sprintf("%s: %s", player, m[3]), map[string]string{
				"timestamp_str": m[1],
				"player_name":   player,
				"message":       m[3],
			}
		},
	},
	{
		event:   EventServerMessage,
		pattern: regexp.MustCompile(`Notice.*?: (.+)$`),
		extract: func(m []string) (string, map[string]string) {
			return m[1], map[string]string{"message": m[1]}
		},
	},
	{
		event:   EventRelease,
		pattern: regexp.MustCompile(`^(.+?) has released`),
		extract: func(m []string) (string, map[string]string) {
			player := canonicalPlayerName(m[1])
			return fmt.Sprintf("%s has released their items", player), map[string]string{
				"player_name": player,
			}
		},
	},
	{
		event:   EventCollect,
		pattern: regexp.MustCompile(`^(.+?) has collected`),
		extract: func(m []string) (string, map[string]string) {
			player := canonicalPlayerName(m[1])
			return fmt.Sprintf("%s has collected their items", player), map[string]string{
				"player_name": player,
			}
		},
	},
	{
		event:   EventServerConnected,
		pattern: regexp.MustCompile(`Successfully connected to (.+)$`),
		extract: func(m []string) (string, map[string]string) {
			return "Connected to " + m[1], map[string]string{"server": m[1]}
		},
	},
	{
		event:   EventConnectionRefused,
		pattern: regexp.MustCompile(`Failed to connect|Connection.* failed|Unable to connect`),
		extract: func(m []string) (string, map[string]string) {
			return "Connection to the server failed", nil
		},
	},
}

// rawMessageKeywords trigger the generic fallback for lines no rule matched.
var rawMessageKeywords = []string{"item", "location", "player", "goal", "hint", "chat"}

// ParseLine turns one client output line into at most one Event. The second
// return value is false when the line matched nothing and should be dropped.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}

	for _, rule := range lineRules {
		m := rule.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text, fields := rule.extract(m)
		if text == "" {
			text = line
		}
		return Event{
			Type:   rule.event,
			Text:   text,
			Time:   time.Now(),
			Fields: fields,
		}, true
	}

	lower := strings.ToLower(line)
	for _, kw := range rawMessageKeywords {
		if strings.Contains(lower, kw) {
			return Event{
				Type: EventRawMessage,
				Text: line,
				Time: time.Now(),
			}, true
		}
	}

	return Event{}, false
}

// canonicalPlayerName reduces compound slot identifiers like
// "GuvnahBRC__Team__1__viewing_Bomb_Rush_Cyberfunk" to the leading name
// segment, then strips any trailing parenthesised or bracketed suffix.
func canonicalPlayerName(name string) string {
	if i := strings.Index(name, "__"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexAny(name, "(["); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// LineParser adapts raw client output lines into canonical events and fans
// them out to subscribers. A line that parses to nothing is dropped; a
// single bad line never stops the feed.
type LineParser struct {
	subscribers []EventSubscriber
}

func NewLineParser() *LineParser {
	return &LineParser{}
}

func (p *LineParser) Subscribe(sub EventSubscriber) {
	p.subscribers = append(p.subscribers, sub)
}

func (p *LineParser) OnLine(line string) {
	event, ok := ParseLine(line)
	if !ok {
		return
	}
	for _, sub := range p.subscribers {
		sub.OnEvent(event)
	}
}
