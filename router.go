package main

import (
	"log"
	"regexp"
)

// Router dispatches canonical events to configured control-surface actions.
// An event type with no action entry produces no external call. Every branch
// logs and continues on failure so one bad action never blocks later events.
type Router struct {
	actions map[string]ActionConfig
	surface ControlSurface
}

func NewRouter(actions map[string]ActionConfig, surface ControlSurface) *Router {
	return &Router{actions: actions, surface: surface}
}

func (r *Router) Route(event Event) {
	action, ok := r.actions[string(event.Type)]
	if !ok {
		log.Printf("event %s: no action configured", event.Type)
		return
	}
	if r.surface == nil {
		log.Printf("[NO OBS] %s: %s", event.Type, event.Text)
		return
	}

	switch action.Type {
	case "scene_switch":
		if err := r.surface.SetCurrentScene(action.SceneName); err != nil {
			log.Printf("scene switch to %q: %v", action.SceneName, err)
			return
		}
		log.Printf("switched to scene %q", action.SceneName)

	case "source_visibility":
		itemID, err := r.surface.SceneItemID(action.SceneName, action.SourceName)
		if err != nil {
			log.Printf("source %q not found in scene %q: %v", action.SourceName, action.SceneName, err)
			return
		}
		if err := r.surface.SetSceneItemEnabled(action.SceneName, itemID, action.visible()); err != nil {
			log.Printf("set %q visibility: %v", action.SourceName, err)
			return
		}
		log.Printf("set %q visibility in %q to %v", action.SourceName, action.SceneName, action.visible())

	case "text_update":
		text := renderTemplate(action.TextTemplate, event)
		if err := r.surface.SetText(action.SourceName, text); err != nil {
			log.Printf("update text source %q: %v", action.SourceName, err)
			return
		}
		log.Printf("updated text source %q: %s", action.SourceName, text)

	case "filter_toggle":
		filters, err := r.surface.FilterList(action.SourceName)
		if err != nil {
			log.Printf("list filters on %q: %v", action.SourceName, err)
			return
		}
		if !contains(filters, action.FilterName) {
			log.Printf("filter %q not found on source %q", action.FilterName, action.SourceName)
			return
		}
		if err := r.surface.SetFilterEnabled(action.SourceName, action.FilterName, action.enabled()); err != nil {
			log.Printf("toggle filter %q on %q: %v", action.FilterName, action.SourceName, err)
			return
		}
		log.Printf("set filter %q on %q to %v", action.FilterName, action.SourceName, action.enabled())

	case "media_restart":
		inputs, err := r.surface.InputList()
		if err != nil {
			log.Printf("list inputs: %v", err)
			return
		}
		if !contains(inputs, action.SourceName) {
			log.Printf("media source %q not found", action.SourceName)
			return
		}
		if err := r.surface.TriggerMediaAction(action.SourceName, mediaActionRestart); err != nil {
			log.Printf("restart media source %q: %v", action.SourceName, err)
			return
		}
		log.Printf("restarted media source %q", action.SourceName)

	default:
		log.Printf("event %s: unknown action type %q", event.Type, action.Type)
	}
}

var templatePlaceholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// renderTemplate substitutes {field} placeholders from the event. If any
// referenced field is missing the whole template falls back to the event's
// text, never an error.
func renderTemplate(template string, event Event) string {
	if template == "" {
		return event.Text
	}

	missing := false
	rendered := templatePlaceholder.ReplaceAllStringFunc(template, func(ph string) string {
		key := ph[1 : len(ph)-1]
		switch key {
		case "text":
			return event.Text
		case "type":
			return string(event.Type)
		}
		if v, ok := event.Fields[key]; ok {
			return v
		}
		missing = true
		return ph
	})
	if missing {
		return event.Text
	}
	return rendered
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
