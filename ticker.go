package main

import (
	"context"
	"log"
	"sync"
	"time"
)

// contentSettleDelay lets the control surface register new text/images
// before motion starts.
const contentSettleDelay = 200 * time.Millisecond

// Ticker drives the overlay ticker through one choreography per event:
// reset off-screen, apply content, slide the text in while the image slots
// scale up, then hold until the next event. A goal completion additionally
// runs the celebration scene switch. Play blocks until the sequence settles,
// which is what keeps events animated strictly in arrival order.
type Ticker struct {
	cfg     TickerConfig
	surface ControlSurface
}

func NewTicker(cfg TickerConfig, surface ControlSurface) *Ticker {
	return &Ticker{cfg: cfg, surface: surface}
}

// tickerSlot is one image element, resolved for the current sequence.
type tickerSlot struct {
	source     string
	itemID     int
	hasContent bool
}

func (t *Ticker) Play(ctx context.Context, event Event) {
	if t.surface == nil {
		return
	}

	if !t.cfg.Animation.Enabled {
		// Degenerate sequence: content only, no motion.
		t.applyContent(event, t.slots())
	} else {
		slots := t.slots()
		t.reset(slots)
		applied := t.applyContent(event, slots)
		sleepCtx(ctx, contentSettleDelay)
		t.animate(ctx, applied)
	}

	// The celebration follows either form of the sequence.
	if event.Type == EventGoalCompleted && t.cfg.Celebration.Enabled {
		t.celebrate(ctx, event)
	}
}

// slots resolves the four image elements to scene-item ids. A slot that
// cannot be resolved is skipped for the whole sequence.
func (t *Ticker) slots() []*tickerSlot {
	sources := []string{
		t.cfg.PlayerImage, t.cfg.EventImage, t.cfg.ItemImage, t.cfg.LocationImage,
	}
	var slots []*tickerSlot
	for _, source := range sources {
		if source == "" {
			continue
		}
		itemID, err := t.surface.SceneItemID(t.cfg.SceneName, source)
		if err != nil {
			log.Printf("ticker: image slot %q not found in %q: %v", source, t.cfg.SceneName, err)
			continue
		}
		slots = append(slots, &tickerSlot{source: source, itemID: itemID})
	}
	return slots
}

// reset moves the text off-screen and zeroes every image slot so stale
// content never snaps into the new position. Absolute writes, so repeating
// a reset is a no-op.
func (t *Ticker) reset(slots []*tickerSlot) {
	if itemID, err := t.surface.SceneItemID(t.cfg.SceneName, t.cfg.TextSource); err != nil {
		log.Printf("ticker: text source %q not found in %q: %v", t.cfg.TextSource, t.cfg.SceneName, err)
	} else if err := t.surface.SetSceneItemTransform(t.cfg.SceneName, itemID, posX(t.cfg.Animation.StartX)); err != nil {
		log.Printf("ticker: reset text position: %v", err)
	}

	for _, slot := range slots {
		if err := t.surface.SetSceneItemTransform(t.cfg.SceneName, slot.itemID, scaleXY(0)); err != nil {
			log.Printf("ticker: reset %q scale: %v", slot.source, err)
		}
	}
}

// applyContent pushes the event's text and images into the elements and
// returns the slots that received an image.
func (t *Ticker) applyContent(event Event, slots []*tickerSlot) []*tickerSlot {
	if err := t.surface.SetText(t.cfg.TextSource, event.DisplayText()); err != nil {
		log.Printf("ticker: set text: %v", err)
	}

	for _, slot := range slots {
		path, ok := t.imageFor(slot.source, event)
		if !ok {
			continue
		}
		if err := t.surface.SetImageFile(slot.source, path); err != nil {
			log.Printf("ticker: set image on %q: %v", slot.source, err)
			continue
		}
		slot.hasContent = true
	}

	var applied []*tickerSlot
	for _, slot := range slots {
		if slot.hasContent {
			applied = append(applied, slot)
		}
	}
	return applied
}

func (t *Ticker) imageFor(source string, event Event) (string, bool) {
	images := t.cfg.Images
	switch source {
	case t.cfg.PlayerImage:
		return images.PlayerImage(eventPlayer(event))
	case t.cfg.EventImage:
		return images.EventImage(event.Type)
	case t.cfg.ItemImage:
		return images.ItemImage(event.Field("item_name"))
	case t.cfg.LocationImage:
		return images.LocationImage(event.Field("location_name"))
	}
	return "", false
}

// eventPlayer picks the player name a viewer would associate with the event.
func eventPlayer(event Event) string {
	for _, key := range []string{"player_name", "receiving_player", "sending_player"} {
		if v := event.Field(key); v != "" {
			return v
		}
	}
	return ""
}

// animate runs the text slide and the staggered image scale-ups
// concurrently and joins before returning; only then is the sequence
// settled.
func (t *Ticker) animate(ctx context.Context, slots []*tickerSlot) {
	anim := t.cfg.Animation

	var wg sync.WaitGroup

	textID, err := t.surface.SceneItemID(t.cfg.SceneName, t.cfg.TextSource)
	if err != nil {
		log.Printf("ticker: text source %q not found: %v", t.cfg.TextSource, err)
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.slideText(ctx, textID)
		}()
	}

	for i, slot := range slots {
		wg.Add(1)
		go func(delay time.Duration, slot *tickerSlot) {
			defer wg.Done()
			sleepCtx(ctx, delay)
			t.growImage(ctx, slot)
		}(time.Duration(i)*anim.ImageStagger, slot)
	}

	wg.Wait()
}

func (t *Ticker) slideText(ctx context.Context, itemID int) {
	anim := t.cfg.Animation
	for step := 0; step <= anim.Steps; step++ {
		x := slideOffset(anim.StartX, anim.EndX, step, anim.Steps, anim.Exponent)
		if err := t.surface.SetSceneItemTransform(t.cfg.SceneName, itemID, posX(x)); err != nil {
			log.Printf("ticker: text slide step %d: %v", step, err)
		}
		if step < anim.Steps {
			sleepCtx(ctx, anim.Duration/time.Duration(anim.Steps))
		}
	}
}

func (t *Ticker) growImage(ctx context.Context, slot *tickerSlot) {
	anim := t.cfg.Animation
	if anim.ImageSteps <= 0 {
		if err := t.surface.SetSceneItemTransform(t.cfg.SceneName, slot.itemID, scaleXY(1)); err != nil {
			log.Printf("ticker: %q scale: %v", slot.source, err)
		}
		return
	}
	for step := 0; step <= anim.ImageSteps; step++ {
		progress := float64(step) / float64(anim.ImageSteps)
		scale := imageScale(progress, anim.Bounce)
		if err := t.surface.SetSceneItemTransform(t.cfg.SceneName, slot.itemID, scaleXY(scale)); err != nil {
			log.Printf("ticker: %q scale step %d: %v", slot.source, step, err)
		}
		if step < anim.ImageSteps {
			sleepCtx(ctx, anim.ImageDuration/time.Duration(anim.ImageSteps))
		}
	}
}

// celebrate switches to the celebration scene, holds it, and switches back.
// The celebration text element is optional; failures there are ignored.
func (t *Ticker) celebrate(ctx context.Context, event Event) {
	celebration := t.cfg.Celebration

	if celebration.TextSource != "" {
		if err := t.surface.SetText(celebration.TextSource, event.Text); err != nil {
			log.Printf("ticker: celebration text: %v", err)
		}
	}

	if err := t.surface.SetCurrentScene(celebration.SceneName); err != nil {
		log.Printf("ticker: switch to celebration scene %q: %v", celebration.SceneName, err)
		return
	}
	log.Printf("celebration: switched to scene %q for %s", celebration.SceneName, celebration.Duration)

	sleepCtx(ctx, celebration.Duration)

	if err := t.surface.SetCurrentScene(celebration.MainScene); err != nil {
		log.Printf("ticker: switch back to scene %q: %v", celebration.MainScene, err)
		return
	}
	log.Printf("celebration: back to scene %q", celebration.MainScene)
}

// sleepCtx pauses for d, returning early on context cancellation. Animation
// loops keep stepping after cancellation so the surface is never left
// half-transformed; only the waits are cut short.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
