package main

// Transform is a partial scene-item transform. Nil fields are left untouched.
type Transform struct {
	PositionX *float64
	PositionY *float64
	ScaleX    *float64
	ScaleY    *float64
}

func posX(x float64) Transform {
	return Transform{PositionX: &x}
}

func scaleXY(s float64) Transform {
	return Transform{ScaleX: &s, ScaleY: &s}
}

// ControlSurface is the narrow adapter in front of the overlay-control
// service. The router and ticker only ever talk to this interface, so the
// log-and-continue policy for external failures lives in exactly two places
// (Router.Route and Ticker.Play) instead of at every call site.
type ControlSurface interface {
	SceneList() ([]string, error)
	CurrentScene() (string, error)
	SetCurrentScene(scene string) error
	SceneItemID(scene, source string) (int, error)
	SetSceneItemEnabled(scene string, itemID int, enabled bool) error
	SetSceneItemTransform(scene string, itemID int, t Transform) error
	SetText(source, text string) error
	SetImageFile(source, path string) error
	InputList() ([]string, error)
	FilterList(source string) ([]string, error)
	SetFilterEnabled(source, filter string, enabled bool) error
	TriggerMediaAction(source, action string) error
	Close() error
}
