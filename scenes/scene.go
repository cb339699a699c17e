package scenes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/instances"
)

// Area is the layout of the render window.
type Area int

const (
	AreaSingle Area = iota
	Area1by3
	Area2by2
)

func (a Area) String() string {
	switch a {
	case AreaSingle:
		return "single"
	case Area1by3:
		return "1by3"
	case Area2by2:
		return "2by2"
	}
	return fmt.Sprintf("area(%d)", int(a))
}

// Scene holds the render parameters scripts drive.
type Scene struct {
	area       Area
	isoValue   float64
	clearColor []float32
	lighting   bool
	title      string
	active     instances.Handle
}

func New() *Scene {
	return &Scene{
		clearColor: slices.Clone(defaultClearColor),
		lighting:   true,
	}
}

var defaultClearColor = []float32{0, 0, 0, 1}

// Register exposes the scene under the scene table and the Dataset class.
func (s *Scene) Register(b *bridges.Bridge) error {
	for _, def := range []struct {
		name string
		fn   any
		opts []bridges.Option
	}{
		{"scene.setArea", s.setArea, []bridges.Option{
			bridges.Doc("Set the render window layout: 0 single, 1 one by three, 2 two by two."),
			bridges.Defaults(AreaSingle),
		}},
		{"scene.setIsoValue", s.setIsoValue, []bridges.Option{
			bridges.Doc("Set the iso surface value."),
		}},
		{"scene.setClearColor", s.setClearColor, []bridges.Option{
			bridges.Doc("Set the background color as {r, g, b} or {r, g, b, a}."),
			bridges.Defaults(defaultClearColor),
		}},
		{"scene.setLighting", s.setLighting, []bridges.Option{
			bridges.Doc("Toggle lighting."),
			bridges.Defaults(true),
		}},
		{"scene.setTitle", s.setTitle, []bridges.Option{
			bridges.Doc("Set the window title."),
		}},
		{"scene.setActive", s.setActive, []bridges.Option{
			bridges.Doc("Select the dataset to render."),
		}},
		{"scene.active", s.Active, []bridges.Option{
			bridges.Doc("The dataset being rendered."),
			bridges.Exempt(),
		}},
		{"scene.describe", s.String, []bridges.Option{
			bridges.Doc("Summarize the render parameters."),
			bridges.Exempt(),
		}},
	} {
		if err := b.Register(def.name, def.fn, def.opts...); err != nil {
			return err
		}
	}
	return b.RegisterClass("Dataset", OpenDataset, "Open a volume dataset.")
}

func (s *Scene) setArea(area Area) error {
	if area < AreaSingle || area > Area2by2 {
		return fmt.Errorf("invalid area %d", area)
	}
	if area == s.area {
		return bridges.ErrNoChange
	}
	s.area = area
	return nil
}

func (s *Scene) setIsoValue(v float64) error {
	if v == s.isoValue {
		return bridges.ErrNoChange
	}
	s.isoValue = v
	return nil
}

func (s *Scene) setClearColor(color []float32) error {
	switch len(color) {
	case 3:
		color = append(slices.Clone(color), 1)
	case 4:
		color = slices.Clone(color)
	default:
		return fmt.Errorf("clear color needs 3 or 4 components, got %d", len(color))
	}
	s.clearColor = color
	return nil
}

func (s *Scene) setLighting(on bool) {
	s.lighting = on
}

func (s *Scene) setTitle(title string) {
	s.title = title
}

func (s *Scene) setActive(h instances.Handle) {
	s.active = h
}

func (s *Scene) Area() Area {
	return s.area
}

func (s *Scene) IsoValue() float64 {
	return s.isoValue
}

func (s *Scene) ClearColor() []float32 {
	return slices.Clone(s.clearColor)
}

func (s *Scene) Lighting() bool {
	return s.lighting
}

func (s *Scene) Title() string {
	return s.title
}

func (s *Scene) Active() instances.Handle {
	return s.active
}

func (s *Scene) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "area=%s iso=%g clear=%v lighting=%t", s.area, s.isoValue, s.clearColor, s.lighting)
	if s.title != "" {
		fmt.Fprintf(&b, " title=%q", s.title)
	}
	if s.active != instances.Sentinel {
		fmt.Fprintf(&b, " active=%s", s.active)
	}
	return b.String()
}
