package choropleth

import (
	"fmt"

	vegaskema "github.com/reoring/vegaskema"
	g "github.com/reoring/vegaskema/dsl"
)

// WindowParams is the canvas size in pixels.
type WindowParams struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ColorStyle names the gradient used to color regions.
type ColorStyle int

const (
	ColorStyleUnset ColorStyle = iota // not populated
	BlueToRed
	SkyBlueToWhite
	PurpleToYellow
	RedTransparency
	BlueTransparency
	BlueGreenYellow
	WhiteToBlue
	BlueWhiteRed
	GreenYellowRed
)

// ColorStyles maps the wire literals of color_gradient.value to ColorStyle.
var ColorStyles = g.NewEnum("color gradient",
	g.EnumEntry[ColorStyle]{Name: "blue_to_red", Value: BlueToRed},
	g.EnumEntry[ColorStyle]{Name: "skyblue_to_white", Value: SkyBlueToWhite},
	g.EnumEntry[ColorStyle]{Name: "purple_to_yellow", Value: PurpleToYellow},
	g.EnumEntry[ColorStyle]{Name: "red_transparency", Value: RedTransparency},
	g.EnumEntry[ColorStyle]{Name: "blue_transparency", Value: BlueTransparency},
	g.EnumEntry[ColorStyle]{Name: "blue_green_yellow", Value: BlueGreenYellow},
	g.EnumEntry[ColorStyle]{Name: "white_blue", Value: WhiteToBlue},
	g.EnumEntry[ColorStyle]{Name: "blue_white_red", Value: BlueWhiteRed},
	g.EnumEntry[ColorStyle]{Name: "green_yellow_red", Value: GreenYellowRed},
)

// ParseColorStyle resolves a wire literal.
func ParseColorStyle(name string) (ColorStyle, error) { return ColorStyles.Lookup(name) }

func (c ColorStyle) String() string {
	if name, ok := ColorStyles.Name(c); ok {
		return name
	}
	if c == ColorStyleUnset {
		return "unset"
	}
	return fmt.Sprintf("ColorStyle(%d)", int(c))
}

// MarshalText emits the wire literal; the unset style marshals to "".
func (c ColorStyle) MarshalText() ([]byte, error) {
	if c == ColorStyleUnset {
		return []byte{}, nil
	}
	name, ok := ColorStyles.Name(c)
	if !ok {
		return nil, fmt.Errorf("choropleth: invalid color style %d", int(c))
	}
	return []byte(name), nil
}

// UnmarshalText accepts a wire literal or "".
func (c *ColorStyle) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = ColorStyleUnset
		return nil
	}
	v, err := ParseColorStyle(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ColorBound is the (Low, High) domain stretched across the gradient. The
// pair is kept exactly as written; Low may exceed High.
type ColorBound struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Map is the validated choropleth configuration handed to the renderer.
// Fields after the gate that stopped a parse keep their zero values.
type Map struct {
	Window     WindowParams `json:"window"`
	ColorStyle ColorStyle   `json:"color_style"`
	ColorBound ColorBound   `json:"color_bound"`
	Opacity    float64      `json:"opacity"`
}

// Gate identifies a step of the parse cascade.
type Gate int

const (
	GateSyntax Gate = iota
	GateWindow
	GateMarks
	GateColorGradient
	GateColorBound
	GateOpacity
	GateDone
)

func (gt Gate) String() string {
	switch gt {
	case GateSyntax:
		return "syntax"
	case GateWindow:
		return "window"
	case GateMarks:
		return "marks"
	case GateColorGradient:
		return "color_gradient"
	case GateColorBound:
		return "color_bound"
	case GateOpacity:
		return "opacity"
	case GateDone:
		return "done"
	}
	return fmt.Sprintf("Gate(%d)", int(gt))
}

// MarshalText emits the gate name.
func (gt Gate) MarshalText() ([]byte, error) { return []byte(gt.String()), nil }

// Status tags a Result.
type Status int

const (
	// Incomplete: a structural gate failed; Map holds the fields before it.
	Incomplete Status = iota
	// Complete: every gate passed.
	Complete
)

func (s Status) String() string {
	if s == Complete {
		return "complete"
	}
	return "incomplete"
}

// MarshalText emits "complete" or "incomplete".
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result is the outcome of a parse that did not hit a fatal error.
type Result struct {
	Map    Map    `json:"map"`
	Status Status `json:"status"`
	// FailedGate is the gate that stopped the cascade (GateDone when complete).
	FailedGate Gate `json:"failed_gate"`
	// Reason describes the structural failure; nil when complete.
	Reason *vegaskema.Issue `json:"reason,omitempty"`
}

// Valid reports whether every field was populated.
func (r Result) Valid() bool { return r.Status == Complete }
