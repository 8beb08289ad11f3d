package choropleth_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/choropleth"
	"github.com/reoring/vegaskema/internal/csvtable"
)

const example = `{"width":800,"height":600,"marks":[{"encode":{"enter":{"color_gradient":{"value":"blue_to_red"},"color_bound":{"value":[0,100]},"opacity":{"value":0.8}}}}]}`

func TestParse_Example(t *testing.T) {
	res, err := choropleth.Parse(context.Background(), []byte(example))
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, choropleth.GateDone, res.FailedGate)
	assert.Nil(t, res.Reason)
	assert.Equal(t, choropleth.Map{
		Window:     choropleth.WindowParams{Width: 800, Height: 600},
		ColorStyle: choropleth.BlueToRed,
		ColorBound: choropleth.ColorBound{Low: 0, High: 100},
		Opacity:    0.8,
	}, res.Map)
}

func TestParse_AllGradientNames(t *testing.T) {
	rows, err := csvtable.ProjectFile("testdata/gradients.csv", "name", "style")
	require.NoError(t, err)
	require.Len(t, rows, 9)

	for _, row := range rows {
		name, style := row[0], row[1]
		t.Run(name, func(t *testing.T) {
			spec := strings.Replace(example, `"blue_to_red"`, strconv.Quote(name), 1)
			res, err := choropleth.Parse(context.Background(), []byte(spec))
			require.NoError(t, err)
			require.True(t, res.Valid())
			assert.Equal(t, name, res.Map.ColorStyle.String())
			assert.Equal(t, style, goName(res.Map.ColorStyle))
		})
	}
}

var goNames = map[choropleth.ColorStyle]string{
	choropleth.BlueToRed:        "BlueToRed",
	choropleth.SkyBlueToWhite:   "SkyBlueToWhite",
	choropleth.PurpleToYellow:   "PurpleToYellow",
	choropleth.RedTransparency:  "RedTransparency",
	choropleth.BlueTransparency: "BlueTransparency",
	choropleth.BlueGreenYellow:  "BlueGreenYellow",
	choropleth.WhiteToBlue:      "WhiteToBlue",
	choropleth.BlueWhiteRed:     "BlueWhiteRed",
	choropleth.GreenYellowRed:   "GreenYellowRed",
}

func goName(c choropleth.ColorStyle) string { return goNames[c] }

func TestParse_UnsupportedGradient(t *testing.T) {
	spec := strings.Replace(example, `"blue_to_red"`, `"rainbow"`, 1)
	res, err := choropleth.Parse(context.Background(), []byte(spec))
	require.Error(t, err)
	assert.False(t, res.Valid())
	assert.Equal(t, choropleth.GateColorGradient, res.FailedGate)
	assert.Contains(t, err.Error(), "rainbow")

	var uv *vegaskema.UnsupportedValueError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "rainbow", uv.Value)
	assert.Equal(t, "unsupported color gradient 'rainbow'.", uv.Error())

	iss, ok := vegaskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, vegaskema.CodeUnsupportedValue, iss[0].Code)
	assert.Equal(t, "/marks/0/encode/enter/color_gradient/value", iss[0].Path)
}

func TestParse_GradientIsCaseSensitive(t *testing.T) {
	for _, name := range []string{"Blue_To_Red", " blue_to_red", "blue_to_red ", ""} {
		spec := strings.Replace(example, `"blue_to_red"`, strconv.Quote(name), 1)
		_, err := choropleth.Parse(context.Background(), []byte(spec))
		assert.True(t, vegaskema.IsUnsupportedValue(err), "name %q", name)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	inputs := []string{
		``,
		`   `,
		`{`,
		`{"width":800,}`,
		`{"width":800 "height":600}`,
		`not json`,
		`{"width":800}{"width":1}`,
		`{"width":800} trailing`,
		`[1,2`,
		`{"width":0800,"height":600}`,
		`{"width":-0800,"height":600}`,
		`{"width":1.,"height":600}`,
		"{\"width\":800,\"title\":\"a\x01\"}",
	}
	for _, in := range inputs {
		res, err := choropleth.Parse(context.Background(), []byte(in))
		require.Error(t, err, "input %q", in)
		assert.True(t, vegaskema.IsSyntax(err), "input %q: %v", in, err)
		assert.False(t, res.Valid())
		assert.Equal(t, choropleth.GateSyntax, res.FailedGate)
		assert.Equal(t, choropleth.Map{}, res.Map)

		iss, ok := vegaskema.AsIssues(err)
		require.True(t, ok)
		assert.Equal(t, vegaskema.CodeParseError, iss[0].Code)
		assert.Equal(t, "json format error", iss[0].Message)
	}
}

func TestParse_SyntaxErrorWithStdlibDriver(t *testing.T) {
	vegaskema.SetJSONDriver(vegaskema.StdlibJSONDriver())
	defer vegaskema.UseDefaultJSONDriver()

	_, err := choropleth.Parse(context.Background(), []byte(`{"width":}`))
	assert.True(t, vegaskema.IsSyntax(err))

	res, err := choropleth.Parse(context.Background(), []byte(example))
	require.NoError(t, err)
	assert.True(t, res.Valid())
}

func TestParse_StructuralFixtures(t *testing.T) {
	rows, err := csvtable.ProjectFile("testdata/structural.csv", "case", "remove", "gate", "code", "path")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for _, row := range rows {
		name, remove, gate, code, path := row[0], row[1], row[2], row[3], row[4]
		t.Run(name, func(t *testing.T) {
			spec := withoutPath(t, remove)
			res, err := choropleth.Parse(context.Background(), spec)
			require.NoError(t, err)
			assert.False(t, res.Valid())
			assert.Equal(t, choropleth.Incomplete, res.Status)
			assert.Equal(t, gate, res.FailedGate.String())
			require.NotNil(t, res.Reason)
			assert.Equal(t, code, res.Reason.Code)
			assert.Equal(t, path, res.Reason.Path)
			assertPopulatedBefore(t, res.Map, res.FailedGate)

			again, err := choropleth.Parse(context.Background(), spec)
			require.NoError(t, err)
			assert.Equal(t, res, again)
		})
	}
}

func TestParse_StructuralMutations(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		gate choropleth.Gate
		code string
	}{
		{"null width", `"width":800`, `"width":null`, choropleth.GateWindow, vegaskema.CodeRequired},
		{"string height", `"height":600`, `"height":"600"`, choropleth.GateWindow, vegaskema.CodeInvalidType},
		{"empty marks", `"marks":[{"encode":{"enter":{"color_gradient":{"value":"blue_to_red"},"color_bound":{"value":[0,100]},"opacity":{"value":0.8}}}}]`, `"marks":[]`, choropleth.GateMarks, vegaskema.CodeTooSmall},
		{"enter number", `"enter":{"color_gradient":{"value":"blue_to_red"},"color_bound":{"value":[0,100]},"opacity":{"value":0.8}}`, `"enter":5`, choropleth.GateMarks, vegaskema.CodeInvalidType},
		{"enter null", `"enter":{"color_gradient":{"value":"blue_to_red"},"color_bound":{"value":[0,100]},"opacity":{"value":0.8}}`, `"enter":null`, choropleth.GateMarks, vegaskema.CodeInvalidType},
		{"marks object", `"marks":[`, `"marks":{"x":[`, choropleth.GateMarks, vegaskema.CodeInvalidType},
		{"gradient number", `{"value":"blue_to_red"}`, `{"value":7}`, choropleth.GateColorGradient, vegaskema.CodeInvalidType},
		{"gradient null", `{"value":"blue_to_red"}`, `{"value":null}`, choropleth.GateColorGradient, vegaskema.CodeInvalidType},
		{"bound one element", `[0,100]`, `[0]`, choropleth.GateColorBound, vegaskema.CodeTooSmall},
		{"bound three elements", `[0,100]`, `[0,100,200]`, choropleth.GateColorBound, vegaskema.CodeTooBig},
		{"bound string element", `[0,100]`, `[0,"100"]`, choropleth.GateColorBound, vegaskema.CodeInvalidType},
		{"bound not array", `[0,100]`, `100`, choropleth.GateColorBound, vegaskema.CodeInvalidType},
		{"opacity string", `{"value":0.8}`, `{"value":"0.8"}`, choropleth.GateOpacity, vegaskema.CodeInvalidType},
		{"opacity bool", `{"value":0.8}`, `{"value":true}`, choropleth.GateOpacity, vegaskema.CodeInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := strings.Replace(example, tc.from, tc.to, 1)
			if tc.name == "marks object" {
				spec = strings.Replace(spec, `}}}}]}`, `}}}}]}}`, 1)
			}
			require.NotEqual(t, example, spec)
			res, err := choropleth.Parse(context.Background(), []byte(spec))
			require.NoError(t, err)
			assert.Equal(t, tc.gate, res.FailedGate)
			require.NotNil(t, res.Reason)
			assert.Equal(t, tc.code, res.Reason.Code)
			assertPopulatedBefore(t, res.Map, res.FailedGate)
		})
	}
}

func TestParse_ColorBoundKeepsOrder(t *testing.T) {
	spec := strings.Replace(example, `[0,100]`, `[3.0,1.0]`, 1)
	res, err := choropleth.Parse(context.Background(), []byte(spec))
	require.NoError(t, err)
	assert.Equal(t, choropleth.ColorBound{Low: 3, High: 1}, res.Map.ColorBound)
}

func TestParse_OpacityNotRangeChecked(t *testing.T) {
	spec := strings.Replace(example, `{"value":0.8}`, `{"value":-2.5}`, 1)
	res, err := choropleth.Parse(context.Background(), []byte(spec))
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, -2.5, res.Map.Opacity)
}

func TestParse_WindowTruncatesToInteger(t *testing.T) {
	spec := strings.Replace(example, `"width":800`, `"width":800.9`, 1)
	res, err := choropleth.Parse(context.Background(), []byte(spec))
	require.NoError(t, err)
	assert.Equal(t, 800, res.Map.Window.Width)
}

func TestParse_WindowNeedsBothDimensions(t *testing.T) {
	spec := strings.Replace(example, `"height":600`, `"height":null`, 1)
	res, err := choropleth.Parse(context.Background(), []byte(spec))
	require.NoError(t, err)
	assert.Equal(t, choropleth.WindowParams{}, res.Map.Window, "width must not be populated alone")
}

func TestParse_OnlyFirstMarkIsRead(t *testing.T) {
	spec := strings.Replace(example, `}}}}]}`, `}}}},{"encode":"ignored"}]}`, 1)
	res, err := choropleth.Parse(context.Background(), []byte(spec))
	require.NoError(t, err)
	assert.True(t, res.Valid())
}

func TestParse_RequireComplete(t *testing.T) {
	spec := withoutPath(t, "marks.0.encode.enter.opacity")
	res, err := choropleth.Parse(context.Background(), spec, vegaskema.ParseOpt{RequireComplete: true})
	require.Error(t, err)
	iss, ok := vegaskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, vegaskema.CodeIncomplete, iss[0].Code)
	assert.Equal(t, "/marks/0/encode/enter/opacity", iss[0].Path)
	assert.Equal(t, "opacity", iss[0].Params["gate"])
	assert.Equal(t, choropleth.GateOpacity, res.FailedGate)
	assert.Equal(t, choropleth.BlueToRed, res.Map.ColorStyle, "partial map is still returned")

	_, err = choropleth.Parse(context.Background(), []byte(example), vegaskema.ParseOpt{RequireComplete: true})
	assert.NoError(t, err)
}

func TestParse_EnforcementLimits(t *testing.T) {
	ctx := context.Background()

	_, err := choropleth.Parse(ctx, []byte(example), vegaskema.ParseOpt{MaxBytes: 16})
	iss, ok := vegaskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, vegaskema.CodeTruncated, iss[0].Code)

	_, err = choropleth.Parse(ctx, []byte(example), vegaskema.ParseOpt{MaxDepth: 3})
	iss, ok = vegaskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, vegaskema.CodeParseError, iss[0].Code)
	assert.False(t, vegaskema.IsSyntax(err))

	dup := strings.Replace(example, `"width":800`, `"width":800,"width":801`, 1)
	_, err = choropleth.Parse(ctx, []byte(dup), vegaskema.ParseOpt{Strictness: vegaskema.Strictness{OnDuplicateKey: vegaskema.Error}})
	iss, ok = vegaskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, vegaskema.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/width", iss[0].Path)

	res, err := choropleth.Parse(ctx, []byte(dup))
	require.NoError(t, err, "duplicates are ignored by default")
	assert.Equal(t, 801, res.Map.Window.Width)
}

func TestParseReader_AndParseFrom(t *testing.T) {
	ctx := context.Background()
	res, err := choropleth.ParseReader(ctx, strings.NewReader(example))
	require.NoError(t, err)
	assert.True(t, res.Valid())

	src := vegaskema.WithNumberMode(vegaskema.JSONBytes([]byte(example)), vegaskema.NumberFloat64)
	res2, err := choropleth.ParseFrom(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, res.Map, res2.Map)
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := choropleth.Parse(ctx, []byte(example))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, 600, choropleth.MustParse([]byte(example)).Window.Height)
	assert.Panics(t, func() { choropleth.MustParse(withoutPath(t, "marks")) })
	assert.Panics(t, func() { choropleth.MustParse([]byte(`{`)) })
}

// withoutPath returns the example spec with the dotted path removed.
func withoutPath(t *testing.T, dotted string) []byte {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(example), &doc))
	segs := strings.Split(dotted, ".")
	cur := doc
	for _, s := range segs[:len(segs)-1] {
		switch c := cur.(type) {
		case map[string]any:
			cur = c[s]
		case []any:
			i, err := strconv.Atoi(s)
			require.NoError(t, err)
			cur = c[i]
		}
	}
	m, ok := cur.(map[string]any)
	require.True(t, ok, "parent of %s must be an object", dotted)
	delete(m, segs[len(segs)-1])
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

// assertPopulatedBefore checks that gates before failed are filled and the
// rest are zero.
func assertPopulatedBefore(t *testing.T, m choropleth.Map, failed choropleth.Gate) {
	t.Helper()
	assert.Equal(t, failed > choropleth.GateWindow, m.Window != choropleth.WindowParams{}, "window")
	assert.Equal(t, failed > choropleth.GateColorGradient, m.ColorStyle != choropleth.ColorStyleUnset, "color style")
	assert.Equal(t, failed > choropleth.GateColorBound, m.ColorBound != choropleth.ColorBound{}, "color bound")
	assert.Equal(t, failed > choropleth.GateOpacity, m.Opacity != 0, "opacity")
}
