package choropleth

import (
	"context"
	"errors"
	"io"

	vegaskema "github.com/reoring/vegaskema"
	g "github.com/reoring/vegaskema/dsl"
	"github.com/reoring/vegaskema/i18n"
)

// Parse decodes data and runs the gate cascade.
//
// A nil error means the input was well-formed JSON with no unrecognized
// gradient name; check Result.Valid to see whether every field was populated.
// Errors are vegaskema.Issues: parse_error (cause vegaskema.ErrSyntax),
// unsupported_value (cause *vegaskema.UnsupportedValueError), enforcement
// codes from ParseOpt limits, and incomplete when RequireComplete is set.
func Parse(ctx context.Context, data []byte, opts ...vegaskema.ParseOpt) (Result, error) {
	doc, err := vegaskema.DecodeBytes(ctx, data, opts...)
	if err != nil {
		return Result{FailedGate: GateSyntax}, err
	}
	return ParseDocument(ctx, doc, opts...)
}

// ParseReader is Parse over an io.Reader.
func ParseReader(ctx context.Context, r io.Reader, opts ...vegaskema.ParseOpt) (Result, error) {
	doc, err := vegaskema.DecodeReader(ctx, r, opts...)
	if err != nil {
		return Result{FailedGate: GateSyntax}, err
	}
	return ParseDocument(ctx, doc, opts...)
}

// ParseFrom is Parse over an arbitrary token Source.
func ParseFrom(ctx context.Context, src vegaskema.Source, opts ...vegaskema.ParseOpt) (Result, error) {
	doc, err := vegaskema.DecodeDocument(ctx, src, opts...)
	if err != nil {
		return Result{FailedGate: GateSyntax}, err
	}
	return ParseDocument(ctx, doc, opts...)
}

// ParseDocument runs gates 2-6 over an already decoded tree (for example one
// produced from YAML). Gates run in a fixed order and each populates its
// fields only after all of its checks pass.
func ParseDocument(ctx context.Context, doc any, opts ...vegaskema.ParseOpt) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{FailedGate: GateSyntax}, err
	}
	opt := vegaskema.MergeOpts(opts)
	var m Map
	root := g.At(doc)

	// window
	width, err := root.Field("width").NotNull().Int()
	if err != nil {
		return incomplete(m, GateWindow, err, opt)
	}
	height, err := root.Field("height").NotNull().Int()
	if err != nil {
		return incomplete(m, GateWindow, err, opt)
	}
	m.Window = WindowParams{Width: width, Height: height}

	// marks[0].encode.enter
	enter := root.Field("marks").MinItems(1).Index(0).Field("encode").Field("enter").Object()
	if !enter.OK() {
		return incomplete(m, GateMarks, enter.Err(), opt)
	}

	// color gradient
	style, err := g.OneOf(enter.Field("color_gradient").Field("value"), ColorStyles)
	if err != nil {
		if vegaskema.IsUnsupportedValue(err) {
			return Result{Map: m, FailedGate: GateColorGradient}, err
		}
		return incomplete(m, GateColorGradient, err, opt)
	}
	m.ColorStyle = style

	// color bound
	bound := enter.Field("color_bound").Field("value").Items(2)
	low, err := bound.Index(0).Float()
	if err != nil {
		return incomplete(m, GateColorBound, err, opt)
	}
	high, err := bound.Index(1).Float()
	if err != nil {
		return incomplete(m, GateColorBound, err, opt)
	}
	m.ColorBound = ColorBound{Low: low, High: high}

	// opacity
	opacity, err := enter.Field("opacity").Field("value").Float()
	if err != nil {
		return incomplete(m, GateOpacity, err, opt)
	}
	m.Opacity = opacity

	return Result{Map: m, Status: Complete, FailedGate: GateDone}, nil
}

// MustParse returns the Map of a complete spec and panics otherwise.
// Intended for tests and fixed, known-good specs.
func MustParse(data []byte) Map {
	res, err := Parse(context.Background(), data)
	if err != nil {
		panic("choropleth.MustParse: " + err.Error())
	}
	if !res.Valid() {
		panic("choropleth.MustParse: incomplete at " + res.FailedGate.String() + ": " + res.Reason.Path)
	}
	return res.Map
}

func incomplete(m Map, gate Gate, err error, opt vegaskema.ParseOpt) (Result, error) {
	res := Result{Map: m, Status: Incomplete, FailedGate: gate}
	var iss vegaskema.Issues
	if errors.As(err, &iss) && len(iss) > 0 {
		reason := iss[0]
		res.Reason = &reason
	} else {
		res.Reason = &vegaskema.Issue{Path: "/", Code: vegaskema.CodeParseError, Message: err.Error(), Cause: err, Offset: -1}
	}
	if !opt.RequireComplete {
		return res, nil
	}
	return res, vegaskema.Issues{{
		Path:    res.Reason.Path,
		Code:    vegaskema.CodeIncomplete,
		Message: i18n.T(vegaskema.CodeIncomplete, nil),
		Hint:    gate.String() + ": " + res.Reason.Message,
		Cause:   vegaskema.Issues{*res.Reason},
		Offset:  -1,
		Params:  map[string]any{"gate": gate.String(), "reason": res.Reason.Code},
	}}
}
