package vegaskema

import (
	"io"
	"sync"

	eng "github.com/reoring/vegaskema/internal/engine"
	gojsonsrc "github.com/reoring/vegaskema/source/gojson"
	jsonsrc "github.com/reoring/vegaskema/source/json"
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token = eng.Token

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	NumberMode() NumberMode
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The default
// implementation is based on goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json-backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = goJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver used by JSONBytes and JSONReader.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// DriverByName resolves "go-json" or "encoding/json"; ok is false otherwise.
func DriverByName(name string) (JSONDriver, bool) {
	switch name {
	case "", "go-json", "gojson":
		return goJSONDriver{}, true
	case "encoding/json", "stdlib":
		return StdlibJSONDriver(), true
	}
	return nil, false
}

// StdlibJSONDriver returns the encoding/json reference driver.
func StdlibJSONDriver() JSONDriver { return stdlibJSONDriver{} }

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewReader(r), numMode: NumberJSONNumber}
}
func (goJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewBytes(b), numMode: NumberJSONNumber}
}
func (goJSONDriver) Name() string { return "go-json" }

type stdlibJSONDriver struct{}

func (stdlibJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewReader(r), numMode: NumberJSONNumber}
}
func (stdlibJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewBytes(b), numMode: NumberJSONNumber}
}
func (stdlibJSONDriver) Name() string { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// WithNumberMode wraps a Source and overrides its NumberMode.
func WithNumberMode(s Source, m NumberMode) Source { return &overrideNumberMode{inner: s, mode: m} }

type overrideNumberMode struct {
	inner Source
	mode  NumberMode
}

func (o *overrideNumberMode) NextToken() (Token, error) { return o.inner.NextToken() }
func (o *overrideNumberMode) NumberMode() NumberMode    { return o.mode }
func (o *overrideNumberMode) Location() int64           { return o.inner.Location() }

// EnforceSource wraps a Source with runtime enforcement (duplicate keys, depth, bytes).
// sink, when non-nil, receives non-fatal issues such as duplicate key warnings.
func EnforceSource(s Source, opt ParseOpt, sink func(Issue)) Source {
	var forward func(eng.SimpleIssue)
	if sink != nil {
		forward = func(si eng.SimpleIssue) {
			sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: s.Location()})
		}
	}
	enforced := eng.WrapWithEnforcement(engineTokenSource(s), eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   forward,
		FailFast:    opt.FailFast,
	})
	return &engineSourceAdapter{inner: enforced, numMode: s.NumberMode()}
}

// enforcementDisabled reports whether EnforceSource would be a no-op.
func enforcementDisabled(opt ParseOpt) bool {
	return opt.Strictness.OnDuplicateKey == Ignore && opt.MaxDepth == 0 && opt.MaxBytes == 0
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

type engineSourceAdapter struct {
	inner   eng.TokenSource
	numMode NumberMode
}

func (s *engineSourceAdapter) NextToken() (Token, error) { return s.inner.NextToken() }
func (s *engineSourceAdapter) NumberMode() NumberMode    { return s.numMode }
func (s *engineSourceAdapter) Location() int64           { return s.inner.Location() }

// engineTokenSource unwraps engine-backed sources to skip an adapter hop.
func engineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return s
}
