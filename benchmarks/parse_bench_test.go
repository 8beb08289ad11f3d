package benchmarks_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"testing"

	vegaskema "github.com/reoring/vegaskema"
	"github.com/reoring/vegaskema/choropleth"
)

func smallSpec() []byte {
	return []byte(`{"width":800,"height":600,"marks":[{"encode":{"enter":{"color_gradient":{"value":"blue_to_red"},"color_bound":{"value":[0,100]},"opacity":{"value":0.8}}}}]}`)
}

// hugeSpec returns a complete spec followed by numMarks extra marks, each
// carrying a "regions" array of extra numbers. Only marks[0] is read, but the
// whole document is decoded.
func hugeSpec(numMarks, extra int) []byte {
	var buf bytes.Buffer
	buf.Grow(numMarks * (64 + extra*8))
	buf.WriteString(`{"width":800,"height":600,"marks":[{"encode":{"enter":{"color_gradient":{"value":"white_blue"},"color_bound":{"value":[0,1]},"opacity":{"value":1}}}}`)
	for i := 0; i < numMarks; i++ {
		buf.WriteString(`,{"type":"shape","name":"m`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(`","regions":[`)
		for j := 0; j < extra; j++ {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(i*extra + j))
		}
		buf.WriteString(`]}`)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

func benchParse(b *testing.B, d vegaskema.JSONDriver, mode vegaskema.NumberMode, data []byte) {
	ctx := context.Background()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := vegaskema.WithNumberMode(d.NewBytes(data), mode)
		res, err := choropleth.ParseFrom(ctx, src)
		if err != nil {
			b.Fatal(err)
		}
		if !res.Valid() {
			b.Fatalf("incomplete at %s", res.FailedGate)
		}
	}
}

func Benchmark_Parse_Small_GoJSON(b *testing.B) {
	benchParse(b, mustDriver(b, "go-json"), vegaskema.NumberJSONNumber, smallSpec())
}

func Benchmark_Parse_Small_Stdlib(b *testing.B) {
	benchParse(b, mustDriver(b, "encoding/json"), vegaskema.NumberJSONNumber, smallSpec())
}

func Benchmark_Parse_Small_Float64(b *testing.B) {
	benchParse(b, mustDriver(b, "go-json"), vegaskema.NumberFloat64, smallSpec())
}

func Benchmark_Parse_Huge_GoJSON(b *testing.B) {
	benchParse(b, mustDriver(b, "go-json"), vegaskema.NumberJSONNumber, hugeSpec(2000, 16))
}

func Benchmark_Parse_Huge_Stdlib(b *testing.B) {
	benchParse(b, mustDriver(b, "encoding/json"), vegaskema.NumberJSONNumber, hugeSpec(2000, 16))
}

// Baseline: plain encoding/json into a generic tree, no gates.
func Benchmark_Baseline_Unmarshal_Huge(b *testing.B) {
	data := hugeSpec(2000, 16)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func mustDriver(tb testing.TB, name string) vegaskema.JSONDriver {
	tb.Helper()
	d, ok := vegaskema.DriverByName(name)
	if !ok {
		tb.Fatalf("driver %q not available", name)
	}
	return d
}

func TestHugeSpecIsComplete(t *testing.T) {
	res, err := choropleth.Parse(context.Background(), hugeSpec(10, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid() || res.Map.ColorStyle != choropleth.WhiteToBlue {
		t.Fatalf("unexpected result: %+v", res)
	}
}
