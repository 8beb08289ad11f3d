// Package vegaskema provides:
//
// - A stable error model via Issues (JSON Pointer, code, message, cause)
// - Pluggable JSON tokenizer drivers (go-json by default, encoding/json as reference)
// - Runtime enforcement for untrusted input (duplicate keys, depth, size)
// - DecodeDocument, which turns a Source into a generic JSON tree
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place the gate DSL under dsl/, the choropleth parser under choropleth/, and the CLI under cmd/vegaskema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	res, err := choropleth.Parse(ctx, data)
//	if err != nil {
//	    // syntax error or unsupported color gradient
//	}
//	if !res.Valid() {
//	    // res.FailedGate and res.Reason tell which field stopped the parse
//	}
package vegaskema
