//go:build stdlib

package compare_test

import vegaskema "github.com/reoring/vegaskema"

func init() { vegaskema.SetJSONDriver(vegaskema.StdlibJSONDriver()) }
