package engine

// KeyState tracks object/array nesting for tokenizers whose decoders emit
// object keys and string values with the same Go type. It decides whether a
// string token is a key.
type KeyState struct {
	stack []keyFrame
}

type keyFrame struct {
	object       bool
	expectingKey bool
}

// Open records a '{' (object=true) or '['.
func (k *KeyState) Open(object bool) {
	k.stack = append(k.stack, keyFrame{object: object, expectingKey: object})
}

// Close records a '}' or ']' and completes the value it belonged to.
func (k *KeyState) Close() {
	if n := len(k.stack); n > 0 {
		k.stack = k.stack[:n-1]
	}
	k.Value()
}

// String classifies a string token as a key or a value.
func (k *KeyState) String() Kind {
	if n := len(k.stack); n > 0 {
		top := &k.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return KindKey
		}
	}
	k.Value()
	return KindString
}

// Value records a completed scalar (or container) value.
func (k *KeyState) Value() {
	if n := len(k.stack); n > 0 {
		top := &k.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
