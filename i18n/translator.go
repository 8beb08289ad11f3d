package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "value"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":      "invalid type, expected {expected}",
		"required":          "required property missing",
		"duplicate_key":     "duplicate key",
		"too_small":         "too few items, expected at least {min}",
		"too_big":           "too many items, expected at most {max}",
		"too_small.number":  "number too small, expected at least {min}",
		"too_big.number":    "number too large, expected at most {max}",
		"parse_error":       "json format error",
		"truncated":         "truncated",
		"unsupported_value": "unsupported {field} '{value}'.",
		"incomplete":        "specification is incomplete",
	},
	"ja": {
		"invalid_type":      "型が不正です（期待: {expected}）",
		"required":          "必須プロパティが不足しています",
		"duplicate_key":     "キーが重複しています",
		"too_small":         "要素数が不足しています（最小: {min}）",
		"too_big":           "要素数が多すぎます（最大: {max}）",
		"too_small.number":  "数値が小さすぎます（最小: {min}）",
		"too_big.number":    "数値が大きすぎます（最大: {max}）",
		"parse_error":       "JSON の形式が不正です",
		"truncated":         "打ち切られました",
		"unsupported_value": "サポートされていない{field}です: '{value}'",
		"incomplete":        "仕様が不完全です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return interpolate(msg, data)
}

// interpolate replaces {key} placeholders; unknown placeholders are dropped
// together with a leading ", " or space-wrapped parenthetical when empty.
func interpolate(msg string, data map[string]string) string {
	if !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	out := strings.NewReplacer(pairs...).Replace(msg)
	if i := strings.Index(out, ", expected "); i >= 0 && strings.Contains(out[i:], "{") {
		out = out[:i]
	}
	if i := strings.Index(out, "（"); i >= 0 && strings.Contains(out[i:], "{") {
		out = out[:i]
	}
	return out
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
