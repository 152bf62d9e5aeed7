// Package assert panics on states that validation upstream already rules out.
package assert

// NotNil panics when value is a nil interface.
func NotNil(value any) {
	if value == nil {
		panic("assert: expected value to be not nil")
	}
}

// NotEmptyStr panics on an empty string, used for slugs after validation.
func NotEmptyStr(str string) {
	if str == "" {
		panic("assert: expected string to be non-empty")
	}
}
