package types

import (
	"strconv"
	"strings"
)

// Built-in type names.
const (
	Number  = "number"
	Integer = "integer"
	String  = "string"
	Boolean = "boolean"
)

// RegisterDefaults registers the built-in value types.
func RegisterDefaults(r *Registry) error {
	if _, err := Register(r, Number, `number(?<plural>s)?`, ParseNumber); err != nil {
		return err
	}
	if _, err := Register(r, Integer, `integer(?<plural>s)?`, ParseInteger); err != nil {
		return err
	}
	if _, err := Register(r, String, `(?:string|text)(?<plural>s)?`, ParseString); err != nil {
		return err
	}
	if _, err := Register(r, Boolean, `boolean(?<plural>s)?`, ParseBoolean); err != nil {
		return err
	}
	return nil
}

// ParseNumber accepts decimal literals such as "2", "-0.5" or "1e3".
func ParseNumber(text string) (float64, bool) {
	if text == "" || strings.Trim(text, "0123456789+-.eE") != "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func ParseInteger(text string) (int64, bool) {
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ParseString accepts a double-quoted literal; a doubled quote inside the
// literal stands for one quote character.
func ParseString(text string) (string, bool) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	body := text[1 : len(text)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' {
			if i+1 >= len(body) || body[i+1] != '"' {
				return "", false
			}
			i++
		}
		sb.WriteByte(c)
	}
	return sb.String(), true
}

func ParseBoolean(text string) (bool, bool) {
	switch strings.ToLower(text) {
	case "true", "yes", "on":
		return true, true
	case "false", "no", "off":
		return false, true
	}
	return false, false
}
