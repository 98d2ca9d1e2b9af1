// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// StringField is a Field for string values. Every method returns a
// new StringField and leaves the receiver untouched.
type StringField struct {
	tags  []string
	trim  bool
	lower bool
	uuid  bool
}

// String returns a StringField with no constraints.
func String() StringField {
	return StringField{}
}

func (f StringField) with(tag string) StringField {
	f.tags = append(slices.Clip(f.tags), tag)
	return f
}

// Min requires at least n characters. Characters are counted as runes.
func (f StringField) Min(n int) StringField {
	return f.with("min=" + strconv.Itoa(n))
}

// Max allows at most n characters. Characters are counted as runes.
func (f StringField) Max(n int) StringField {
	return f.with("max=" + strconv.Itoa(n))
}

// Email requires an email shaped value.
func (f StringField) Email() StringField {
	return f.with("email")
}

// UUID requires a hyphenated RFC 4122 UUID of the given version.
// Valid values are normalized to lower case.
func (f StringField) UUID(version int) StringField {
	f = f.with(uuidVersionTag + "=" + strconv.Itoa(version))
	f.uuid = true
	return f
}

// ISODate requires a YYYY-MM-DD date string.
func (f StringField) ISODate() StringField {
	return f.with("datetime=" + time.DateOnly)
}

// ISODateTime requires an RFC 3339 date time string.
func (f StringField) ISODateTime() StringField {
	return f.with("datetime=" + time.RFC3339)
}

// OneOf requires the value to equal one of the given options.
func (f StringField) OneOf(options ...string) StringField {
	quoted := make([]string, len(options))
	for i, o := range options {
		if strings.ContainsAny(o, " \t") {
			o = "'" + o + "'"
		}
		quoted[i] = o
	}
	return f.with("oneof=" + strings.Join(quoted, " "))
}

// Literal requires the value to equal v exactly.
func (f StringField) Literal(v string) StringField {
	return f.OneOf(v)
}

// Trim removes leading and trailing white space before any check runs.
func (f StringField) Trim() StringField {
	f.trim = true
	return f
}

// ToLower lower cases the value before any check runs.
func (f StringField) ToLower() StringField {
	f.lower = true
	return f
}

// ParseValue implements the Field interface.
func (f StringField) ParseValue(v any) (any, Issues) {
	s, ok := v.(string)
	if !ok {
		return nil, Issues{invalidType("string", v)}
	}
	if !utf8.ValidString(s) {
		return nil, Issues{{
			Code:    CodeInvalidFormat,
			Message: "invalid utf-8",
		}}
	}
	if f.trim {
		s = strings.TrimSpace(s)
	}
	if f.lower {
		s = strings.ToLower(s)
	}
	if len(f.tags) > 0 {
		iss := validateVar(s, strings.Join(f.tags, ","))
		if len(iss) > 0 {
			return nil, iss
		}
	}
	if f.uuid {
		s = strings.ToLower(s)
	}
	return s, nil
}
