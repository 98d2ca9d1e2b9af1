// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"slices"
)

// Property names a Field inside an Object.
type Property struct {
	Name     string
	Field    Field
	Optional bool
}

// Prop returns a required Property.
func Prop(name string, f Field) Property {
	return Property{Name: name, Field: f}
}

// Object is an ordered, immutable set of properties. All properties
// are required unless marked optional.
type Object struct {
	props []Property
}

// NewObject returns an Object with the given properties. A later
// property replaces an earlier one with the same name.
func NewObject(props ...Property) Object {
	return Object{}.Extend(props...)
}

// Keys returns the property names in declaration order.
func (o Object) Keys() []string {
	keys := make([]string, len(o.props))
	for i, p := range o.props {
		keys[i] = p.Name
	}
	return keys
}

// Property looks up a property by name.
func (o Object) Property(name string) (Property, bool) {
	i := o.index(name)
	if i < 0 {
		return Property{}, false
	}
	return o.props[i], true
}

func (o Object) index(name string) int {
	return slices.IndexFunc(o.props, func(p Property) bool {
		return p.Name == name
	})
}

func (o Object) filter(keep func(Property) bool) Object {
	props := make([]Property, 0, len(o.props))
	for _, p := range o.props {
		if keep(p) {
			props = append(props, p)
		}
	}
	return Object{props: props}
}

func (o Object) mapProps(f func(Property) Property) Object {
	props := make([]Property, len(o.props))
	for i, p := range o.props {
		props[i] = f(p)
	}
	return Object{props: props}
}

// Pick returns an Object with only the named properties.
// Unknown names are ignored.
func (o Object) Pick(names ...string) Object {
	return o.filter(func(p Property) bool {
		return slices.Contains(names, p.Name)
	})
}

// Omit returns an Object without the named properties.
func (o Object) Omit(names ...string) Object {
	return o.filter(func(p Property) bool {
		return !slices.Contains(names, p.Name)
	})
}

// Partial marks the named properties optional, or every property
// when no names are given.
func (o Object) Partial(names ...string) Object {
	return o.mapProps(func(p Property) Property {
		if len(names) == 0 || slices.Contains(names, p.Name) {
			p.Optional = true
		}
		return p
	})
}

// Required marks the named properties required, or every property
// when no names are given.
func (o Object) Required(names ...string) Object {
	return o.mapProps(func(p Property) Property {
		if len(names) == 0 || slices.Contains(names, p.Name) {
			p.Optional = false
		}
		return p
	})
}

// Extend returns an Object with the given properties added. A property
// with an existing name replaces the existing one in place.
func (o Object) Extend(props ...Property) Object {
	out := Object{props: slices.Clone(o.props)}
	for _, p := range props {
		i := out.index(p.Name)
		if i < 0 {
			out.props = append(out.props, p)
			continue
		}
		out.props[i] = p
	}
	return out
}

// Parse validates every property of in and returns the normalized
// values. Keys not described by the Object are dropped. A missing,
// or nil, value for a required property is reported with CodeRequired.
// Either the full record or a non-empty Issues is returned, never both.
func (o Object) Parse(in map[string]any) (map[string]any, Issues) {
	out := make(map[string]any, len(o.props))
	var iss Issues
	for _, p := range o.props {
		v, ok := in[p.Name]
		if !ok || v == nil {
			if p.Optional {
				continue
			}
			iss = append(iss, Issue{
				Path:    p.Name,
				Code:    CodeRequired,
				Message: "required",
			})
			continue
		}

		nv, fieldIss := p.Field.ParseValue(v)
		if len(fieldIss) > 0 {
			iss = append(iss, withPath(p.Name, fieldIss)...)
			continue
		}
		out[p.Name] = nv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// ParseValue implements the Field interface so objects can be nested.
func (o Object) ParseValue(v any) (any, Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{invalidType("object", v)}
	}
	out, iss := o.Parse(m)
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}
