package prism

import (
	"fmt"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueScalar
	ValueVec2
	ValueVec3
	ValueVec4
	ValueString
	ValueTexture
)

var valueKindNames = [...]string{
	ValueNone:    "none",
	ValueScalar:  "scalar",
	ValueVec2:    "vec2",
	ValueVec3:    "vec3",
	ValueVec4:    "vec4",
	ValueString:  "string",
	ValueTexture: "texture",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", k)
}

// components returns the number of floats a numeric kind carries.
func (k ValueKind) components() int {
	switch k {
	case ValueScalar:
		return 1
	case ValueVec2:
		return 2
	case ValueVec3:
		return 3
	case ValueVec4:
		return 4
	}
	return 0
}

// vectorKind returns the numeric kind with n components.
func vectorKind(n int) ValueKind {
	switch n {
	case 1:
		return ValueScalar
	case 2:
		return ValueVec2
	case 3:
		return ValueVec3
	case 4:
		return ValueVec4
	}
	return ValueNone
}

// Value is the output of a node for the current frame.
type Value struct {
	Kind    ValueKind
	Vec     [4]float32
	Str     string
	Texture Texture
}

// ScalarValue returns a scalar Value.
func ScalarValue(f float32) Value {
	return Value{Kind: ValueScalar, Vec: [4]float32{f}}
}

// VectorValue returns a numeric Value with len(v) components (1 to 4).
func VectorValue(v ...float32) Value {
	out := Value{Kind: vectorKind(len(v))}
	copy(out.Vec[:], v)
	return out
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

// TextureValue returns a texture Value.
func TextureValue(t Texture) Value {
	return Value{Kind: ValueTexture, Texture: t}
}

// String formats the value the way a text node displays it.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueScalar:
		return strconv.FormatFloat(float64(v.Vec[0]), 'f', 1, 32)
	case ValueVec2, ValueVec3, ValueVec4:
		s := "("
		for i := 0; i < v.Kind.components(); i++ {
			if i > 0 {
				s += ", "
			}
			s += strconv.FormatFloat(float64(v.Vec[i]), 'f', 2, 32)
		}
		return s + ")"
	case ValueTexture:
		return "<texture>"
	}
	return ""
}

// ParamType lists the Go types a Parameter can carry.
type ParamType interface {
	string | float32 | [2]float32 | [4]float32
}

// Parameter is a configured value that is either a literal or a link to
// another node's output.
type Parameter[T ParamType] struct {
	value T
	link  string
}

// Static returns a literal Parameter.
func Static[T ParamType](v T) Parameter[T] {
	return Parameter[T]{value: v}
}

// Link returns a Parameter bound to the output of the named node.
func Link[T ParamType](node string) Parameter[T] {
	return Parameter[T]{link: node}
}

// IsLink reports whether p refers to another node.
func (p Parameter[T]) IsLink() bool { return p.link != "" }

// Target returns the linked node name, or "" for a literal.
func (p Parameter[T]) Target() string { return p.link }

// Value returns the literal. It is the zero value for links.
func (p Parameter[T]) Value() T { return p.value }

func (p Parameter[T]) String() string {
	if p.IsLink() {
		return "node." + p.link
	}
	return fmt.Sprint(p.value)
}

// ValueSource yields node outputs by node index, evaluating the node for the
// current frame if it has not been evaluated yet.
type ValueSource interface {
	NodeValue(node int) Value
}

// Binding is a Parameter bound against a node set: either a literal or the
// index of the node whose output is converted to T on every read.
type Binding[T ParamType] struct {
	value T
	node  int
}

// StaticBinding returns a Binding that always resolves to v.
func StaticBinding[T ParamType](v T) Binding[T] {
	return Binding[T]{value: v, node: -1}
}

// LinkBinding returns a Binding that resolves to the output of node.
func LinkBinding[T ParamType](node int) Binding[T] {
	return Binding[T]{node: node}
}

// IsLink reports whether b reads another node's output.
func (b Binding[T]) IsLink() bool { return b.node >= 0 }

// Node returns the linked node index, or -1 for a literal.
func (b Binding[T]) Node() int { return b.node }

// Resolve returns the literal, or the linked node's live output converted
// to T. src is not consulted for literals and may be nil.
func (b Binding[T]) Resolve(src ValueSource) T {
	if b.node < 0 {
		return b.value
	}
	return convertValue[T](src.NodeValue(b.node))
}

// accepts reports whether a node output of kind k can be converted to T.
func accepts[T ParamType](k ValueKind) bool {
	var zero T
	switch any(zero).(type) {
	case string:
		return k != ValueNone && k != ValueTexture
	case float32:
		return k == ValueScalar
	case [2]float32:
		return k == ValueVec2
	case [4]float32:
		return k == ValueVec4
	}
	return false
}

// convertValue converts v to T. v must satisfy accepts[T](v.Kind).
func convertValue[T ParamType](v Value) T {
	var out T
	switch p := any(&out).(type) {
	case *string:
		*p = v.String()
	case *float32:
		*p = v.Vec[0]
	case *[2]float32:
		*p = [2]float32{v.Vec[0], v.Vec[1]}
	case *[4]float32:
		*p = v.Vec
	}
	return out
}

// typeName names T in error messages.
func typeName[T ParamType]() string {
	var zero T
	switch any(zero).(type) {
	case string:
		return "string"
	case float32:
		return "number"
	case [2]float32:
		return "vec2"
	case [4]float32:
		return "vec4"
	}
	return "unknown"
}
