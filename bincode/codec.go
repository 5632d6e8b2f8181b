package bincode

import (
	"fmt"

	"github.com/wippyai/buffi/registry"
)

// Variant is the decoded form of a tagged union value
type Variant struct {
	Index  uint32
	Values []any
}

// Some marks a present option value; an absent option is a nil any
type Some struct {
	Value any
}

// Codec encodes and decodes values against registered type terms. It is
// the Go twin of the generated C++ serialization and exists so the wire
// properties can be verified without a C++ toolchain; Go hosts that
// implement entry points use it to produce result buffers.
//
// Value conventions: primitives map to their Go scalar, strings to
// string, byte strings to []byte, sequences/sets/tuples/fixed arrays to
// []any, maps to ordered [][2]any pairs, options to nil or Some, user
// structs to []any in field order, and unions to Variant.
type Codec struct {
	reg *registry.Registry
}

// NewCodec creates a codec over a closed registry
func NewCodec(reg *registry.Registry) *Codec {
	return &Codec{reg: reg}
}

// Encode serializes v against term t
func (c *Codec) Encode(t registry.Term, v any) ([]byte, error) {
	e := NewEncoder()
	if err := c.encodeTerm(e, t, v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Decode deserializes data against term t, rejecting trailing bytes
func (c *Codec) Decode(t registry.Term, data []byte) (any, error) {
	d := NewDecoder(data)
	v, err := c.decodeTerm(d, t)
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Codec) encodeTerm(e *Encoder, t registry.Term, v any) error {
	switch t.Kind {
	case registry.KindBool:
		b, ok := v.(bool)
		if !ok {
			return typeError("bool", v)
		}
		e.WriteBool(b)
	case registry.KindU8:
		n, ok := v.(uint8)
		if !ok {
			return typeError("uint8", v)
		}
		e.WriteU8(n)
	case registry.KindI8:
		n, ok := v.(int8)
		if !ok {
			return typeError("int8", v)
		}
		e.WriteI8(n)
	case registry.KindU16:
		n, ok := v.(uint16)
		if !ok {
			return typeError("uint16", v)
		}
		e.WriteU16(n)
	case registry.KindI16:
		n, ok := v.(int16)
		if !ok {
			return typeError("int16", v)
		}
		e.WriteI16(n)
	case registry.KindU32:
		n, ok := v.(uint32)
		if !ok {
			return typeError("uint32", v)
		}
		e.WriteU32(n)
	case registry.KindI32:
		n, ok := v.(int32)
		if !ok {
			return typeError("int32", v)
		}
		e.WriteI32(n)
	case registry.KindU64:
		n, ok := v.(uint64)
		if !ok {
			return typeError("uint64", v)
		}
		e.WriteU64(n)
	case registry.KindI64:
		n, ok := v.(int64)
		if !ok {
			return typeError("int64", v)
		}
		e.WriteI64(n)
	case registry.KindU128:
		n, ok := v.(U128)
		if !ok {
			return typeError("bincode.U128", v)
		}
		e.WriteU128(n)
	case registry.KindI128:
		n, ok := v.(I128)
		if !ok {
			return typeError("bincode.I128", v)
		}
		e.WriteI128(n)
	case registry.KindF32:
		n, ok := v.(float32)
		if !ok {
			return typeError("float32", v)
		}
		e.WriteF32(n)
	case registry.KindF64:
		n, ok := v.(float64)
		if !ok {
			return typeError("float64", v)
		}
		e.WriteF64(n)
	case registry.KindUnit:
		// zero bytes
	case registry.KindStr:
		s, ok := v.(string)
		if !ok {
			return typeError("string", v)
		}
		e.WriteString(s)
	case registry.KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return typeError("[]byte", v)
		}
		e.WriteBytes(b)
	case registry.KindSeq, registry.KindSet:
		items, ok := v.([]any)
		if !ok {
			return typeError("[]any", v)
		}
		e.WriteLen(len(items))
		for _, item := range items {
			if err := c.encodeTerm(e, *t.Elem, item); err != nil {
				return err
			}
		}
	case registry.KindMap:
		pairs, ok := v.([][2]any)
		if !ok {
			return typeError("[][2]any", v)
		}
		e.WriteLen(len(pairs))
		for _, pair := range pairs {
			if err := c.encodeTerm(e, *t.Key, pair[0]); err != nil {
				return err
			}
			if err := c.encodeTerm(e, *t.Value, pair[1]); err != nil {
				return err
			}
		}
	case registry.KindOption:
		if v == nil {
			e.WriteOptionTag(false)
			return nil
		}
		some, ok := v.(Some)
		if !ok {
			return typeError("bincode.Some or nil", v)
		}
		e.WriteOptionTag(true)
		return c.encodeTerm(e, *t.Elem, some.Value)
	case registry.KindTuple:
		items, ok := v.([]any)
		if !ok {
			return typeError("[]any", v)
		}
		if len(items) != len(t.Items) {
			return fmt.Errorf("tuple arity mismatch: value has %d items, type has %d", len(items), len(t.Items))
		}
		for i, item := range items {
			if err := c.encodeTerm(e, t.Items[i], item); err != nil {
				return err
			}
		}
	case registry.KindArray:
		items, ok := v.([]any)
		if !ok {
			return typeError("[]any", v)
		}
		if len(items) != t.Len {
			return fmt.Errorf("array length mismatch: value has %d items, type wants %d", len(items), t.Len)
		}
		for _, item := range items {
			if err := c.encodeTerm(e, *t.Elem, item); err != nil {
				return err
			}
		}
	case registry.KindNamed, registry.KindBoxed:
		return c.encodeUser(e, t.Name, v)
	default:
		return fmt.Errorf("cannot encode term kind %v", t.Kind)
	}
	return nil
}

func (c *Codec) encodeUser(e *Encoder, name string, v any) error {
	def, ok := c.reg.Lookup(name)
	if !ok {
		return fmt.Errorf("type %q not registered", name)
	}
	if err := e.IncreaseContainerDepth(); err != nil {
		return err
	}
	defer e.DecreaseContainerDepth()

	switch def.Shape {
	case registry.ShapeStruct, registry.ShapeTupleStruct:
		fields, ok := v.([]any)
		if !ok {
			return typeError("[]any", v)
		}
		if len(fields) != len(def.Fields) {
			return fmt.Errorf("%s: value has %d fields, type has %d", name, len(fields), len(def.Fields))
		}
		for i, fv := range fields {
			if err := c.encodeTerm(e, def.Fields[i].Type, fv); err != nil {
				return err
			}
		}
	case registry.ShapeEnum:
		variant, ok := v.(Variant)
		if !ok {
			return typeError("bincode.Variant", v)
		}
		if int(variant.Index) >= len(def.Variants) {
			return fmt.Errorf("%s: variant index %d out of range (max %d)", name, variant.Index, len(def.Variants)-1)
		}
		e.WriteVariantIndex(variant.Index)
		vdef := def.Variants[variant.Index]
		if len(variant.Values) != len(vdef.Fields) {
			return fmt.Errorf("%s::%s: value has %d fields, variant has %d", name, vdef.Name, len(variant.Values), len(vdef.Fields))
		}
		// variant payloads encode without their own depth bracket
		for i, fv := range variant.Values {
			if err := c.encodeTerm(e, vdef.Fields[i].Type, fv); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Codec) decodeTerm(d *Decoder, t registry.Term) (any, error) {
	switch t.Kind {
	case registry.KindBool:
		return d.ReadBool()
	case registry.KindU8:
		return d.ReadU8()
	case registry.KindI8:
		return d.ReadI8()
	case registry.KindU16:
		return d.ReadU16()
	case registry.KindI16:
		return d.ReadI16()
	case registry.KindU32:
		return d.ReadU32()
	case registry.KindI32:
		return d.ReadI32()
	case registry.KindU64:
		return d.ReadU64()
	case registry.KindI64:
		return d.ReadI64()
	case registry.KindU128:
		return d.ReadU128()
	case registry.KindI128:
		return d.ReadI128()
	case registry.KindF32:
		return d.ReadF32()
	case registry.KindF64:
		return d.ReadF64()
	case registry.KindUnit:
		return []any{}, nil
	case registry.KindStr:
		return d.ReadString()
	case registry.KindBytes:
		return d.ReadBytes()
	case registry.KindSeq, registry.KindSet:
		n, err := d.ReadLen()
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			item, err := c.decodeTerm(d, *t.Elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case registry.KindMap:
		n, err := d.ReadLen()
		if err != nil {
			return nil, err
		}
		pairs := make([][2]any, 0, n)
		for i := 0; i < n; i++ {
			key, err := c.decodeTerm(d, *t.Key)
			if err != nil {
				return nil, err
			}
			value, err := c.decodeTerm(d, *t.Value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, [2]any{key, value})
		}
		return pairs, nil
	case registry.KindOption:
		present, err := d.ReadOptionTag()
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, nil
		}
		inner, err := c.decodeTerm(d, *t.Elem)
		if err != nil {
			return nil, err
		}
		return Some{Value: inner}, nil
	case registry.KindTuple:
		items := make([]any, 0, len(t.Items))
		for i := range t.Items {
			item, err := c.decodeTerm(d, t.Items[i])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case registry.KindArray:
		items := make([]any, 0, t.Len)
		for i := 0; i < t.Len; i++ {
			item, err := c.decodeTerm(d, *t.Elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case registry.KindNamed, registry.KindBoxed:
		return c.decodeUser(d, t.Name)
	default:
		return nil, fmt.Errorf("cannot decode term kind %v", t.Kind)
	}
}

func (c *Codec) decodeUser(d *Decoder, name string) (any, error) {
	def, ok := c.reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("type %q not registered", name)
	}
	if err := d.IncreaseContainerDepth(); err != nil {
		return nil, err
	}
	defer d.DecreaseContainerDepth()

	switch def.Shape {
	case registry.ShapeStruct, registry.ShapeTupleStruct:
		fields := make([]any, 0, len(def.Fields))
		for i := range def.Fields {
			fv, err := c.decodeTerm(d, def.Fields[i].Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, fv)
		}
		return fields, nil
	default:
		idx, err := d.ReadVariantIndex()
		if err != nil {
			return nil, err
		}
		if int(idx) >= len(def.Variants) {
			return nil, fmt.Errorf("%s: variant index %d out of range (max %d)", name, idx, len(def.Variants)-1)
		}
		vdef := def.Variants[idx]
		values := make([]any, 0, len(vdef.Fields))
		for i := range vdef.Fields {
			fv, err := c.decodeTerm(d, vdef.Fields[i].Type)
			if err != nil {
				return nil, err
			}
			values = append(values, fv)
		}
		return Variant{Index: idx, Values: values}, nil
	}
}

func typeError(want string, got any) error {
	return fmt.Errorf("value type mismatch: want %s, got %T", want, got)
}
