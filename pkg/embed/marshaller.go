package vybe

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/funvibe/vybe/internal/evaluator"
)

var valueType = reflect.TypeOf((*evaluator.Value)(nil)).Elem()

// Marshaller handles conversion between Go and vybe values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a vybe Value.
func (m *Marshaller) ToValue(val interface{}) (evaluator.Value, error) {
	if val == nil {
		return evaluator.NOTHING, nil
	}
	if v, ok := val.(evaluator.Value); ok {
		return v, nil
	}
	if t, ok := val.(time.Time); ok {
		return &evaluator.Date{Value: evaluator.DateFromTime(t)}, nil
	}

	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return evaluator.NOTHING, nil
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return &evaluator.Integer{Value: int32(n)}, nil
		}
		return &evaluator.Long{Value: n}, nil
	case reflect.Uint8:
		return &evaluator.Byte{Value: uint8(v.Uint())}, nil
	case reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if n > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows Long", n)
		}
		if n <= math.MaxInt32 {
			return &evaluator.Integer{Value: int32(n)}, nil
		}
		return &evaluator.Long{Value: int64(n)}, nil
	case reflect.Float32:
		return &evaluator.Single{Value: float32(v.Float())}, nil
	case reflect.Float64:
		return &evaluator.Double{Value: v.Float()}, nil
	case reflect.Bool:
		if v.Bool() {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return &evaluator.Array{}, nil
		}
		return m.sliceToArray(v)
	case reflect.Map:
		return m.mapToDictionary(v)
	case reflect.Struct:
		return m.structToObject(v)
	case reflect.Ptr:
		if v.IsNil() {
			return evaluator.NOTHING, nil
		}
		return m.ToValue(v.Elem().Interface())
	}
	return nil, fmt.Errorf("unsupported Go type %s", v.Type())
}

// FromValue converts a vybe Value to a Go value.
// targetType is optional; if provided, tries to convert to that type.
func (m *Marshaller) FromValue(obj evaluator.Value, targetType reflect.Type) (interface{}, error) {
	if obj == nil {
		return nil, nil
	}
	if targetType != nil && targetType == valueType {
		return obj, nil
	}

	var out interface{}
	switch o := obj.(type) {
	case *evaluator.Byte:
		out = o.Value
	case *evaluator.Integer:
		out = int(o.Value)
	case *evaluator.Long:
		out = o.Value
	case *evaluator.Single:
		out = o.Value
	case *evaluator.Double:
		out = o.Value
	case *evaluator.Boolean:
		out = o.Value
	case *evaluator.String:
		out = o.Value
	case *evaluator.Char:
		out = string(o.Value)
	case *evaluator.Date:
		t, ok := evaluator.DateToTime(o.Value)
		if !ok {
			return nil, fmt.Errorf("date %v is out of range", o.Value)
		}
		out = t
	case *evaluator.Nothing:
		return nil, nil
	case *evaluator.Array:
		return m.valuesToSlice(o.Elements, targetType)
	case *evaluator.Collection, *evaluator.Queue, *evaluator.Stack, *evaluator.HashSet:
		items, err := evaluator.ToIterable(o)
		if err != nil {
			return nil, err
		}
		return m.valuesToSlice(items, targetType)
	case *evaluator.Dictionary:
		return m.dictionaryToMap(o, targetType)
	case *evaluator.Object:
		if targetType != nil && targetType.Kind() == reflect.Struct {
			return m.objectToStruct(o, targetType)
		}
		if targetType != nil && targetType.Kind() == reflect.Ptr && targetType.Elem().Kind() == reflect.Struct {
			s, err := m.objectToStruct(o, targetType.Elem())
			if err != nil {
				return nil, err
			}
			p := reflect.New(targetType.Elem())
			p.Elem().Set(reflect.ValueOf(s))
			return p.Interface(), nil
		}
		return m.objectToMap(o)
	default:
		return nil, fmt.Errorf("unsupported type for conversion: %s", obj.Type())
	}
	return convert(out, targetType)
}

// convert coerces a scalar to targetType when the kinds are convertible.
func convert(val interface{}, targetType reflect.Type) (interface{}, error) {
	if targetType == nil || targetType.Kind() == reflect.Interface {
		return val, nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type() == targetType {
		return val, nil
	}
	if (rv.Kind() == reflect.String) != (targetType.Kind() == reflect.String) {
		return nil, fmt.Errorf("cannot convert %s to %s", rv.Type(), targetType)
	}
	if rv.Type().ConvertibleTo(targetType) {
		return rv.Convert(targetType).Interface(), nil
	}
	return nil, fmt.Errorf("cannot convert %s to %s", rv.Type(), targetType)
}

func (m *Marshaller) sliceToArray(v reflect.Value) (*evaluator.Array, error) {
	elements := make([]evaluator.Value, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return &evaluator.Array{Elements: elements}, nil
}

func (m *Marshaller) mapToDictionary(v reflect.Value) (*evaluator.Dictionary, error) {
	result := evaluator.NewDictionary()
	iter := v.MapRange()
	for iter.Next() {
		key, err := m.ToValue(iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		val, err := m.ToValue(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		result.SetItem(key, val)
	}
	return result, nil
}

// structToObject copies exported fields into an Object named after the
// struct type.
func (m *Marshaller) structToObject(v reflect.Value) (*evaluator.Object, error) {
	t := v.Type()
	obj := evaluator.NewObject(t.Name())
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // Skip unexported fields
			continue
		}
		val, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		obj.Set(field.Name, val)
	}
	return obj, nil
}

func (m *Marshaller) valuesToSlice(els []evaluator.Value, targetType reflect.Type) (interface{}, error) {
	// If targetType is nil, default to []interface{}
	elemType := reflect.TypeOf((*interface{})(nil)).Elem()
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(els))
	for _, el := range els {
		val, err := m.FromValue(el, elemType)
		if err != nil {
			return nil, err
		}
		rv, err := assignable(val, elemType)
		if err != nil {
			return nil, err
		}
		slice = reflect.Append(slice, rv)
	}
	return slice.Interface(), nil
}

func (m *Marshaller) dictionaryToMap(d *evaluator.Dictionary, targetType reflect.Type) (interface{}, error) {
	keyType := reflect.TypeOf((*interface{})(nil)).Elem()
	valType := keyType
	mapType := reflect.TypeOf(map[interface{}]interface{}{})
	if targetType != nil && targetType.Kind() == reflect.Map {
		keyType, valType, mapType = targetType.Key(), targetType.Elem(), targetType
	}

	keys, values := d.Keys(), d.Values()
	result := reflect.MakeMapWithSize(mapType, len(keys))
	for i := range keys {
		key, err := m.FromValue(keys[i], keyType)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		val, err := m.FromValue(values[i], valType)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		kv, err := assignable(key, keyType)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		if kv.Kind() == reflect.Interface && kv.IsNil() {
			return nil, fmt.Errorf("map key: Nothing is not a valid key")
		}
		vv, err := assignable(val, valType)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		result.SetMapIndex(kv, vv)
	}
	return result.Interface(), nil
}

// objectToMap returns the object's fields keyed by their stored
// (lower-cased) names.
func (m *Marshaller) objectToMap(o *evaluator.Object) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(o.Fields))
	for name, f := range o.Fields {
		if strings.HasPrefix(name, "__") {
			continue
		}
		val, err := m.FromValue(f, nil)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		result[name] = val
	}
	return result, nil
}

// objectToStruct fills the exported fields of a new targetType from the
// object's fields, matched case-insensitively. Missing fields keep their
// zero value.
func (m *Marshaller) objectToStruct(o *evaluator.Object, targetType reflect.Type) (interface{}, error) {
	out := reflect.New(targetType).Elem()
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		fv, ok := o.Get(field.Name)
		if !ok {
			continue
		}
		val, err := m.FromValue(fv, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		rv, err := assignable(val, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		out.Field(i).Set(rv)
	}
	return out.Interface(), nil
}

// assignable wraps val as a reflect.Value that can be stored in a slot of
// type t; nil becomes the zero value.
func assignable(val interface{}, t reflect.Type) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) && (rv.Kind() == reflect.String) == (t.Kind() == reflect.String) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), t)
}
