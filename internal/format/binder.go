package format

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

// structInfo is the cached field layout of a record type, keyed by JSON name.
type structInfo struct {
	fields map[string][]int
	order  []string
	extra  []int
}

var structCache sync.Map // map[reflect.Type]*structInfo

func infoFor(t reflect.Type) *structInfo {
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structInfo)
	}
	info := &structInfo{fields: make(map[string][]int)}
	collectFields(t, nil, info)
	actual, _ := structCache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

func collectFields(t reflect.Type, prefix []int, info *structInfo) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), prefix...), i)
		tag := f.Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")

		if f.Anonymous && f.Type.Kind() == reflect.Struct && name == "" {
			collectFields(f.Type, index, info)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if f.Name == "Extra" && tag == "-" {
			if info.extra == nil {
				info.extra = index
			}
			continue
		}
		if name == "" || name == "-" {
			continue
		}
		if _, dup := info.fields[name]; dup {
			continue
		}
		info.fields[name] = index
		info.order = append(info.order, name)
	}
}

// assign stores a decoded value into dst, converting between the generic shapes
// codecs produce ([]any, map[any]any, record pointers) and the record's field
// types. Distinct named pointer types (Wei and Gwei) are never converted.
func assign(dst reflect.Value, v any) error {
	dt := dst.Type()
	if v == nil {
		if !nillable(dt) {
			return ErrNull
		}
		dst.Set(reflect.Zero(dt))
		return nil
	}
	rv := reflect.ValueOf(v)

	if rv.Type().AssignableTo(dt) {
		dst.Set(rv)
		return nil
	}

	switch {
	case dt.Kind() == reflect.Pointer:
		if rv.Kind() == reflect.Pointer {
			break
		}
		elem := reflect.New(dt.Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case rv.Kind() == reflect.Pointer:
		if rv.IsNil() {
			return assign(dst, nil)
		}
		return assign(dst, rv.Elem().Interface())

	case dt.Kind() == reflect.Slice && rv.Kind() == reflect.Slice && dt != rawMessageType:
		out := reflect.MakeSlice(dt, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := assign(out.Index(i), rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
		return nil

	case dt.Kind() == reflect.Map && rv.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(dt, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := reflect.New(dt.Key()).Elem()
			if err := assign(k, iter.Key().Interface()); err != nil {
				return fmt.Errorf("key %v: %w", iter.Key().Interface(), err)
			}
			val := reflect.New(dt.Elem()).Elem()
			if err := assign(val, iter.Value().Interface()); err != nil {
				return fmt.Errorf("%v: %w", iter.Key().Interface(), err)
			}
			out.SetMapIndex(k, val)
		}
		dst.Set(out)
		return nil

	case isScalarKind(dt.Kind()) && rv.Kind() == dt.Kind() && rv.Type().ConvertibleTo(dt):
		dst.Set(rv.Convert(dt))
		return nil
	}

	return fmt.Errorf("cannot store %T in %s", v, dt)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// fieldsOf flattens a record value (struct, pointer to struct, or map) into its
// present fields. Nil pointers, slices, maps and interfaces are omitted. Extra
// entries are included unless a declared field of the same name is present.
func fieldsOf(v any) (map[string]any, reflect.Type, error) {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, nil, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil, fmt.Errorf("nil record")
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil, fmt.Errorf("record map keys must be strings, got %s", rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil, nil
	case reflect.Struct:
	default:
		return nil, nil, fmt.Errorf("expected a record, got %s", rv.Type())
	}

	info := infoFor(rv.Type())
	out := make(map[string]any, len(info.fields))
	for _, name := range info.order {
		fv := rv.FieldByIndex(info.fields[name])
		switch fv.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			if fv.IsNil() {
				continue
			}
		}
		out[name] = fv.Interface()
	}
	if info.extra != nil {
		extra := rv.FieldByIndex(info.extra)
		iter := extra.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			if _, ok := out[k]; !ok {
				out[k] = iter.Value().Interface()
			}
		}
	}
	return out, rv.Type(), nil
}
