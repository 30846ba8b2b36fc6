package models

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"sync"
)

// Document objects are decoded into typed structs, but the file is shared with
// other tools, so members this version does not know about are carried in an
// Extra map and written back untouched.
//
// Decoding is lenient per member: a value of the wrong type keeps the field's
// default, a fractional number in an integer field is truncated, and a bad
// element of a list or map is dropped on its own. Only data that is not a JSON
// object at all fails.

var fieldCache sync.Map // reflect.Type -> map[string]int

func objectFields(t reflect.Type) map[string]int {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string]int)
	}

	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = i
	}
	fieldCache.Store(t, fields)
	return fields
}

// decodeObject decodes data into v (a pointer to a struct holding its
// defaults) and returns the members of data that v has no field for.
func decodeObject(data []byte, v any) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(v).Elem()
	for name, i := range objectFields(rv.Type()) {
		raw, ok := all[name]
		if !ok {
			continue
		}
		delete(all, name)
		decodeValue(raw, rv.Field(i))
	}

	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// decodeValue sets dst from raw, salvaging what it can. dst is left alone
// when nothing usable is found.
func decodeValue(raw json.RawMessage, dst reflect.Value) bool {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false
	}

	tmp := reflect.New(dst.Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err == nil {
		dst.Set(tmp.Elem())
		return true
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		if dst.OverflowInt(int64(f)) {
			return false
		}
		dst.SetInt(int64(f))
		return true

	case reflect.Ptr:
		elem := reflect.New(dst.Type().Elem())
		if !decodeValue(raw, elem.Elem()) {
			return false
		}
		dst.Set(elem)
		return true

	case reflect.Struct:
		tmp.Elem().Set(dst)
		if _, err := decodeObject(raw, tmp.Interface()); err != nil {
			return false
		}
		dst.Set(tmp.Elem())
		return true

	case reflect.Slice:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return false
		}
		out := reflect.MakeSlice(dst.Type(), 0, len(items))
		for _, item := range items {
			elem := reflect.New(dst.Type().Elem()).Elem()
			if decodeValue(item, elem) {
				out = reflect.Append(out, elem)
			}
		}
		dst.Set(out)
		return true

	case reflect.Map:
		if dst.Type().Key().Kind() != reflect.String {
			return false
		}
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return false
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(members))
		for k, item := range members {
			elem := reflect.New(dst.Type().Elem()).Elem()
			if decodeValue(item, elem) {
				out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), elem)
			}
		}
		dst.Set(out)
		return true
	}
	return false
}

// encodeObject marshals v and merges extra back in. Typed fields win on conflict.
func encodeObject(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := out[k]; !ok {
			out[k] = raw
		}
	}
	return json.Marshal(out)
}
