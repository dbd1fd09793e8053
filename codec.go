package formiq

import (
	"fmt"
	"reflect"
	"strconv"
)

// Values maps a field name to a scalar or, when several fields share the
// name, an ordered []any in document order.
type Values map[string]any

// Decode reads fields into a fresh Values map. Unnamed fields and unchecked
// checkboxes/radios are skipped; every other named control, buttons and file
// inputs included, contributes its value. When converterAttr names an
// attribute present on a field, the converter it names is applied before
// insertion.
func Decode(fields []Field, converters *ConverterRegistry, converterAttr string) (Values, error) {
	result := Values{}
	for _, field := range fields {
		name := field.Name()
		if name == "" {
			continue
		}
		raw, ok := field.Raw()
		if !ok {
			continue
		}

		var value any = raw
		if marker, found := field.Attr(converterAttr); found && marker != "" {
			converted, err := converters.Apply(marker, raw)
			if err != nil {
				return nil, &ConversionError{
					Field:     name,
					Converter: marker,
					Value:     raw,
					Err:       err,
				}
			}
			value = converted
		}

		existing, seen := result[name]
		if !seen {
			result[name] = value
			continue
		}
		if seq, isSeq := existing.([]any); isSeq {
			result[name] = append(seq, value)
			continue
		}
		result[name] = []any{existing, value}
	}
	return result, nil
}

type pendingWrite struct {
	field      Field
	scalar     string
	membership []string
	member     bool
}

// Encode writes values onto fields in document order. A sequence assigned to
// same-named scalar fields is consumed one element per field; checkboxes and
// radios are checked when their own value is a member of the target value or
// sequence. Fields whose name is absent from values are left untouched.
//
// Bounds are checked for the whole pass first, so an IndexError leaves every
// field as it was.
func Encode(fields []Field, values Values) error {
	if len(values) == 0 {
		return nil
	}

	cursors := make(map[string]int)
	writes := make([]pendingWrite, 0, len(fields))
	for _, field := range fields {
		name := field.Name()
		if name == "" {
			continue
		}
		value, ok := values[name]
		if !ok {
			continue
		}

		seq, isSeq := asSequence(value)
		switch {
		case field.Kind().Checkable() && isSeq:
			writes = append(writes, pendingWrite{field: field, membership: seq, member: true})
		case isSeq:
			index := cursors[name]
			if index >= len(seq) {
				return &IndexError{Field: name, Index: index, Length: len(seq)}
			}
			cursors[name] = index + 1
			writes = append(writes, pendingWrite{field: field, scalar: seq[index]})
		default:
			writes = append(writes, pendingWrite{field: field, scalar: formatScalar(value)})
		}
	}

	for _, w := range writes {
		if w.member {
			w.field.writeMembership(w.membership)
			continue
		}
		w.field.writeScalar(w.scalar)
	}
	return nil
}

// asSequence reports whether value is a slice or array and formats its
// elements. Byte slices are treated as scalars.
func asSequence(value any) ([]string, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case []string:
		out := make([]string, len(typed))
		copy(out, typed)
		return out, true
	case []any:
		out := make([]string, len(typed))
		for i, item := range typed {
			out[i] = formatScalar(item)
		}
		return out, true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = formatScalar(rv.Index(i).Interface())
	}
	return out, true
}

func formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(value)
	}
}

// isEmptyValue reports whether a decoded value counts as missing for the
// required check.
func isEmptyValue(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []any:
		for _, item := range v {
			if !isEmptyValue(item, true) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
