package store

import "fmt"

// arrayUnion and arrayRemove are set mutations understood by Update. They
// operate on string-array fields with set semantics: union never duplicates,
// remove is a no-op for absent members.
type arrayUnion struct{ values []string }
type arrayRemove struct{ values []string }

// ArrayUnion returns an Update value that adds the given members to a
// string-array field, skipping ones already present.
func ArrayUnion(values ...string) any { return arrayUnion{values: values} }

// ArrayRemove returns an Update value that removes the given members from a
// string-array field.
func ArrayRemove(values ...string) any { return arrayRemove{values: values} }

func mergeFields(current map[string]any, fields map[string]any) error {
	for k, v := range fields {
		switch mut := v.(type) {
		case arrayUnion:
			existing, err := stringSlice(current[k])
			if err != nil {
				return fmt.Errorf("field %q: %w", k, err)
			}
			for _, add := range mut.values {
				if !containsString(existing, add) {
					existing = append(existing, add)
				}
			}
			current[k] = existing
		case arrayRemove:
			existing, err := stringSlice(current[k])
			if err != nil {
				return fmt.Errorf("field %q: %w", k, err)
			}
			kept := existing[:0]
			for _, s := range existing {
				if !containsString(mut.values, s) {
					kept = append(kept, s)
				}
			}
			current[k] = kept
		default:
			current[k] = v
		}
	}
	return nil
}

func stringSlice(v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), s...), nil
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("array member %v is not a string", e)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value %v is not a string array", v)
	}
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
