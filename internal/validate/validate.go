// Package validate checks that decoded input is a usable aggregation envelope.
package validate

import (
	"strconv"

	"aggcsv/internal/domain"
)

// CheckSchema reports whether v is a mapping carrying both the result and
// ok keys. The values under those keys are not inspected.
func CheckSchema(v domain.Value) bool {
	root, ok := v.AsMap()
	if !ok {
		return false
	}
	return root.Has(domain.KeyResult) && root.Has(domain.KeyOK)
}

// CheckOk reports whether the ok flag is the number 1.
func CheckOk(env *domain.Envelope) bool {
	return isOne(env.OK)
}

func isOne(v domain.Value) bool {
	n, ok := v.AsNumber()
	if !ok {
		return false
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	return err == nil && f == 1
}

// CheckEmpty reports whether the result holds at least one document.
func CheckEmpty(env *domain.Envelope) bool {
	return len(env.Result) > 0
}

// CheckDepth reports whether every document is flat: no value is a mapping
// and no list holds a mapping or a list.
func CheckDepth(env *domain.Envelope) bool {
	_, _, nested := findNested(env)
	return !nested
}

// findNested returns the document index and field of the first nested value.
func findNested(env *domain.Envelope) (int, string, bool) {
	for i, doc := range env.Result {
		for _, key := range doc.Keys() {
			val, _ := doc.Get(key)
			if !isFlat(val) {
				return i, key, true
			}
		}
	}
	return 0, "", false
}

func isFlat(v domain.Value) bool {
	switch v.Kind() {
	case domain.KindNull, domain.KindBool, domain.KindNumber, domain.KindText:
		return true
	case domain.KindList:
		items, _ := v.AsList()
		for _, item := range items {
			if !isScalar(item) {
				return false
			}
		}
		return true
	case domain.KindMap:
		return false
	default:
		return false
	}
}

func isScalar(v domain.Value) bool {
	switch v.Kind() {
	case domain.KindNull, domain.KindBool, domain.KindNumber, domain.KindText:
		return true
	case domain.KindList, domain.KindMap:
		return false
	default:
		return false
	}
}

// Validate runs the checks in order (schema, ok, empty, depth) and returns
// the envelope, or a typed domain error for the first check that fails.
// The shape of the result list is checked after ok and before empty.
func Validate(v domain.Value) (*domain.Envelope, error) {
	if !CheckSchema(v) {
		return nil, domain.ErrSchemaMismatch("JSON doesn't match aggregation schema")
	}
	root, _ := v.AsMap()
	okVal, _ := root.Get(domain.KeyOK)
	if !isOne(okVal) {
		return nil, &domain.AggregationFailedError{OK: okVal}
	}
	env, err := domain.NewEnvelope(root)
	if err != nil {
		return nil, err
	}
	if !CheckEmpty(env) {
		return nil, &domain.EmptyResultError{}
	}
	if i, field, nested := findNested(env); nested {
		return nil, &domain.NestedResultError{Index: i, Field: field}
	}
	return env, nil
}
