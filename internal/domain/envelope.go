package domain

// Envelope keys emitted by the aggregate command.
const (
	KeyResult = "result"
	KeyOK     = "ok"
)

// Envelope is the top-level document returned by an aggregation.
type Envelope struct {
	OK     Value
	Result []*Object
}

// NewEnvelope builds an Envelope from a decoded mapping. The mapping must
// carry a result list whose elements are all mappings.
func NewEnvelope(root *Object) (*Envelope, error) {
	okVal, _ := root.Get(KeyOK)
	resultVal, found := root.Get(KeyResult)
	if !found {
		return nil, ErrSchemaMismatch("JSON doesn't match aggregation schema: missing %q", KeyResult)
	}
	items, isList := resultVal.AsList()
	if !isList {
		return nil, ErrSchemaMismatch("JSON doesn't match aggregation schema: %q is a %s, want list", KeyResult, resultVal.Kind())
	}

	docs := make([]*Object, 0, len(items))
	for i, item := range items {
		doc, isMap := item.AsMap()
		if !isMap {
			return nil, ErrSchemaMismatch("JSON doesn't match aggregation schema: result[%d] is a %s, want document", i, item.Kind())
		}
		docs = append(docs, doc)
	}
	return &Envelope{OK: okVal, Result: docs}, nil
}
