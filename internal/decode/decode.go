// Package decode parses normalized aggregation output into domain values.
//
// Decoding walks the token stream rather than unmarshalling into
// map[string]any so that object keys keep their input order and numbers
// keep their literal text.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"aggcsv/internal/domain"
)

const malformedMessage = "input could not be decoded as JSON"

// Parse decodes exactly one JSON value from buf. Empty input and trailing
// content after the value are rejected.
func Parse(buf []byte) (domain.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()

	v, err := readValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return domain.Value{}, domain.ErrMalformedInput(err, malformedMessage)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("trailing data after offset %d", dec.InputOffset())
		}
		return domain.Value{}, domain.ErrMalformedInput(err, malformedMessage)
	}
	return v, nil
}

func readValue(dec *json.Decoder) (domain.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return domain.Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return domain.Null(), nil
	case bool:
		return domain.Bool(t), nil
	case json.Number:
		return domain.Number(t), nil
	case string:
		return domain.Text(t), nil
	case json.Delim:
		switch t {
		case '[':
			return readList(dec)
		case '{':
			return readObject(dec)
		}
		return domain.Value{}, fmt.Errorf("unexpected delimiter %q at offset %d", rune(t), dec.InputOffset())
	default:
		return domain.Value{}, fmt.Errorf("unexpected token %T", tok)
	}
}

func readList(dec *json.Decoder) (domain.Value, error) {
	items := []domain.Value{}
	for dec.More() {
		item, err := readValue(dec)
		if err != nil {
			return domain.Value{}, err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return domain.Value{}, err
	}
	return domain.List(items...), nil
}

func readObject(dec *json.Decoder) (domain.Value, error) {
	obj := domain.NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return domain.Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return domain.Value{}, fmt.Errorf("object key is %T, want string", tok)
		}
		val, err := readValue(dec)
		if err != nil {
			return domain.Value{}, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return domain.Value{}, err
	}
	return domain.Map(obj), nil
}
