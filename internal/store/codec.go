package store

import (
	"encoding/json"
	"fmt"

	"github.com/msto63/bayan/foundation/bayan/logic"
)

// termJSON is the stored form of a ground term. Exactly one field is set
// except for null atoms, which set only Null.
type termJSON struct {
	Num     *float64   `json:"n,omitempty"`
	Str     *string    `json:"s,omitempty"`
	Bool    *bool      `json:"b,omitempty"`
	Null    bool       `json:"null,omitempty"`
	Functor *string    `json:"f,omitempty"`
	Args    []termJSON `json:"a,omitempty"`
}

func encodeTerm(t logic.Term) (termJSON, error) {
	switch t := t.(type) {
	case logic.Atom:
		switch v := t.Value.(type) {
		case float64:
			return termJSON{Num: &v}, nil
		case string:
			return termJSON{Str: &v}, nil
		case bool:
			return termJSON{Bool: &v}, nil
		case nil:
			return termJSON{Null: true}, nil
		}
		return termJSON{}, fmt.Errorf("unsupported atom %T", t.Value)
	case *logic.Compound:
		functor := t.Functor
		out := termJSON{Functor: &functor, Args: make([]termJSON, len(t.Args))}
		for i, a := range t.Args {
			enc, err := encodeTerm(a)
			if err != nil {
				return termJSON{}, err
			}
			out.Args[i] = enc
		}
		return out, nil
	}
	return termJSON{}, fmt.Errorf("cannot store non-ground term %s", t)
}

func decodeTerm(j termJSON) (logic.Term, error) {
	switch {
	case j.Num != nil:
		return logic.Num(*j.Num), nil
	case j.Str != nil:
		return logic.Str(*j.Str), nil
	case j.Bool != nil:
		return logic.Bool(*j.Bool), nil
	case j.Null:
		return logic.Null, nil
	case j.Functor != nil:
		args := make([]logic.Term, len(j.Args))
		for i, a := range j.Args {
			t, err := decodeTerm(a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return logic.NewCompound(*j.Functor, args...), nil
	}
	return nil, fmt.Errorf("empty stored term")
}

// EncodeArgs renders the arguments of a fact as a JSON array
func EncodeArgs(head *logic.Compound) (string, error) {
	args := make([]termJSON, len(head.Args))
	for i, a := range head.Args {
		enc, err := encodeTerm(a)
		if err != nil {
			return "", err
		}
		args[i] = enc
	}
	data, err := json.Marshal(args)
	return string(data), err
}

// DecodeFact rebuilds a fact from its predicate name and stored arguments
func DecodeFact(name, args string) (*logic.Compound, error) {
	var raw []termJSON
	if err := json.Unmarshal([]byte(args), &raw); err != nil {
		return nil, err
	}
	terms := make([]logic.Term, len(raw))
	for i, r := range raw {
		t, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return logic.NewCompound(name, terms...), nil
}
