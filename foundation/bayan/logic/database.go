package logic

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Key identifies a predicate by name and arity
type Key struct {
	Name  string
	Arity int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Name, k.Arity)
}

// Clause is a fact (empty Body) or a rule
type Clause struct {
	Head *Compound
	Body []Goal
}

// IsFact reports whether the clause has no body
func (c *Clause) IsFact() bool {
	return len(c.Body) == 0
}

func (c *Clause) String() string {
	if c.IsFact() {
		return c.Head.String()
	}
	parts := make([]string, len(c.Body))
	for i, g := range c.Body {
		parts[i] = GoalString(g)
	}
	return c.Head.String() + " :- " + strings.Join(parts, ", ")
}

// Database stores clauses grouped by predicate in insertion order.
// Readers get immutable snapshots of a predicate's clause list: Assert
// only appends past every published length and Retract copies.
type Database struct {
	mu      sync.RWMutex
	clauses map[Key][]*Clause
	order   []Key
	nextID  uint64
}

// NewDatabase creates an empty database
func NewDatabase() *Database {
	return &Database{clauses: make(map[Key][]*Clause)}
}

// Assert appends a clause to its predicate
func (db *Database) Assert(c *Clause) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := c.Head.Key()
	if _, ok := db.clauses[key]; !ok {
		db.order = append(db.order, key)
	}
	db.clauses[key] = append(db.clauses[key], c)
}

// AssertFact appends a ground fact
func (db *Database) AssertFact(head *Compound) error {
	if !IsGround(head) {
		return fmt.Errorf("fact %s is not ground", head)
	}
	db.Assert(&Clause{Head: head})
	return nil
}

// Retract removes the first clause whose head is syntactically equal to
// head and reports whether one was removed
func (db *Database) Retract(head *Compound) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := head.Key()
	list := db.clauses[key]
	for i, c := range list {
		if Equal(c.Head, head) {
			// full slice expression forces a copy; snapshots keep the old array
			db.clauses[key] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Clauses returns a snapshot of the clauses of a predicate
func (db *Database) Clauses(key Key) []*Clause {
	db.mu.RLock()
	defer db.mu.RUnlock()
	list := db.clauses[key]
	return list[:len(list):len(list)]
}

// Predicates returns the keys of predicates with at least one clause,
// sorted by name then arity
func (db *Database) Predicates() []Key {
	db.mu.RLock()
	defer db.mu.RUnlock()

	keys := make([]Key, 0, len(db.order))
	for _, k := range db.order {
		if len(db.clauses[k]) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Arity < keys[j].Arity
	})
	return keys
}

// Facts returns every body-less clause head, predicates in first-assert
// order and clauses in database order
func (db *Database) Facts() []*Compound {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var facts []*Compound
	for _, k := range db.order {
		for _, c := range db.clauses[k] {
			if c.IsFact() {
				facts = append(facts, c.Head)
			}
		}
	}
	return facts
}

// Len returns the total number of clauses
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	n := 0
	for _, list := range db.clauses {
		n += len(list)
	}
	return n
}

// Clear removes every clause
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clauses = make(map[Key][]*Clause)
	db.order = nil
}

// fresh returns a renamer with a suffix unique within this database
func (db *Database) fresh() *renamer {
	return newRenamer(atomic.AddUint64(&db.nextID, 1))
}

// rename returns a copy of c with fresh variables
func (db *Database) rename(c *Clause) (*Compound, []Goal) {
	r := db.fresh()
	head := r.term(c.Head).(*Compound)
	if len(c.Body) == 0 {
		return head, nil
	}
	body := make([]Goal, len(c.Body))
	for i, g := range c.Body {
		body[i] = r.goal(g)
	}
	return head, body
}
