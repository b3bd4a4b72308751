package logic

import (
	"strings"
)

// DefaultCheckInterval is the number of resolution steps between calls
// of SolverOptions.Check
const DefaultCheckInterval = 1024

// SolverOptions configures a Solver
type SolverOptions struct {
	// Check is called every CheckInterval steps; a non-nil error stops
	// the search and is reported by Err. Used for cancellation.
	Check         func() error
	CheckInterval int
}

// frame is one pending goal. Frames form an immutable list so choice
// points can share continuations.
type frame struct {
	goal    Goal
	barrier int // choice stack height a cut in this goal truncates to
	next    *frame
}

// choicePoint holds the untried clauses of one predicate call
type choicePoint struct {
	call    *Compound
	clauses []*Clause
	index   int
	cont    *frame
	subst   *Subst
}

// Solver enumerates the solutions of a conjunction of goals depth-first,
// trying clauses in database order. It is a pull-based state machine:
// each Next resumes from the most recent choice point.
type Solver struct {
	db    *Database
	goals []Goal
	vars  []string
	opts  SolverOptions
	start *Subst

	pending *frame
	subst   *Subst
	stack   []*choicePoint
	steps   int

	started bool
	done    bool
	err     error
	current Solution
}

// NewSolver creates a solver for the conjunction goals
func NewSolver(db *Database, goals []Goal, opts SolverOptions) *Solver {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	var vars []string
	for _, name := range GoalVars(goals...) {
		if !isAnonymous(name) {
			vars = append(vars, name)
		}
	}
	return &Solver{db: db, goals: goals, vars: vars, opts: opts}
}

// newSubSolver proves goals under an existing substitution. Cut inside
// the sub-solver is local to it.
func (s *Solver) newSubSolver(goals []Goal, start *Subst) *Solver {
	return &Solver{db: s.db, goals: goals, opts: s.opts, start: start, steps: s.steps}
}

func isAnonymous(name string) bool {
	return strings.HasPrefix(name, "?_")
}

// Vars returns the query variables reported in solutions
func (s *Solver) Vars() []string {
	return s.vars
}

// Next advances to the next solution. It returns false when there are
// no more solutions or an error occurred; check Err to tell them apart.
func (s *Solver) Next() bool {
	if s.done {
		return false
	}
	if !s.started {
		s.started = true
		s.subst = s.start
		s.pending = pushGoals(s.goals, 0, nil)
	} else if !s.backtrack() {
		s.finish(nil)
		return false
	}

	if !s.run() {
		return false
	}
	s.current = make(Solution, len(s.vars))
	for _, name := range s.vars {
		s.current[name] = s.subst.Apply(Var{Name: name})
	}
	return true
}

// Solution returns the bindings of the query variables for the current
// solution. Terms are fully applied and independent of later solutions.
func (s *Solver) Solution() Solution {
	return s.current
}

// Subst returns the raw substitution of the current solution
func (s *Solver) Subst() *Subst {
	return s.subst
}

// Err returns the error that stopped the search, if any
func (s *Solver) Err() error {
	return s.err
}

// Reset rewinds the solver so the next call to Next starts over. The
// database is consulted afresh.
func (s *Solver) Reset() {
	s.pending = nil
	s.subst = nil
	s.stack = nil
	s.started = false
	s.done = false
	s.err = nil
	s.current = nil
}

func (s *Solver) finish(err error) {
	s.done = true
	s.err = err
	s.stack = nil
	s.pending = nil
	s.current = nil
}

// pushGoals prepends goals to next, all with the given cut barrier
func pushGoals(goals []Goal, barrier int, next *frame) *frame {
	for i := len(goals) - 1; i >= 0; i-- {
		next = &frame{goal: goals[i], barrier: barrier, next: next}
	}
	return next
}

// run proves pending goals until they are exhausted (a solution) or no
// choice point is left
func (s *Solver) run() bool {
	for {
		if s.pending == nil {
			return true
		}

		s.steps++
		if s.opts.Check != nil && s.steps%s.opts.CheckInterval == 0 {
			if err := s.opts.Check(); err != nil {
				s.finish(err)
				return false
			}
		}

		f := s.pending
		s.pending = f.next

		ok, err := s.step(f)
		if err != nil {
			s.finish(err)
			return false
		}
		if !ok && !s.backtrack() {
			s.finish(nil)
			return false
		}
	}
}

// step executes one goal; false means the goal failed
func (s *Solver) step(f *frame) (bool, error) {
	switch g := f.goal.(type) {
	case *Compound:
		call, ok := s.subst.Walk(g).(*Compound)
		if !ok {
			return false, nil
		}
		return s.tryClauses(call, s.db.Clauses(call.Key()), 0, f.next, s.subst), nil

	case Cut:
		if f.barrier < len(s.stack) {
			s.stack = s.stack[:f.barrier]
		}
		return true, nil

	case Conj:
		s.pending = pushGoals(g.Goals, f.barrier, f.next)
		return true, nil

	case Not:
		sub := s.newSubSolver([]Goal{g.Goal}, s.subst)
		found := sub.Next()
		s.steps = sub.steps
		if err := sub.Err(); err != nil {
			return false, err
		}
		return !found, nil

	case *Builtin:
		next, ok, err := g.Call(g.Args, s.subst)
		if err != nil || !ok {
			return false, err
		}
		s.subst = next
		return true, nil

	case *Aggregate:
		return s.aggregate(g)
	}
	return false, nil
}

// tryClauses resolves call against clauses starting at index. On
// success the clause body is scheduled in front of cont and, if more
// clauses remain, a choice point is pushed. The body's cut barrier is
// the stack height before that choice point, so a cut removes it.
func (s *Solver) tryClauses(call *Compound, clauses []*Clause, index int, cont *frame, base *Subst) bool {
	barrier := len(s.stack)
	for i := index; i < len(clauses); i++ {
		head, body := s.db.rename(clauses[i])
		next, ok := Unify(call, head, base)
		if !ok {
			continue
		}
		if i+1 < len(clauses) {
			s.stack = append(s.stack, &choicePoint{
				call:    call,
				clauses: clauses,
				index:   i + 1,
				cont:    cont,
				subst:   base,
			})
		}
		s.subst = next
		s.pending = pushGoals(body, barrier, cont)
		return true
	}
	return false
}

// backtrack resumes the most recent choice point with an untried
// clause that unifies
func (s *Solver) backtrack() bool {
	for len(s.stack) > 0 {
		cp := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		if s.tryClauses(cp.call, cp.clauses, cp.index, cp.cont, cp.subst) {
			return true
		}
	}
	return false
}

// aggregate collects every solution of g.Goal and unifies the list with
// g.Result
func (s *Solver) aggregate(g *Aggregate) (bool, error) {
	sub := s.newSubSolver([]Goal{g.Goal}, s.subst)
	var items []Term
	for sub.Next() {
		items = append(items, sub.subst.Apply(g.Template))
	}
	s.steps = sub.steps
	if err := sub.Err(); err != nil {
		return false, err
	}

	if len(items) == 0 && g.Kind != FindAll {
		return false, nil
	}
	if g.Kind == SetOf {
		items = SortUnique(items)
	}

	next, ok := Unify(g.Result, NewList(items...), s.subst)
	if !ok {
		return false, nil
	}
	s.subst = next
	return true, nil
}

// Solve returns every solution of goals
func Solve(db *Database, goals []Goal, opts SolverOptions) ([]Solution, error) {
	s := NewSolver(db, goals, opts)
	var out []Solution
	for s.Next() {
		out = append(out, s.Solution())
	}
	return out, s.Err()
}

// First returns the first solution of goals, or false if there is none
func First(db *Database, goals []Goal, opts SolverOptions) (Solution, bool, error) {
	s := NewSolver(db, goals, opts)
	if s.Next() {
		return s.Solution(), true, nil
	}
	return nil, false, s.Err()
}
