// Package logic implements the logic-programming core of Bayan: terms,
// substitutions, unification with occurs check, the clause database and
// a depth-first resolution engine with cut, negation as failure and
// solution aggregation.
//
// Resolution is exposed as a Solver, an explicit state machine over a
// stack of choice points. Callers pull solutions one at a time:
//
//	s := logic.NewSolver(db, goals, logic.SolverOptions{})
//	for s.Next() {
//	    fmt.Println(s.Solution())
//	}
//	if err := s.Err(); err != nil {
//	    ...
//	}
//
// A goal with no solutions is not an error. Err only reports failures of
// builtin goals (arithmetic on non-numbers and similar) or cancellation.
//
// Clause lists are snapshotted when a predicate is called, so assert and
// retract take effect for later calls without disturbing calls already
// in progress.
package logic
