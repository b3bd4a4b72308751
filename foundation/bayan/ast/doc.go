// Package ast defines the abstract syntax tree of Bayan programs.
//
// Package: ast
// Title: Bayan Abstract Syntax Tree
// Description: Statement, expression and logic-programming nodes produced
//              by the parser. Nodes own their children exclusively and every
//              node carries the source position of its first token so that
//              compile and runtime errors can be attributed.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: TCOL command AST with visitor support
// - 2025-10-02 v0.2.0: Bayan statements, expressions, terms and goals
//
// Logic constructs use three node families. Terms (LogicVar, CompoundTerm
// and any host expression in argument position) describe data; goals
// (CompoundTerm, NotExpr, CutExpr, IsExpr, CompareGoal, AggregateExpr,
// AssertExpr, RetractExpr, Conjunction) describe what the resolution engine
// must prove; QueryExpr bridges goals back into host expressions.
package ast
