package stage

import (
	"github.com/yuin/gopher-lua/ast"
)

// loopCost is charged per loop or goto. One is enough to exceed the default
// instruction budget.
const loopCost = 1000000

// chunkCost prices a parsed chunk: a small charge per source byte plus
// loopCost for each while, repeat, for and goto statement, wherever nested.
func chunkCost(chunk []ast.Stmt, size int) int {
	return size*10 + loopCost*countLoops(chunk)
}

func countLoops(stmts []ast.Stmt) int {
	n := 0
	for _, st := range stmts {
		n += stmtLoops(st)
	}
	return n
}

func stmtLoops(st ast.Stmt) int {
	switch s := st.(type) {
	case *ast.WhileStmt:
		return 1 + exprLoops(s.Condition) + countLoops(s.Stmts)
	case *ast.RepeatStmt:
		return 1 + exprLoops(s.Condition) + countLoops(s.Stmts)
	case *ast.NumberForStmt:
		return 1 + exprLoops(s.Init, s.Limit, s.Step) + countLoops(s.Stmts)
	case *ast.GenericForStmt:
		return 1 + exprLoops(s.Exprs...) + countLoops(s.Stmts)
	case *ast.GotoStmt:
		return 1
	case *ast.DoBlockStmt:
		return countLoops(s.Stmts)
	case *ast.IfStmt:
		return exprLoops(s.Condition) + countLoops(s.Then) + countLoops(s.Else)
	case *ast.AssignStmt:
		return exprLoops(s.Lhs...) + exprLoops(s.Rhs...)
	case *ast.LocalAssignStmt:
		return exprLoops(s.Exprs...)
	case *ast.FuncCallStmt:
		return exprLoops(s.Expr)
	case *ast.FuncDefStmt:
		if s.Func == nil {
			return 0
		}
		return countLoops(s.Func.Stmts)
	case *ast.ReturnStmt:
		return exprLoops(s.Exprs...)
	default:
		return 0
	}
}

// exprLoops finds loops inside function literals nested in expressions.
func exprLoops(exprs ...ast.Expr) int {
	n := 0
	for _, e := range exprs {
		switch x := e.(type) {
		case *ast.FunctionExpr:
			n += countLoops(x.Stmts)
		case *ast.FuncCallExpr:
			n += exprLoops(x.Func, x.Receiver) + exprLoops(x.Args...)
		case *ast.TableExpr:
			for _, f := range x.Fields {
				n += exprLoops(f.Key, f.Value)
			}
		case *ast.AttrGetExpr:
			n += exprLoops(x.Object, x.Key)
		case *ast.LogicalOpExpr:
			n += exprLoops(x.Lhs, x.Rhs)
		case *ast.RelationalOpExpr:
			n += exprLoops(x.Lhs, x.Rhs)
		case *ast.StringConcatOpExpr:
			n += exprLoops(x.Lhs, x.Rhs)
		case *ast.ArithmeticOpExpr:
			n += exprLoops(x.Lhs, x.Rhs)
		case *ast.UnaryMinusOpExpr:
			n += exprLoops(x.Expr)
		case *ast.UnaryNotOpExpr:
			n += exprLoops(x.Expr)
		case *ast.UnaryLenOpExpr:
			n += exprLoops(x.Expr)
		}
	}
	return n
}
