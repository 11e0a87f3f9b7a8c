package build

import (
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"
)

// Optimizer handles production optimizations
type Optimizer struct {
	mode BuildMode
}

// NewOptimizer creates a new optimizer
func NewOptimizer(mode BuildMode) *Optimizer {
	return &Optimizer{
		mode: mode,
	}
}

// OptimizeGoCode optimizes generated Go code
func (o *Optimizer) OptimizeGoCode(code string) (string, error) {
	if o.mode != ModeProduction {
		// No optimization in development mode
		return code, nil
	}

	// Parse Go code
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	if err != nil {
		return "", err
	}

	// Apply optimizations
	o.removeDebugCode(file)
	o.simplifyExpressions(file)

	// Generate optimized code
	var buf strings.Builder
	if err := printer.Fprint(&buf, fset, file); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// removeDebugCode removes debug-related code
func (o *Optimizer) removeDebugCode(file *ast.File) {
	// Remove debug log statements
	ast.Inspect(file, func(n ast.Node) bool {
		// Look for function calls to debug loggers
		if call, ok := n.(*ast.CallExpr); ok {
			if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
				// Remove Logger.debug calls
				if sel.Sel.Name == "Debug" {
					// Mark for removal (simplified - would need proper AST modification)
					return false
				}
			}
		}
		return true
	})
}

// simplifyExpressions simplifies constant expressions
func (o *Optimizer) simplifyExpressions(file *ast.File) {
	// Constant folding and other expression simplifications
	// This is a placeholder for more advanced optimizations
	ast.Inspect(file, func(n ast.Node) bool {
		// Look for binary expressions with constant operands
		if binary, ok := n.(*ast.BinaryExpr); ok {
			// Check if both operands are literals
			_, leftLit := binary.X.(*ast.BasicLit)
			_, rightLit := binary.Y.(*ast.BasicLit)

			if leftLit && rightLit {
				// Could fold constants here
				// For now, we just detect them
			}
		}
		return true
	})
}

// TreeShake removes unused code.
// WARNING: This is a stub implementation. Tree shaking is not yet implemented.
// Calling this function has no effect - it returns the code unchanged.
// TODO(CON-XX): Implement proper tree shaking with whole-program analysis.
func (o *Optimizer) TreeShake(code map[string]string) map[string]string {
	if o.mode != ModeProduction {
		return code
	}

	// Tree shaking would analyze cross-file dependencies
	// and remove unused functions, types, and variables
	// This is complex and requires whole-program analysis

	// For now, return code as-is
	return code
}

// InlineSmallFunctions inlines small helper functions.
// WARNING: This is a stub implementation. Function inlining is not yet implemented.
// Calling this function has no effect.
// TODO(CON-XX): Implement function inlining for small helper functions.
func (o *Optimizer) InlineSmallFunctions(file *ast.File) {
	// Function inlining optimization
	// Identify small functions and inline them at call sites
	// This reduces function call overhead

	// For now, this is a placeholder - no-op
}

// DeadCodeElimination removes unreachable code
func (o *Optimizer) DeadCodeElimination(file *ast.File) {
	// Remove code after return statements
	// Remove unused variables
	// Remove unreachable branches

	ast.Inspect(file, func(n ast.Node) bool {
		// Look for functions
		if fn, ok := n.(*ast.FuncDecl); ok {
			if fn.Body != nil {
				o.eliminateDeadCodeInBlock(fn.Body)
			}
		}
		return true
	})
}

// eliminateDeadCodeInBlock removes dead code from a block
func (o *Optimizer) eliminateDeadCodeInBlock(block *ast.BlockStmt) {
	// Find return statements
	hasReturn := false
	newStmts := make([]ast.Stmt, 0, len(block.List))

	for _, stmt := range block.List {
		if hasReturn {
			// Skip statements after return
			continue
		}

		newStmts = append(newStmts, stmt)

		// Check if this is a return statement
		if _, ok := stmt.(*ast.ReturnStmt); ok {
			hasReturn = true
		}
	}

	block.List = newStmts
}
