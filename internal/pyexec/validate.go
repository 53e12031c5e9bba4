// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pyexec

import (
	"fmt"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
)

// forbiddenAttributes expose a value's class, bases, subclasses, globals,
// code object or closure; any of them is enough to climb out of a restricted
// namespace.
var forbiddenAttributes = map[string]bool{
	"__class__":      true,
	"__bases__":      true,
	"__subclasses__": true,
	"__globals__":    true,
	"__code__":       true,
	"__closure__":    true,
}

// ValidationError reports why a snippet was rejected before execution.
type ValidationError struct {
	Construct string
	Detail    string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("forbidden construct %s: %s", e.Construct, e.Detail)
	}
	return fmt.Sprintf("forbidden construct: %s", e.Construct)
}

// ParseFailed reports whether the rejection came from the parser rather
// than the deny-list walk. The in-process grammar trails modern Python
// (f-strings, walrus), so a parse failure alone is not conclusive; the
// worker harness re-runs the same deny-list over its interpreter's own
// tree before executing anything.
func (e *ValidationError) ParseFailed() bool {
	return e.Construct == "syntax"
}

// Validate parses code and walks the tree looking for constructs that must
// never reach the worker: imports, with-blocks, function/class definitions,
// lambdas, and access to reflective dunder attributes. A snippet that does
// not parse is reported as a syntax rejection; ParseFailed lets the caller
// tell that case apart from a deny-list hit.
func Validate(code string) error {
	tree, err := parser.ParseString(code, py.ExecMode)
	if err != nil {
		return &ValidationError{Construct: "syntax", Detail: err.Error()}
	}

	var verr *ValidationError
	ast.Walk(tree, func(node ast.Ast) bool {
		if verr != nil {
			return false
		}
		switch n := node.(type) {
		case *ast.Import:
			verr = &ValidationError{Construct: "Import"}
		case *ast.ImportFrom:
			verr = &ValidationError{Construct: "ImportFrom"}
		case *ast.With:
			verr = &ValidationError{Construct: "With"}
		case *ast.FunctionDef:
			verr = &ValidationError{Construct: "FunctionDef"}
		case *ast.ClassDef:
			verr = &ValidationError{Construct: "ClassDef"}
		case *ast.Lambda:
			verr = &ValidationError{Construct: "Lambda"}
		case *ast.Attribute:
			if forbiddenAttributes[string(n.Attr)] {
				verr = &ValidationError{Construct: "Attribute", Detail: string(n.Attr)}
			}
		}
		return verr == nil
	})

	if verr != nil {
		return verr
	}
	return nil
}
