package main

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// NoExitAnalyzer reports os.Exit calls made directly in main.main.
var NoExitAnalyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "reports os.Exit in the main function of package main",
	Run:      runNoExit,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func render(fset *token.FileSet, x interface{}) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, x); err != nil {
		return "os.Exit(...)"
	}
	return buf.String()
}

func isOSExit(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Exit" {
		return false
	}

	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}

	pkg, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	return ok && pkg.Imported().Path() == "os"
}

func runNoExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Body == nil || fn.Recv != nil || fn.Name.Name != "main" {
			return
		}

		// Test binaries get a generated main in the build cache.
		if strings.Contains(pass.Fset.File(fn.Pos()).Name(), "go-build") {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			// Closures run on their own schedule.
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}

			call, ok := n.(*ast.CallExpr)
			if ok && isOSExit(pass, call) {
				pass.Reportf(call.Pos(), "os.Exit call is forbidden in main function: %s", render(pass.Fset, call))
			}
			return true
		})
	})

	return nil, nil
}
