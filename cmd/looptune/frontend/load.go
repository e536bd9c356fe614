// Package frontend lowers Go packages into looptune's IR.
//
// The pass itself is source-language agnostic; this package is the glue
// that lets it run over real Go code. It loads packages with
// golang.org/x/tools/go/packages, builds their SSA form, and translates
// each function's basic blocks into ir blocks with classified opcodes:
//
//	*ssa.UnOp (deref)      -> load
//	*ssa.Store             -> store
//	*ssa.Call/Go/Defer     -> call
//	*ssa.BinOp (arith)     -> add/sub/mul/...
//	*ssa.BinOp (compare)   -> cmp
//	everything else        -> other / control flow
//
// Block names combine the SSA block comment and index ("for.body2"), so
// a rebuilt unit reproduces the same loop identifiers as long as the
// source is unchanged.
package frontend

import (
	"fmt"
	"go/types"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/kolkov/looptune/ir"
)

// Load builds the ir module for the Go packages matched by patterns,
// resolved relative to dir. The module is named after the enclosing Go
// module's path when a go.mod is found, else "main".
func Load(dir string, patterns ...string) (*ir.Module, error) {
	cfg := &packages.Config{
		Mode: packages.LoadAllSyntax,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("packages contain errors")
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %v", patterns)
	}

	prog, ssapkgs := ssautil.Packages(pkgs, ssa.BuilderMode(0))
	prog.Build()

	m := &ir.Module{Name: moduleName(dir)}
	for _, p := range ssapkgs {
		if p == nil {
			continue // package failed to load; already reported above
		}
		for _, fn := range packageFunctions(prog, p) {
			lowerInto(m, fn)
		}
	}
	return m, nil
}

// packageFunctions returns p's package-level functions and the methods of
// its named types, sorted by qualified name so repeated loads of an
// unchanged package produce the same unit.
func packageFunctions(prog *ssa.Program, p *ssa.Package) []*ssa.Function {
	var fns []*ssa.Function
	for _, mem := range p.Members {
		switch t := mem.(type) {
		case *ssa.Function:
			fns = append(fns, t)
		case *ssa.Type:
			// The pointer method set is a superset of the value method
			// set, so this picks up value-receiver methods too.
			mset := prog.MethodSets.MethodSet(types.NewPointer(t.Type()))
			for i := 0; i < mset.Len(); i++ {
				if fn := prog.MethodValue(mset.At(i)); fn != nil {
					fns = append(fns, fn)
				}
			}
		}
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].String() < fns[j].String() })
	return fns
}

// lowerInto lowers fn and its anonymous functions into m, parents first.
func lowerInto(m *ir.Module, fn *ssa.Function) {
	if fn.Blocks != nil {
		m.Funcs = append(m.Funcs, lowerFunc(fn))
	}
	for _, anon := range fn.AnonFuncs {
		lowerInto(m, anon)
	}
}

// moduleName derives the unit name from the enclosing go.mod, walking up
// from dir. Falls back to "main" when no module is found.
func moduleName(dir string) string {
	root, err := findModuleRoot(dir)
	if err != nil {
		return "main"
	}
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "main"
	}
	mf, err := modfile.Parse("go.mod", data, nil)
	if err != nil || mf.Module == nil {
		return "main"
	}
	return mf.Module.Mod.Path
}

// findModuleRoot walks up the directory tree from dir looking for go.mod.
func findModuleRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, "go.mod")); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no go.mod found above %s", dir)
		}
		abs = parent
	}
}
