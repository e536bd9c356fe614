// Package analysis computes dominance and natural loop structure over the
// control-flow graph of one LIR function.
//
// Both analyses are stateless reads of the IR: running them twice over an
// unchanged function produces identical results, which is the contract the
// extract and apply phases rely on for loop identifier stability.
package analysis

import "github.com/kolkov/looptune/ir"

// DomTree holds immediate-dominator information for one function.
//
// Computed with the iterative Cooper/Harvey/Kennedy algorithm over a
// postorder numbering: cheap to build, and robust on degenerate graphs.
// Unreachable blocks have no dominator information and are excluded from
// every downstream query.
type DomTree struct {
	idom  []*ir.Block // by Block.Index; entry maps to itself, unreachable to nil
	ponum []int       // postorder number by Block.Index; -1 for unreachable
}

// Dominance computes the dominator tree of fn, which must have a body.
func Dominance(fn *ir.Function) *DomTree {
	n := len(fn.Blocks)
	d := &DomTree{
		idom:  make([]*ir.Block, n),
		ponum: make([]int, n),
	}
	for i := range d.ponum {
		d.ponum[i] = -1
	}
	po := postorder(fn)
	for i, b := range po {
		d.ponum[b.Index] = i
	}

	entry := fn.Entry()
	d.idom[entry.Index] = entry

	// Iterate to a fixed point in reverse postorder. po ends with the
	// entry block, so walking the slice backwards from len-2 visits the
	// remaining blocks in reverse postorder.
	for changed := true; changed; {
		changed = false
		for i := len(po) - 2; i >= 0; i-- {
			b := po[i]
			var newIdom *ir.Block
			for _, p := range b.Preds {
				if d.ponum[p.Index] < 0 || d.idom[p.Index] == nil {
					continue // unreachable or not yet processed
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = d.intersect(p, newIdom)
				}
			}
			if newIdom != nil && d.idom[b.Index] != newIdom {
				d.idom[b.Index] = newIdom
				changed = true
			}
		}
	}
	return d
}

// intersect finds the closest common dominator of b and c using the
// postorder numbering.
func (d *DomTree) intersect(b, c *ir.Block) *ir.Block {
	for b != c {
		for d.ponum[b.Index] < d.ponum[c.Index] {
			b = d.idom[b.Index]
		}
		for d.ponum[c.Index] < d.ponum[b.Index] {
			c = d.idom[c.Index]
		}
	}
	return b
}

// Reachable reports whether b was reached from the entry block.
func (d *DomTree) Reachable(b *ir.Block) bool {
	return d.ponum[b.Index] >= 0
}

// Idom returns the immediate dominator of b. The entry block is its own
// immediate dominator; unreachable blocks have none.
func (d *DomTree) Idom(b *ir.Block) *ir.Block {
	return d.idom[b.Index]
}

// Dominates reports whether a dominates b. Every block dominates itself.
func (d *DomTree) Dominates(a, b *ir.Block) bool {
	if !d.Reachable(a) || !d.Reachable(b) {
		return false
	}
	for {
		if a == b {
			return true
		}
		next := d.idom[b.Index]
		if next == b {
			return false // reached the entry block
		}
		b = next
	}
}

// postorder returns a DFS postordering of the blocks reachable from the
// entry. The traversal is iterative so deep graphs cannot overflow the
// stack, and explores successors in edge order for determinism.
func postorder(fn *ir.Function) []*ir.Block {
	type frame struct {
		b     *ir.Block
		index int // next successor edge to explore
	}
	seen := make([]bool, len(fn.Blocks))
	order := make([]*ir.Block, 0, len(fn.Blocks))

	entry := fn.Entry()
	stack := []frame{{b: entry}}
	seen[entry.Index] = true
	for len(stack) > 0 {
		tos := len(stack) - 1
		x := &stack[tos]
		if i := x.index; i < len(x.b.Succs) {
			x.index++
			succ := x.b.Succs[i]
			if !seen[succ.Index] {
				seen[succ.Index] = true
				stack = append(stack, frame{b: succ})
			}
			continue
		}
		order = append(order, x.b)
		stack = stack[:tos]
	}
	return order
}
