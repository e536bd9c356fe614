// loops.go derives natural loops from dominator back-edges.
//
// A back-edge is an edge b -> h where h dominates b. The natural loop of
// a header h is h plus every block that can reach one of h's back-edge
// sources (latches) without passing through h. Back-edges sharing a
// header are merged into one loop, matching the usual LoopInfo notion.
//
// Irreducible control flow has no back-edge in the dominance sense, so
// irreducible cycles simply yield no loop. That is an accepted limitation
// of dominance-based discovery, not an error.
package analysis

import (
	"sort"

	"github.com/kolkov/looptune/ir"
)

// Loop is one natural loop: a header block and its member blocks.
type Loop struct {
	Header *ir.Block
	Blocks []*ir.Block // header first, remaining members by block index

	member map[*ir.Block]bool
}

// Contains reports whether b is a member of the loop.
func (l *Loop) Contains(b *ir.Block) bool { return l.member[b] }

// ID returns the loop's stable identifier: "<function>:<header>".
// Re-running discovery over an unchanged function reproduces the same
// identifier, which is what lets decisions computed out of process map
// back onto this loop. Renaming the function or its blocks between the
// two runs silently breaks the match.
func (l *Loop) ID(fn *ir.Function) string {
	return fn.Name + ":" + l.Header.Name
}

// Loops discovers the natural loops of fn in deterministic order: headers
// appear in the order their first latch is encountered scanning blocks
// and successor edges in IR order. Returns nil for a function with no
// loops; declarations must be filtered out by the caller.
func Loops(fn *ir.Function) []*Loop {
	if !fn.HasBody() {
		return nil
	}
	dom := Dominance(fn)

	latches := make(map[*ir.Block][]*ir.Block)
	var headers []*ir.Block
	for _, b := range fn.Blocks {
		if !dom.Reachable(b) {
			continue
		}
		for _, succ := range b.Succs {
			if dom.Dominates(succ, b) {
				if _, seen := latches[succ]; !seen {
					headers = append(headers, succ)
				}
				latches[succ] = append(latches[succ], b)
			}
		}
	}

	if len(headers) == 0 {
		return nil
	}
	loops := make([]*Loop, 0, len(headers))
	for _, h := range headers {
		loops = append(loops, buildLoop(h, latches[h]))
	}
	return loops
}

// buildLoop collects the loop body by walking predecessors backwards from
// the latches, stopping at the header.
func buildLoop(header *ir.Block, latches []*ir.Block) *Loop {
	l := &Loop{
		Header: header,
		member: map[*ir.Block]bool{header: true},
	}
	work := append([]*ir.Block(nil), latches...)
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if l.member[b] {
			continue
		}
		l.member[b] = true
		work = append(work, b.Preds...)
	}

	body := make([]*ir.Block, 0, len(l.member)-1)
	for b := range l.member {
		if b != header {
			body = append(body, b)
		}
	}
	sort.Slice(body, func(i, j int) bool { return body[i].Index < body[j].Index })
	l.Blocks = append([]*ir.Block{header}, body...)
	return l
}
