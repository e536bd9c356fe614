// apply.go attaches resolved directives to the loops they target.
package action

import (
	"github.com/kolkov/looptune/internal/analysis"
	"github.com/kolkov/looptune/ir"
)

// Channel is the reserved metadata channel for loop directives. The
// downstream code generator reads exactly this channel on the first
// instruction of a loop header.
const Channel = "loop"

// Annotation keys emitted for the two known directive kinds.
const (
	KeyVectorizeEnable = "loop.vectorize.enable" // value 0 = disabled
	KeyVectorizeWidth  = "loop.vectorize.width"  // value = requested factor
)

// Apply re-runs loop discovery over m and attaches a directive
// annotation to every loop whose identifier appears in set. Returns the
// number of loops annotated.
//
// Discovery here is independent of the extraction phase: nothing is
// cached between the two runs, only the identifier scheme connects them.
// Loops absent from set, and entries of unrecognized shape, are skipped
// without comment. Attachment overwrites whatever annotation is already
// on the channel; multiple producers targeting the same channel clobber
// each other rather than compose.
func Apply(m *ir.Module, set Set) int {
	annotated := 0
	for _, fn := range m.Funcs {
		if !fn.HasBody() {
			continue
		}
		for _, l := range analysis.Loops(fn) {
			d, ok := set[l.ID(fn)]
			if !ok {
				continue
			}
			ann := directiveAnnotation(d)
			if ann == nil {
				continue
			}
			if len(l.Header.Insts) == 0 {
				continue // cannot happen for parsed IR; headers end in a terminator
			}
			l.Header.Insts[0].SetAnnotation(Channel, ann)
			annotated++
		}
	}
	return annotated
}

// directiveAnnotation builds the annotation node for a directive, or nil
// for an unrecognized entry.
func directiveAnnotation(d Directive) *ir.Annotation {
	switch d.Kind {
	case Disable:
		return &ir.Annotation{Key: KeyVectorizeEnable, Value: 0}
	case Width:
		return &ir.Annotation{Key: KeyVectorizeWidth, Value: d.Width}
	}
	return nil
}
