package annotation

import "sort"

// Kind tags the variant of an Annotation.
type Kind int

const (
	KindRect Kind = iota
	KindEllipse
	KindHighlight
	KindArrow
	KindStroke
	KindBadge
	KindText
)

// kinds is the single ordering table. hitRank 0 is tested first when resolving
// a pointer; paintRank 0 is drawn first, so lower layers come earlier. The two
// orders differ: highlights paint between shapes and strokes but are
// the last thing a click selects.
var kinds = [...]struct {
	kind      Kind
	name      string
	hitRank   int
	paintRank int
	rotatable bool
}{
	{KindRect, "rect", 5, 0, true},
	{KindEllipse, "ellipse", 4, 1, true},
	{KindHighlight, "highlight", 6, 2, true},
	{KindArrow, "arrow", 3, 3, false},
	{KindStroke, "stroke", 2, 4, false},
	{KindBadge, "badge", 1, 5, false},
	{KindText, "text", 0, 6, true},
}

var (
	hitOrder   = orderBy(func(i int) int { return kinds[i].hitRank })
	paintOrder = orderBy(func(i int) int { return kinds[i].paintRank })
)

func orderBy(rank func(i int) int) []Kind {
	idx := make([]int, len(kinds))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return rank(idx[a]) < rank(idx[b]) })
	out := make([]Kind, len(idx))
	for i, k := range idx {
		out[i] = kinds[k].kind
	}
	return out
}

// HitOrder lists kinds from topmost to bottommost for pointer resolution:
// text, badge, stroke, arrow, ellipse, rect, highlight.
func HitOrder() []Kind { return append([]Kind(nil), hitOrder...) }

// PaintOrder lists kinds in drawing order: rect, ellipse, highlight, arrow,
// stroke, badge, text.
func PaintOrder() []Kind { return append([]Kind(nil), paintOrder...) }

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	for i, k := range kinds {
		out[i] = k.kind
	}
	return out
}

func (k Kind) valid() bool { return k >= 0 && int(k) < len(kinds) }

func (k Kind) String() string {
	if !k.valid() {
		return "unknown"
	}
	return kinds[k].name
}

// Rotatable reports whether annotations of kind k carry a rotation and expose
// a rotation handle.
func (k Kind) Rotatable() bool { return k.valid() && kinds[k].rotatable }

// ParseKind maps a name produced by String back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range kinds {
		if k.name == s {
			return k.kind, true
		}
	}
	return 0, false
}
