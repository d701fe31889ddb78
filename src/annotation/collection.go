package annotation

// Ref addresses one annotation by kind and identity. Unlike a slice index it
// survives removals of other items; a Ref whose item is gone simply resolves
// to nothing.
type Ref struct {
	Kind Kind
	ID   ID
}

// IsZero reports whether r addresses nothing.
func (r Ref) IsZero() bool { return r.ID == "" }

// Collection is the committed document: one ordered sequence per variant,
// oldest first.
type Collection struct {
	Rects      []Rect
	Ellipses   []Ellipse
	Highlights []Highlight
	Arrows     []Arrow
	Strokes    []Stroke
	Badges     []Badge
	Texts      []Text
}

// Clone returns a deep copy.
func (c Collection) Clone() Collection {
	out := Collection{
		Rects:      append([]Rect(nil), c.Rects...),
		Ellipses:   append([]Ellipse(nil), c.Ellipses...),
		Highlights: append([]Highlight(nil), c.Highlights...),
		Arrows:     append([]Arrow(nil), c.Arrows...),
		Badges:     append([]Badge(nil), c.Badges...),
		Texts:      append([]Text(nil), c.Texts...),
	}
	if len(c.Strokes) > 0 {
		out.Strokes = make([]Stroke, len(c.Strokes))
		for i, s := range c.Strokes {
			out.Strokes[i] = s.Clone().(Stroke)
		}
	}
	return out
}

// Len returns the number of items of kind k.
func (c Collection) Len(k Kind) int {
	switch k {
	case KindRect:
		return len(c.Rects)
	case KindEllipse:
		return len(c.Ellipses)
	case KindHighlight:
		return len(c.Highlights)
	case KindArrow:
		return len(c.Arrows)
	case KindStroke:
		return len(c.Strokes)
	case KindBadge:
		return len(c.Badges)
	case KindText:
		return len(c.Texts)
	}
	return 0
}

// Total returns the number of items across all kinds.
func (c Collection) Total() int {
	n := 0
	for _, k := range Kinds() {
		n += c.Len(k)
	}
	return n
}

// At returns item i of kind k. ok is false when i is out of range.
func (c Collection) At(k Kind, i int) (Annotation, bool) {
	if i < 0 || i >= c.Len(k) {
		return nil, false
	}
	switch k {
	case KindRect:
		return c.Rects[i], true
	case KindEllipse:
		return c.Ellipses[i], true
	case KindHighlight:
		return c.Highlights[i], true
	case KindArrow:
		return c.Arrows[i], true
	case KindStroke:
		return c.Strokes[i], true
	case KindBadge:
		return c.Badges[i], true
	case KindText:
		return c.Texts[i], true
	}
	return nil, false
}

// Items returns the items of kind k, oldest first.
func (c Collection) Items(k Kind) []Annotation {
	n := c.Len(k)
	out := make([]Annotation, 0, n)
	for i := 0; i < n; i++ {
		a, _ := c.At(k, i)
		out = append(out, a)
	}
	return out
}

// Index resolves r to its current position within its kind.
func (c Collection) Index(r Ref) (int, bool) {
	if r.IsZero() {
		return 0, false
	}
	switch r.Kind {
	case KindRect:
		return indexOf(c.Rects, r.ID)
	case KindEllipse:
		return indexOf(c.Ellipses, r.ID)
	case KindHighlight:
		return indexOf(c.Highlights, r.ID)
	case KindArrow:
		return indexOf(c.Arrows, r.ID)
	case KindStroke:
		return indexOf(c.Strokes, r.ID)
	case KindBadge:
		return indexOf(c.Badges, r.ID)
	case KindText:
		return indexOf(c.Texts, r.ID)
	}
	return 0, false
}

// Get returns the item addressed by r.
func (c Collection) Get(r Ref) (Annotation, bool) {
	i, ok := c.Index(r)
	if !ok {
		return nil, false
	}
	return c.At(r.Kind, i)
}

// Contains reports whether r resolves to an item.
func (c Collection) Contains(r Ref) bool {
	_, ok := c.Index(r)
	return ok
}

// Add appends a at the top of its kind and returns its reference.
func (c *Collection) Add(a Annotation) Ref {
	switch v := a.(type) {
	case Rect:
		c.Rects = append(c.Rects, v)
	case Ellipse:
		c.Ellipses = append(c.Ellipses, v)
	case Highlight:
		c.Highlights = append(c.Highlights, v)
	case Arrow:
		c.Arrows = append(c.Arrows, v)
	case Stroke:
		c.Strokes = append(c.Strokes, v.Clone().(Stroke))
	case Badge:
		c.Badges = append(c.Badges, v)
	case Text:
		c.Texts = append(c.Texts, v)
	default:
		return Ref{}
	}
	return RefOf(a)
}

// Replace overwrites the item sharing a's identity. It reports false, leaving
// c untouched, when no such item exists.
func (c *Collection) Replace(a Annotation) bool {
	i, ok := c.Index(RefOf(a))
	if !ok {
		return false
	}
	switch v := a.(type) {
	case Rect:
		c.Rects[i] = v
	case Ellipse:
		c.Ellipses[i] = v
	case Highlight:
		c.Highlights[i] = v
	case Arrow:
		c.Arrows[i] = v
	case Stroke:
		c.Strokes[i] = v.Clone().(Stroke)
	case Badge:
		c.Badges[i] = v
	case Text:
		c.Texts[i] = v
	default:
		return false
	}
	return true
}

// Remove deletes the item addressed by r and reports whether it existed.
func (c *Collection) Remove(r Ref) bool {
	i, ok := c.Index(r)
	if !ok {
		return false
	}
	switch r.Kind {
	case KindRect:
		c.Rects = removeAt(c.Rects, i)
	case KindEllipse:
		c.Ellipses = removeAt(c.Ellipses, i)
	case KindHighlight:
		c.Highlights = removeAt(c.Highlights, i)
	case KindArrow:
		c.Arrows = removeAt(c.Arrows, i)
	case KindStroke:
		c.Strokes = removeAt(c.Strokes, i)
	case KindBadge:
		c.Badges = removeAt(c.Badges, i)
	case KindText:
		c.Texts = removeAt(c.Texts, i)
	}
	return true
}

func indexOf[T interface{ Identity() ID }](items []T, id ID) (int, bool) {
	for i := range items {
		if items[i].Identity() == id {
			return i, true
		}
	}
	return 0, false
}

func removeAt[T any](items []T, i int) []T {
	if len(items) == 1 {
		return nil
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// Snapshot is an immutable copy of the document plus the badge counter.
type Snapshot struct {
	Items        Collection
	BadgeCounter int
}

// Capture deep-copies c and counter into a Snapshot.
func Capture(c Collection, counter int) Snapshot {
	return Snapshot{Items: c.Clone(), BadgeCounter: counter}
}

// Restore returns a copy of the snapshot's document so later edits cannot reach
// back into history.
func (s Snapshot) Restore() (Collection, int) {
	return s.Items.Clone(), s.BadgeCounter
}
