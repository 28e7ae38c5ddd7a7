package document

// Link is a link-valued property: a bare URI, an embedded Document, or an
// ordered array of those. Links are immutable and shared by reference.
type Link struct {
	shape Shape
	uri   string
	doc   *Document
	items []*Link
}

// LinkTo returns a Simple link to uri.
func LinkTo(uri string) *Link {
	return &Link{shape: ShapeSimple, uri: uri}
}

// LinkObject returns an Object link embedding doc.
func LinkObject(doc Typed) *Link {
	return &Link{shape: ShapeObject, doc: doc.Doc()}
}

// NewLinkArray returns an Array link holding items in order.
// Items must be Simple or Object links.
func NewLinkArray(items ...*Link) (*Link, error) {
	b := NewLinkArrayBuilder()
	for _, item := range items {
		b.Add(item)
	}
	return b.Build()
}

// Shape returns the wire shape of the link.
func (l *Link) Shape() Shape {
	return l.shape
}

// URI returns the reference of a Simple link.
func (l *Link) URI() string {
	if l.shape != ShapeSimple {
		shapeMismatch("Link.URI", ShapeSimple, l.shape)
	}
	return l.uri
}

// Object returns the embedded document of an Object link.
func (l *Link) Object() *Document {
	if l.shape != ShapeObject {
		shapeMismatch("Link.Object", ShapeObject, l.shape)
	}
	return l.doc
}

// Items returns a copy of the members of an Array link.
func (l *Link) Items() []*Link {
	if l.shape != ShapeArray {
		shapeMismatch("Link.Items", ShapeArray, l.shape)
	}
	out := make([]*Link, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of links represented: 1 for Simple/Object links,
// the member count for arrays.
func (l *Link) Len() int {
	if l.shape == ShapeArray {
		return len(l.items)
	}
	return 1
}

// Ref returns the best reference for the link: the URI of a Simple link or
// the id of an embedded document. Arrays have no single reference.
func (l *Link) Ref() string {
	switch l.shape {
	case ShapeSimple:
		return l.uri
	case ShapeObject:
		return l.doc.ID()
	default:
		return ""
	}
}

// Equal reports whether two links have the same shape and content.
func (l *Link) Equal(other *Link) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.shape != other.shape {
		return false
	}
	switch l.shape {
	case ShapeSimple:
		return l.uri == other.uri
	case ShapeObject:
		return l.doc.Equal(other.doc)
	default:
		if len(l.items) != len(other.items) {
			return false
		}
		for i := range l.items {
			if !l.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	}
}

// LinkArrayBuilder accumulates the members of an Array link.
// It is not safe for concurrent use.
type LinkArrayBuilder struct {
	items []*Link
	err   error
}

// NewLinkArrayBuilder returns an empty array builder.
func NewLinkArrayBuilder() *LinkArrayBuilder {
	return &LinkArrayBuilder{}
}

// Add appends a Simple or Object link. Adding an Array link records
// ErrNestedLinkArray, reported by Build.
func (b *LinkArrayBuilder) Add(l *Link) *LinkArrayBuilder {
	switch {
	case b.err != nil:
	case l == nil:
		b.err = ErrNilValue
	case l.shape == ShapeArray:
		b.err = ErrNestedLinkArray
	default:
		b.items = append(b.items, l)
	}
	return b
}

// AddURI appends a Simple link to uri.
func (b *LinkArrayBuilder) AddURI(uri string) *LinkArrayBuilder {
	return b.Add(LinkTo(uri))
}

// Len returns the number of members added so far.
func (b *LinkArrayBuilder) Len() int {
	return len(b.items)
}

// Build returns the Array link or the first error recorded by Add.
func (b *LinkArrayBuilder) Build() (*Link, error) {
	if b.err != nil {
		return nil, b.err
	}
	items := make([]*Link, len(b.items))
	copy(items, b.items)
	return &Link{shape: ShapeArray, items: items}, nil
}

// mergeLinks implements the merge-on-repeat rule shared by every repeatable
// link property: a second value upgrades the property to an Array holding the
// prior and new values in call order. Array members are spliced in, never nested.
// A prior plain string or embedded document counts as a Simple or Object link.
func mergeLinks(prev any, next *Link) *Link {
	var old *Link
	switch p := prev.(type) {
	case *Link:
		old = p
	case string:
		old = LinkTo(p)
	case Typed:
		old = LinkObject(p)
	}
	if old == nil {
		return next
	}
	items := make([]*Link, 0, old.Len()+next.Len())
	items = appendFlat(items, old)
	items = appendFlat(items, next)
	return &Link{shape: ShapeArray, items: items}
}

func appendFlat(dst []*Link, l *Link) []*Link {
	if l.shape == ShapeArray {
		return append(dst, l.items...)
	}
	return append(dst, l)
}
