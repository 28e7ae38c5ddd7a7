package document

// TypeValue identifies a vocabulary type, either as a bare token/IRI or as an
// embedded document that also carries descriptive properties.
type TypeValue struct {
	shape Shape
	id    string
	doc   *Document
}

// TypeID returns a Simple type value for id.
func TypeID(id string) *TypeValue {
	return &TypeValue{shape: ShapeSimple, id: id}
}

// TypeObject returns an Object type value embedding doc.
func TypeObject(doc Typed) *TypeValue {
	return &TypeValue{shape: ShapeObject, doc: doc.Doc()}
}

// Shape returns the wire shape of the value.
func (t *TypeValue) Shape() Shape {
	return t.shape
}

// ID returns the identifying string regardless of shape. For Object type
// values this is the embedded document's id.
func (t *TypeValue) ID() string {
	if t.shape == ShapeObject {
		return t.doc.ID()
	}
	return t.id
}

// Object returns the embedded document of an Object type value.
func (t *TypeValue) Object() *Document {
	if t.shape != ShapeObject {
		shapeMismatch("TypeValue.Object", ShapeObject, t.shape)
	}
	return t.doc
}

// String implements fmt.Stringer.
func (t *TypeValue) String() string {
	return t.ID()
}

// Equal reports whether two type values have the same shape and content.
func (t *TypeValue) Equal(other *TypeValue) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.shape != other.shape {
		return false
	}
	if t.shape == ShapeObject {
		return t.doc.Equal(other.doc)
	}
	return t.id == other.id
}
