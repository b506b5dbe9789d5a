package docstore

// DocumentRef addresses exactly one document.
type DocumentRef struct {
	path string
}

// Doc builds a reference to the document at the joined path.
func Doc(args ...PathArg) DocumentRef {
	return DocumentRef{path: Path(args...)}
}

func (r DocumentRef) Path() string { return r.path }

// ID is the last path segment.
func (r DocumentRef) ID() string { return lastSegment(r.path) }

// Parent is the collection holding the document.
func (r DocumentRef) Parent() CollectionRef {
	return CollectionRef{path: parentPath(r.path)}
}

// Collection returns a subcollection of the document.
func (r DocumentRef) Collection(name string) CollectionRef {
	return Collection(r, Seg(name))
}

func (r DocumentRef) String() string { return r.path }

// CollectionRef addresses a set of documents, optionally narrowed by filters,
// sorts and a limit. Values are immutable: Query returns a new reference.
type CollectionRef struct {
	path    string
	filters []Filter
	sorts   []Sort
	limit   *int
}

// Collection builds an unconstrained reference to the collection at the joined path.
func Collection(args ...PathArg) CollectionRef {
	return CollectionRef{path: Path(args...)}
}

func (r CollectionRef) Path() string { return r.path }

// ID is the last path segment.
func (r CollectionRef) ID() string { return lastSegment(r.path) }

// Doc returns a reference to the document with the given id in this collection.
func (r CollectionRef) Doc(id string) DocumentRef {
	return Doc(r, Seg(id))
}

// Filters returns a copy of the query filters.
func (r CollectionRef) Filters() []Filter {
	return append([]Filter{}, r.filters...)
}

// Sorts returns a copy of the query sorts.
func (r CollectionRef) Sorts() []Sort {
	return append([]Sort{}, r.sorts...)
}

// Limit returns the result cap and whether one is set.
func (r CollectionRef) Limit() (int, bool) {
	if r.limit == nil {
		return 0, false
	}
	return *r.limit, true
}

// IsQuery reports whether any constraint has been applied.
func (r CollectionRef) IsQuery() bool {
	return len(r.filters) > 0 || len(r.sorts) > 0 || r.limit != nil
}

func (r CollectionRef) String() string { return r.path }

// Query returns a copy of ref with the constraints appended. Constraints are
// grouped by kind, so their argument order only matters within a kind.
func Query(ref CollectionRef, constraints ...Constraint) CollectionRef {
	out := CollectionRef{
		path:    ref.path,
		filters: ref.Filters(),
		sorts:   ref.Sorts(),
	}
	if ref.limit != nil {
		n := *ref.limit
		out.limit = &n
	}

	for _, c := range constraints {
		switch c := c.(type) {
		case whereConstraint:
			out.filters = append(out.filters, c.filter)
		case orderByConstraint:
			out.sorts = append(out.sorts, c.sort)
		case limitConstraint:
			n := c.n
			out.limit = &n
		}
	}
	return out
}
