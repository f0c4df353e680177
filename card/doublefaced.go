package card

// Directory of double-faced card pairs, indexed both ways.
// It is never modified after creation and is safe for concurrent use.
type Directory struct {
	frontToBack map[string]string
	backToFront map[string]string
}

// NewDirectory creates a directory from a map of front face ID to back face
// ID.
func NewDirectory(frontToBack map[string]string) *Directory {
	d := &Directory{
		frontToBack: make(map[string]string, len(frontToBack)),
		backToFront: make(map[string]string, len(frontToBack)),
	}

	for front, back := range frontToBack {
		d.frontToBack[front] = back
		d.backToFront[back] = front
	}

	return d
}

// Lookup returns the double-faced information of a card, if any.
func (d *Directory) Lookup(id string) (DoubleFaced, bool) {
	if d == nil {
		return DoubleFaced{}, false
	}
	if back, found := d.frontToBack[id]; found {
		return DoubleFaced{Side: Front, Other: back}, true
	}
	if front, found := d.backToFront[id]; found {
		return DoubleFaced{Side: Back, Other: front}, true
	}
	return DoubleFaced{}, false
}

// IsBack reports whether id is the back face of a double-faced card.
func (d *Directory) IsBack(id string) bool {
	if d == nil {
		return false
	}
	_, found := d.backToFront[id]
	return found
}

// Len returns the number of pairs in the directory.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.frontToBack)
}

// Link annotates the record with its double-faced information. Cards that
// aren't double-faced are left untouched.
func (d *Directory) Link(rec *Record) {
	if df, found := d.Lookup(rec.ID); found {
		rec.DoubleFaced = &df
	}
}
