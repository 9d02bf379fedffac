package gfx

// ObjectItem describes one entry of an object layer as loaded from a TMX
// object group.
type ObjectItem struct {
	ID      uint16
	GID     uint16
	Flags   uint16
	X, Y    int
	W, H    int
	Type    uint8
	Visible bool
	Name    string
}

// ObjectList is the content source of an object layer. Object layers are
// accepted as layer content for API completeness but are not rendered;
// the list only carries its items for queries.
type ObjectList struct {
	items []ObjectItem
}

// NewObjectList creates an object list from its items.
func NewObjectList(items []ObjectItem) *ObjectList {
	l := &ObjectList{}
	l.items = make([]ObjectItem, len(items))
	copy(l.items, items)
	return l
}

// NumItems returns the number of objects in the list.
func (l *ObjectList) NumItems() int { return len(l.items) }

// Item returns the nth object.
func (l *ObjectList) Item(index int) (ObjectItem, error) {
	if index < 0 || index >= len(l.items) {
		return ObjectItem{}, ErrIndexOutOfRange
	}
	return l.items[index], nil
}
