package tlv

// decodeIndefinite reads the children of an indefinite-length constructed
// unit up to and including the end-of-contents marker. limit is the end of
// the closest definite-length ancestor.
func (d *Decoder) decodeIndefinite(it *Item, depth int, limit int64) error {
	var items []*Item
	for {
		h, err := readHeader(d.src)
		if err != nil {
			it.Value = Constructed{Items: items}
			// a clean end before the marker is truncation as well
			return d.failHeader(err, h)
		}
		if h.IsEOC() {
			if err := d.checkLimit(h, limit); err != nil {
				it.Value = Constructed{Items: items}
				return err
			}
			break
		}
		child, err := d.decodeChild(h, depth+1, limit)
		items = append(items, child)
		if err != nil {
			it.Value = Constructed{Items: items}
			return err
		}
	}
	it.Value = Constructed{Items: items}
	return nil
}
