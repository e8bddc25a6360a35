package cbor

import (
	"errors"

	"github.com/synadia-labs/bindump.go/dump"
)

// readUntilBreak reads the next header inside an indefinite-length item. It
// reports whether the header is the closing break.
func (d *Decoder) readUntilBreak() (Header, bool, error) {
	h, err := readHeader(d.src)
	if err != nil {
		// a clean end before the break is truncation as well
		return h, false, d.failHeader(err, h)
	}
	return h, h.IsBreak(), nil
}

// decodeIndefiniteString concatenates the chunks of an indefinite-length byte
// or text string. Chunks of another major type and nested indefinite chunks
// are decoded in place, recorded and left out of the result.
func (d *Decoder) decodeIndefiniteString(it *Item, depth int) error {
	major := it.Header.Major
	keep := d.cfg.Keep()

	var (
		data    []byte
		total   int64
		chunks  []int64
		invalid bool
		err     error
	)
	for {
		var (
			h    Header
			done bool
		)
		if h, done, err = d.readUntilBreak(); err != nil || done {
			break
		}
		if h.Major != major || h.Indefinite {
			if _, err = d.decodeValue(h, depth+1); err != nil {
				// the chunk is dropped, so the string reports the problem
				it.Err = errors.Join(it.Err, err)
				break
			}
			if h.Major != major {
				d.note(it, dump.ErrChunkTypeMismatch)
			} else {
				d.note(it, dump.ErrNestedIndefiniteChunk)
			}
			continue
		}

		room := -1
		if keep >= 0 {
			room = max(keep-len(data), 0)
		}
		var chunk []byte
		if chunk, err = d.readPayload(h, room); err != nil {
			break
		}
		if major == majorTypeText && !invalid && !validText(chunk, int64(h.Arg)) {
			invalid = true
		}
		data = append(data, chunk...)
		total += int64(h.Arg)
		chunks = append(chunks, int64(h.Arg))
	}

	if major == majorTypeBytes {
		it.Value = Bytes{Data: data, Len: total, Chunks: chunks}
		return err
	}
	if invalid {
		d.note(it, dump.ErrInvalidUTF8)
	}
	it.Value = Text{Data: data, Len: total, Chunks: chunks, Invalid: invalid}
	return err
}

func (d *Decoder) decodeIndefiniteArray(it *Item, depth int) error {
	var items []*Item
	for {
		h, done, err := d.readUntilBreak()
		if err != nil {
			it.Value = Array{Items: items}
			return err
		}
		if done {
			break
		}
		child, err := d.decodeValue(h, depth+1)
		items = append(items, child)
		if err != nil {
			it.Value = Array{Items: items}
			return err
		}
	}
	it.Value = Array{Items: items}
	return nil
}

func (d *Decoder) decodeIndefiniteMap(it *Item, depth int) error {
	var pairs []Pair
	for {
		h, done, err := d.readUntilBreak()
		if err != nil {
			it.Value = Map{Pairs: pairs}
			return err
		}
		if done {
			break
		}
		k, err := d.decodeValue(h, depth+1)
		if err != nil {
			it.Value = Map{Pairs: append(pairs, Pair{Key: k})}
			return err
		}
		h, done, err = d.readUntilBreak()
		if err != nil {
			it.Value = Map{Pairs: append(pairs, Pair{Key: k})}
			return err
		}
		if done {
			pairs = append(pairs, Pair{Key: k})
			d.note(it, dump.ErrDanglingMapKey)
			break
		}
		v, err := d.decodeValue(h, depth+1)
		pairs = append(pairs, Pair{Key: k, Value: v})
		if err != nil {
			it.Value = Map{Pairs: pairs}
			return err
		}
	}
	it.Value = Map{Pairs: pairs}
	return nil
}
