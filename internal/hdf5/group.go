package hdf5

import (
	"bytes"
	"fmt"
)

var (
	treeSignature = []byte{'T', 'R', 'E', 'E'}
	snodSignature = []byte{'S', 'N', 'O', 'D'}
	heapSignature = []byte{'H', 'E', 'A', 'P'}
)

// lookupChild finds the object header address of the named child of the
// group whose object header is at addr. Old-style groups are searched
// through their symbol table B-tree; new-style compact groups through their
// link messages. Dense (fractal heap) groups are not supported.
func (f *File) lookupChild(addr uint64, name string) (uint64, error) {
	msgs, err := f.readObjectHeader(addr)
	if err != nil {
		return 0, err
	}

	var linkInfo []byte
	for _, m := range msgs {
		switch m.typ {
		case msgSymbolTable:
			if len(m.data) < 2*f.offsetSize {
				return 0, fmt.Errorf("hdf5: truncated symbol table message")
			}
			btree := f.readAddr(m.data)
			heap := f.readAddr(m.data[f.offsetSize:])
			return f.searchBTree(btree, heap, name)
		case msgLink:
			child, ok, err := f.matchLink(m.data, name)
			if err != nil {
				return 0, err
			}
			if ok {
				return child, nil
			}
		case msgLinkInfo:
			linkInfo = m.data
		}
	}

	if linkInfo != nil {
		if dense, err := f.linkInfoIsDense(linkInfo); err != nil {
			return 0, err
		} else if dense {
			return 0, fmt.Errorf("hdf5: group uses dense link storage, which is not supported")
		}
	}
	return 0, ErrNotExist
}

func (f *File) linkInfoIsDense(data []byte) (bool, error) {
	if len(data) < 2 {
		return false, fmt.Errorf("hdf5: truncated link info message")
	}
	pos := 2
	if data[1]&0x01 != 0 {
		pos += 8 // maximum creation index
	}
	if len(data) < pos+f.offsetSize {
		return false, fmt.Errorf("hdf5: truncated link info message")
	}
	fractalHeap := f.readAddr(data[pos:])
	return !f.undefinedAddr(fractalHeap), nil
}

// matchLink parses one link message and reports whether it names the wanted
// child. Only hard links resolve to an address; a matching soft or external
// link is an error because the walker cannot follow it.
func (f *File) matchLink(data []byte, name string) (uint64, bool, error) {
	if len(data) < 2 || data[0] != 1 {
		return 0, false, fmt.Errorf("hdf5: unsupported link message")
	}
	flags := data[1]
	pos := 2

	linkType := byte(0)
	if flags&0x08 != 0 {
		if len(data) < pos+1 {
			return 0, false, fmt.Errorf("hdf5: truncated link message")
		}
		linkType = data[pos]
		pos++
	}
	if flags&0x04 != 0 {
		pos += 8 // creation order
	}
	if flags&0x10 != 0 {
		pos++ // name character set
	}

	nameLenSize := 1 << (flags & 0x03)
	if len(data) < pos+nameLenSize {
		return 0, false, fmt.Errorf("hdf5: truncated link message")
	}
	nameLen := int(readUint(data[pos : pos+nameLenSize]))
	pos += nameLenSize
	if len(data) < pos+nameLen {
		return 0, false, fmt.Errorf("hdf5: truncated link message")
	}
	linkName := string(data[pos : pos+nameLen])
	pos += nameLen

	if linkName != name {
		return 0, false, nil
	}
	if linkType != 0 {
		return 0, false, fmt.Errorf("hdf5: link %q is not a hard link", name)
	}
	if len(data) < pos+f.offsetSize {
		return 0, false, fmt.Errorf("hdf5: truncated link message")
	}
	return f.readAddr(data[pos:]), true, nil
}

// searchBTree walks every leaf of a v1 group B-tree and compares symbol
// table entry names against the local heap. Groups met by this tool are
// small, so a full walk is cheaper than key comparisons.
func (f *File) searchBTree(btreeAddr, heapAddr uint64, name string) (uint64, error) {
	heapData, err := f.readLocalHeapDataAddr(heapAddr)
	if err != nil {
		return 0, err
	}
	return f.searchBTreeNode(btreeAddr, heapData, name)
}

func (f *File) searchBTreeNode(addr, heapData uint64, name string) (uint64, error) {
	o := uint64(f.offsetSize)
	l := uint64(f.lengthSize)

	head := make([]byte, 8+2*o)
	if err := f.readAt(head, addr); err != nil {
		return 0, err
	}
	if !bytesEqual(head[:4], treeSignature) {
		return 0, fmt.Errorf("hdf5: bad B-tree node signature at %#x", addr)
	}
	if head[4] != 0 {
		return 0, fmt.Errorf("hdf5: unexpected B-tree node type %d", head[4])
	}
	level := head[5]
	entries := uint64(le16(head[6:8]))

	// Keys and children alternate: entries+1 keys around entries children.
	body := make([]byte, entries*(l+o)+l)
	if err := f.readAt(body, addr+8+2*o); err != nil {
		return 0, err
	}

	for i := uint64(0); i < entries; i++ {
		child := f.readAddr(body[i*(l+o)+l:])
		if level > 0 {
			if found, err := f.searchBTreeNode(child, heapData, name); err == nil {
				return found, nil
			} else if err != ErrNotExist {
				return 0, err
			}
			continue
		}
		if found, err := f.searchSymbolNode(child, heapData, name); err == nil {
			return found, nil
		} else if err != ErrNotExist {
			return 0, err
		}
	}
	return 0, ErrNotExist
}

func (f *File) searchSymbolNode(addr, heapData uint64, name string) (uint64, error) {
	var head [8]byte
	if err := f.readAt(head[:], addr); err != nil {
		return 0, err
	}
	if !bytesEqual(head[:4], snodSignature) {
		return 0, fmt.Errorf("hdf5: bad symbol table node signature at %#x", addr)
	}
	count := uint64(le16(head[6:8]))

	o := uint64(f.offsetSize)
	entrySize := 2*o + 24
	body := make([]byte, count*entrySize)
	if err := f.readAt(body, addr+8); err != nil {
		return 0, err
	}

	for i := uint64(0); i < count; i++ {
		e := body[i*entrySize:]
		nameOffset := f.readAddr(e)
		entryName, err := f.readHeapString(heapData + nameOffset)
		if err != nil {
			return 0, err
		}
		if entryName == name {
			return f.readAddr(e[o:]), nil
		}
	}
	return 0, ErrNotExist
}

// readLocalHeapDataAddr returns the address of a local heap's data segment.
func (f *File) readLocalHeapDataAddr(addr uint64) (uint64, error) {
	buf := make([]byte, 8+2*f.lengthSize+f.offsetSize)
	if err := f.readAt(buf, addr); err != nil {
		return 0, err
	}
	if !bytesEqual(buf[:4], heapSignature) {
		return 0, fmt.Errorf("hdf5: bad local heap signature at %#x", addr)
	}
	return f.readAddr(buf[8+2*f.lengthSize:]), nil
}

// readHeapString reads a NUL-terminated name from a local heap data segment.
func (f *File) readHeapString(addr uint64) (string, error) {
	var out []byte
	buf := make([]byte, 64)
	for {
		n, err := f.r.ReadAt(buf, int64(f.base+addr)+int64(len(out)))
		if n == 0 && err != nil {
			return "", fmt.Errorf("hdf5: reading heap string at %#x: %w", addr, err)
		}
		if i := bytes.IndexByte(buf[:n], 0); i >= 0 {
			return string(append(out, buf[:i]...)), nil
		}
		out = append(out, buf[:n]...)
		if len(out) > 4096 {
			return "", fmt.Errorf("hdf5: unterminated heap string at %#x", addr)
		}
	}
}
