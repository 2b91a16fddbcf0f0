package hdf5

import "fmt"

// readSuperblock parses the superblock that starts at f.base. Versions 0 and
// 1 carry a root symbol table entry; versions 2 and 3 point straight at the
// root group object header. Checksums are not verified.
func (f *File) readSuperblock() error {
	var head [16]byte
	if err := f.readAt(head[:], 0); err != nil {
		return err
	}

	version := head[8]
	switch version {
	case 0, 1:
		f.offsetSize = int(head[13])
		f.lengthSize = int(head[14])
	case 2, 3:
		f.offsetSize = int(head[9])
		f.lengthSize = int(head[10])
	default:
		return fmt.Errorf("hdf5: unsupported superblock version %d", version)
	}
	if err := checkSizes(f.offsetSize, f.lengthSize); err != nil {
		return err
	}

	switch version {
	case 0, 1:
		// Fixed fields end at byte 24 (v0) or 28 (v1), followed by four
		// addresses and the root group symbol table entry.
		fieldsEnd := uint64(24)
		if version == 1 {
			fieldsEnd = 28
		}
		o := uint64(f.offsetSize)
		entry := make([]byte, 2*o+24)
		if err := f.readAt(entry, fieldsEnd+4*o); err != nil {
			return err
		}
		// Entry layout: link name offset, object header address, cache
		// type, reserved, scratch.
		f.rootAddr = f.readAddr(entry[o:])
	default:
		buf := make([]byte, 3*uint64(f.offsetSize))
		if err := f.readAt(buf, uint64(12+f.offsetSize)); err != nil {
			return err
		}
		// Past the base address: superblock extension, end of file, root
		// group object header address.
		f.rootAddr = f.readAddr(buf[2*f.offsetSize:])
	}

	if f.undefinedAddr(f.rootAddr) {
		return fmt.Errorf("hdf5: superblock has no root group address")
	}
	return nil
}

func checkSizes(offsetSize, lengthSize int) error {
	ok := func(n int) bool { return n == 2 || n == 4 || n == 8 }
	if !ok(offsetSize) || !ok(lengthSize) {
		return fmt.Errorf("hdf5: implausible offset/length sizes %d/%d", offsetSize, lengthSize)
	}
	return nil
}
