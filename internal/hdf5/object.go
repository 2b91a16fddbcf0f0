package hdf5

import (
	"fmt"
)

// Header message types used by the walker.
const (
	msgDataspace   = 0x0001
	msgLinkInfo    = 0x0002
	msgLink        = 0x0006
	msgContinue    = 0x0010
	msgSymbolTable = 0x0011
)

type message struct {
	typ  uint16
	data []byte
}

var ohdrSignature = []byte{'O', 'H', 'D', 'R'}
var ochkSignature = []byte{'O', 'C', 'H', 'K'}

// readObjectHeader reads all messages of the object header at addr,
// following continuation blocks. Both the version 1 prefix and the version 2
// "OHDR" form are handled.
func (f *File) readObjectHeader(addr uint64) ([]message, error) {
	var head [4]byte
	if err := f.readAt(head[:], addr); err != nil {
		return nil, err
	}
	if bytesEqual(head[:], ohdrSignature) {
		return f.readObjectHeaderV2(addr)
	}
	if head[0] == 1 {
		return f.readObjectHeaderV1(addr)
	}
	return nil, fmt.Errorf("unrecognized object header at %#x", addr)
}

type block struct {
	addr   uint64
	length uint64
}

func (f *File) readObjectHeaderV1(addr uint64) ([]message, error) {
	var prefix [16]byte
	if err := f.readAt(prefix[:], addr); err != nil {
		return nil, err
	}
	total := int(le16(prefix[2:4]))
	headerSize := uint64(readUint(prefix[8:12]))

	var msgs []message
	// Chunk 0 starts right after the padded prefix; continuation messages
	// queue further chunks.
	blocks := []block{{addr + 16, headerSize}}
	for len(blocks) > 0 && len(msgs) < total {
		b := blocks[0]
		blocks = blocks[1:]

		buf := make([]byte, b.length)
		if err := f.readAt(buf, b.addr); err != nil {
			return nil, err
		}

		pos := uint64(0)
		for pos+8 <= b.length && len(msgs) < total {
			typ := le16(buf[pos : pos+2])
			size := uint64(le16(buf[pos+2 : pos+4]))
			pos += 8
			if pos+size > b.length {
				return nil, fmt.Errorf("message overruns header block at %#x", b.addr)
			}
			data := buf[pos : pos+size]
			pos += size

			if typ == msgContinue {
				cont, err := f.parseContinuation(data)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, cont)
				msgs = append(msgs, message{typ: typ})
				continue
			}
			msgs = append(msgs, message{typ: typ, data: data})
		}
	}
	return msgs, nil
}

func (f *File) readObjectHeaderV2(addr uint64) ([]message, error) {
	var fixed [6]byte
	if err := f.readAt(fixed[:], addr); err != nil {
		return nil, err
	}
	if fixed[4] != 2 {
		return nil, fmt.Errorf("unsupported v2 object header version %d", fixed[4])
	}
	flags := fixed[5]

	pos := addr + 6
	if flags&0x20 != 0 {
		pos += 16 // access/mod/change/birth times
	}
	if flags&0x10 != 0 {
		pos += 4 // max compact / min dense attribute counts
	}

	chunkSizeLen := uint64(1) << (flags & 0x03)
	szBuf := make([]byte, chunkSizeLen)
	if err := f.readAt(szBuf, pos); err != nil {
		return nil, err
	}
	pos += chunkSizeLen
	chunkSize := readUint(szBuf)

	tracked := flags&0x04 != 0

	var msgs []message
	blocks := []block{{pos, chunkSize}}
	for len(blocks) > 0 {
		b := blocks[0]
		blocks = blocks[1:]

		buf := make([]byte, b.length)
		if err := f.readAt(buf, b.addr); err != nil {
			return nil, err
		}

		hdrLen := uint64(4)
		if tracked {
			hdrLen += 2 // creation order
		}

		p := uint64(0)
		for p+hdrLen <= b.length {
			typ := uint16(buf[p])
			size := uint64(le16(buf[p+1 : p+3]))
			p += hdrLen
			if p+size > b.length {
				return nil, fmt.Errorf("message overruns header block at %#x", b.addr)
			}
			data := buf[p : p+size]
			p += size

			if typ == msgContinue {
				cont, err := f.parseContinuation(data)
				if err != nil {
					return nil, err
				}
				// Continuation blocks carry an OCHK signature and a
				// trailing checksum around their message region.
				var sig [4]byte
				if err := f.readAt(sig[:], cont.addr); err != nil {
					return nil, err
				}
				if !bytesEqual(sig[:], ochkSignature) {
					return nil, fmt.Errorf("bad continuation block signature at %#x", cont.addr)
				}
				if cont.length < 8 {
					return nil, fmt.Errorf("continuation block at %#x too small", cont.addr)
				}
				blocks = append(blocks, block{cont.addr + 4, cont.length - 8})
				continue
			}
			msgs = append(msgs, message{typ: typ, data: data})
		}
	}
	return msgs, nil
}

func (f *File) parseContinuation(data []byte) (block, error) {
	if len(data) < f.offsetSize+f.lengthSize {
		return block{}, fmt.Errorf("truncated continuation message")
	}
	return block{
		addr:   f.readAddr(data),
		length: f.readLength(data[f.offsetSize:]),
	}, nil
}
