package hdf5

import "fmt"

// parseDataspace decodes a dataspace message (versions 1 and 2) into the
// dataset's current dimensions. A scalar dataspace yields an empty slice.
func (f *File) parseDataspace(data []byte) ([]uint64, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("truncated dataspace message")
	}

	var rank int
	var dimsStart int
	switch data[0] {
	case 1:
		// version, dimensionality, flags, reserved byte, reserved word.
		if len(data) < 8 {
			return nil, fmt.Errorf("truncated dataspace message")
		}
		rank = int(data[1])
		dimsStart = 8
	case 2:
		// version, dimensionality, flags, type.
		if len(data) < 4 {
			return nil, fmt.Errorf("truncated dataspace message")
		}
		rank = int(data[1])
		dimsStart = 4
	default:
		return nil, fmt.Errorf("unsupported dataspace version %d", data[0])
	}

	if len(data) < dimsStart+rank*f.lengthSize {
		return nil, fmt.Errorf("dataspace message shorter than its rank")
	}

	dims := make([]uint64, rank)
	for i := 0; i < rank; i++ {
		dims[i] = readUint(data[dimsStart+i*f.lengthSize : dimsStart+(i+1)*f.lengthSize])
	}
	return dims, nil
}
