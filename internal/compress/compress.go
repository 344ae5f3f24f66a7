package compress

// Codec names as stored in the compression column of ledger audit rows.
const (
	NameGZip   = "gzip"
	NameBrotli = "brotli"
	NameLZ4    = "lz4"
)

// Compress encodes and decodes a byte stream with a fixed codec.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

type Nop struct {
}

func NewNop() Nop {
	return Nop{}
}

func (n Nop) Encode(data []byte) ([]byte, error) {
	return data, nil
}

func (n Nop) Decode(data []byte) ([]byte, error) {
	return data, nil
}

// FromName returns the codec registered under a name as stored in the
// compression column. Unknown names fall back to the nop codec.
func FromName(name string) Compress {
	switch name {
	case NameGZip:
		return NewGZip()
	case NameBrotli:
		return NewBrotli()
	case NameLZ4:
		return NewLZ4()
	default:
		return NewNop()
	}
}
