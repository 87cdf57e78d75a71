package ledger

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// GenesisHash is the previous hash of the first block in a chain.
const GenesisHash = "0"

// Block is an immutable ledger entry linked to its predecessor by hash.
type Block struct {
	data         string
	previousHash string
	hash         string
}

// NewBlock builds a block and computes its hash over previousHash and data.
func NewBlock(data, previousHash string) Block {
	return Block{
		data:         data,
		previousHash: previousHash,
		hash:         calculateHash(data, previousHash),
	}
}

// Data returns the opaque payload stored in the block.
func (b Block) Data() string {
	return b.data
}

// PreviousHash returns the hash of the preceding block or GenesisHash.
func (b Block) PreviousHash() string {
	return b.previousHash
}

// Hash returns the digest stored at construction time.
func (b Block) Hash() string {
	return b.hash
}

// CalculateHash recomputes the digest from the block's own fields.
func (b Block) CalculateHash() string {
	return calculateHash(b.data, b.previousHash)
}

// calculateHash returns hex(sha256(previousHash || data)).
func calculateHash(data, previousHash string) string {
	buf := make([]byte, 0, len(previousHash)+len(data))
	buf = append(buf, previousHash...)
	buf = append(buf, data...)
	return hex.EncodeToString(chainhash.HashB(buf))
}
