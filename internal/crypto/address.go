package crypto

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

const (
	// ERC-2470 Singleton Factory address, used when no deployer is given
	FactoryAddress = "0xce0042B868300000d44A59004Da54A005ffdcf9f"

	// CREATE2 input layout: 0xff (1) + deployer (20) + salt (32) + initcodeHash (32) = 85
	Create2PrefixLen = 1 + common.AddressLength
	Create2SaltLen   = 32
	Create2SuffixLen = common.HashLength
	Create2InputLen  = Create2PrefixLen + Create2SaltLen + Create2SuffixLen

	// Create2SaltOffset is where the salt starts inside the CREATE2 input.
	Create2SaltOffset = Create2PrefixLen
)

// NewHasher returns a legacy Keccak-256 hasher suitable for Create2AddressInto.
func NewHasher() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Create2Input builds the 85 byte CREATE2 preimage for the given salt.
// Callers scanning many salts should keep the buffer and only rewrite the
// salt window with PutSalt.
func Create2Input(deployer common.Address, salt *uint256.Int, initCodeHash common.Hash) [Create2InputLen]byte {
	var in [Create2InputLen]byte
	in[0] = 0xff
	copy(in[1:Create2PrefixLen], deployer[:])
	PutSalt(in[:], salt)
	copy(in[Create2PrefixLen+Create2SaltLen:], initCodeHash[:])
	return in
}

// PutSalt writes salt as 32 big-endian bytes into the salt window of inputBuf.
func PutSalt(inputBuf []byte, salt *uint256.Int) {
	b := salt.Bytes32()
	copy(inputBuf[Create2SaltOffset:Create2SaltOffset+Create2SaltLen], b[:])
}

// Create2AddressInto hashes CREATE2 input and writes the 20-byte address into addrBuf.
// Reuses the provided hasher to avoid allocations. inputBuf must be Create2InputLen (85),
// hashBuf must be at least 32 bytes, addrBuf must be 20 bytes.
// Layout: inputBuf = prefix(21) + salt(32) + suffix(32).
func Create2AddressInto(hasher hash.Hash, inputBuf, hashBuf, addrBuf []byte) {
	hasher.Reset()
	hasher.Write(inputBuf)
	sum := hasher.Sum(hashBuf[:0])
	copy(addrBuf, sum[12:32])
}

// DeriveAddress returns the CREATE2 address for deployer, salt and init code hash.
func DeriveAddress(deployer common.Address, salt *uint256.Int, initCodeHash common.Hash) common.Address {
	return ethcrypto.CreateAddress2(deployer, salt.Bytes32(), initCodeHash[:])
}

// Keccak256 calculates the keccak256 hash of the input bytes
func Keccak256(data []byte) common.Hash {
	return ethcrypto.Keccak256Hash(data)
}

// LeadingZeroNibbles counts the zero hex digits at the start of addr.
func LeadingZeroNibbles(addr common.Address) int {
	n := 0
	for _, b := range addr {
		if b == 0 {
			n += 2
			continue
		}
		if b < 0x10 {
			n++
		}
		break
	}
	return n
}

// HexToBytes decodes a hex string (with or without 0x). Odd-length input
// is rejected.
func HexToBytes(hexStr string) ([]byte, error) {
	h := trim0x(hexStr)
	if len(h)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}
	return hex.DecodeString(h)
}

// ParseAddress converts a hex address string to an address.
func ParseAddress(addr string) (common.Address, error) {
	h := trim0x(addr)
	if len(h) != 2*common.AddressLength {
		return common.Address{}, fmt.Errorf("invalid address length: got %d hex chars, want 40", len(h))
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid address hex: %w", err)
	}
	return common.BytesToAddress(b), nil
}

// ParseHash converts a 32-byte hex string to a hash.
func ParseHash(s string) (common.Hash, error) {
	h := trim0x(s)
	if len(h) != 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash length: got %d hex chars, want 64", len(h))
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	return common.BytesToHash(b), nil
}

// ParseSalt converts a hex string of at most 32 bytes to a salt value.
// Short input is treated as the low-order bytes.
func ParseSalt(s string) (*uint256.Int, error) {
	h := trim0x(s)
	if len(h)%2 != 0 {
		h = "0" + h
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("invalid salt hex: %w", err)
	}
	if len(b) > Create2SaltLen {
		return nil, fmt.Errorf("salt too long: got %d bytes, want at most 32", len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}

// SenderSalt returns sender shifted into the upper 20 bytes of a 32 byte
// salt, leaving the low 12 bytes free for the search.
func SenderSalt(sender common.Address) *uint256.Int {
	s := new(uint256.Int).SetBytes(sender[:])
	return s.Lsh(s, 8*(Create2SaltLen-common.AddressLength))
}

// SaltHex renders salt as 0x-prefixed 32 byte hex.
func SaltHex(salt *uint256.Int) string {
	return common.Hash(salt.Bytes32()).Hex()
}

func trim0x(s string) string {
	h := strings.TrimSpace(s)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	return h
}
