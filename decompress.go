/**
 * compressed RTF, as stored in mail messages
 * https://learn.microsoft.com/en-us/openspecs/exchange_server_protocols/ms-oxrtfcp
 */

package stxtconverter

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	magicCompressed   = 0x75465a4c // LZFu
	magicUncompressed = 0x414c454d // MELA

	compressedHeaderSize = 16

	dictSize = 4096
	dictMask = dictSize - 1 // for quick modulo operations
)

// the dictionary starts filled with these bytes
var compressedRtfPrebuf = []byte("{\\rtf1\\ansi\\mac\\deff0\\deftab720{\\fonttbl;}" +
	"{\\f0\\fnil \\froman \\fswiss \\fmodern \\fscript " +
	"\\fdecor MS Sans SerifSymbolArialTimes New RomanCourier" +
	"{\\colortbl\\red0\\green0\\blue0\r\n\\par " +
	"\\pard\\plain\\f0\\fs20\\b\\i\\u\\tab\\tx")

// IsCompressedRtf tells if src starts with a compressed RTF header.
func IsCompressedRtf(src []byte) bool {
	if len(src) < compressedHeaderSize {
		return false
	}
	magic := binary.LittleEndian.Uint32(src[8:])
	return (magic == magicCompressed || magic == magicUncompressed) &&
		int(binary.LittleEndian.Uint32(src)) == len(src)-4
}

func Decompress(src []byte) ([]byte, error) {
	// get header fields
	if len(src) < compressedHeaderSize {
		return nil, fmt.Errorf("%w: header too short", ErrCompressedRtf)
	}

	compressedSize := int(binary.LittleEndian.Uint32(src[0:]))
	uncompressedSize := int(binary.LittleEndian.Uint32(src[4:]))
	magic := binary.LittleEndian.Uint32(src[8:])
	// CRC must be validated only for compressed data (and includes padding)
	crc32sum := binary.LittleEndian.Uint32(src[12:])

	if compressedSize != len(src)-4 {
		// check size excluding the size field itself
		return nil, fmt.Errorf("%w: compressed data size mismatch", ErrCompressedRtf)
	}

	switch magic {
	case magicUncompressed:
		return src[compressedHeaderSize:], nil
	case magicCompressed:
	default:
		return nil, fmt.Errorf("%w: unknown compression type (magic number %#08x)", ErrCompressedRtf, magic)
	}

	if crc32sum != calculateCRC32(src[compressedHeaderSize:]) {
		return nil, fmt.Errorf("%w: CRC32 failed", ErrCompressedRtf)
	}

	// the declared size is only a hint, don't trust it for the allocation
	capacity := len(compressedRtfPrebuf) + min(uncompressedSize, 16*len(src))
	dst := make([]byte, len(compressedRtfPrebuf), capacity)
	copy(dst, compressedRtfPrebuf)

	in := compressedHeaderSize
	flagCount := 0
	flags := 0

	for in < len(src) {
		// each flag byte controls 8 literals/references, 1 per bit
		// each bit is 1 for reference, 0 for literal
		if flagCount&7 == 0 {
			flags = int(src[in])
			in++
			if in >= len(src) {
				break
			}
		} else {
			flags >>= 1
		}
		flagCount++

		if flags&1 == 0 {
			dst = append(dst, src[in])
			in++
			continue
		}

		// read reference: 12-bit offset (from block start) and 4-bit length
		if in+2 > len(src) {
			return nil, fmt.Errorf("%w: truncated reference", ErrCompressedRtf)
		}
		reference := int(binary.BigEndian.Uint16(src[in:]))
		in += 2

		offset := reference >> 4       // the offset from block start
		length := (reference & 0xF) + 2 // the number of bytes to copy

		// the dictionary wraps around at its end; instead of a ring buffer
		// the offset is moved into the output written so far
		out := len(dst)
		offset = out&^dictMask | offset // the absolute offset in array

		if offset >= out {
			if offset == out {
				break // a self-reference marks the end of data
			}
			offset -= dictSize // take from previous block
		}
		if offset < 0 {
			return nil, fmt.Errorf("%w: reference before start of data", ErrCompressedRtf)
		}

		// the referenced bytes can cross the current out position
		for end := offset + length; offset < end; offset++ {
			dst = append(dst, dst[offset])
		}
	}

	Logger().Debug("compressed rtf expanded", "compressed", compressedSize, "declared", uncompressedSize, "actual", len(dst)-len(compressedRtfPrebuf))
	return dst[len(compressedRtfPrebuf):], nil
}

/**
 * CRC32 of RFC 1952 with the inversion before and after the calculation omitted
 */
func calculateCRC32(buf []byte) uint32 {
	return ^crc32.Update(^uint32(0), crc32.IEEETable, buf)
}
