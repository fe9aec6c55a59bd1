// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import "fmt"

// The LZ bitstream is a sequence of chunks selected by the low bits of a code
// byte:
//
//	xxxxxx00           literal chunk, (x+1) raw bytes follow (1..64)
//	oooolll1 oooooooo  short run, length l+3 (3..10), distance o (12 bits)
//	llllll10 oollllll* long run over 24 bits: length bits 2..11 (+3, 3..1026),
//	                   distance bits 12..23 (12 bits)
//
// Run distances address previously decoded output; runs may overlap.
const (
	lzMinRun      = 3
	lzMaxShortRun = 10
	lzMaxLongRun  = lzMinRun + 0x3FF
	lzMaxDistance = 0xFFF
	lzMaxLiteral  = 64
)

// Match finder tuning.
const (
	lzHashBits = 14
	lzHashSize = 1 << lzHashBits
	lzMaxChain = 64
)

// lzCompress encodes src as an LZ chunk stream using a greedy hash-chain
// match finder. The empty input encodes to an empty stream.
func lzCompress(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}

	out := make([]byte, 0, len(src)/2+16)
	head := make([]int32, lzHashSize)
	for i := range head {
		head[i] = -1
	}
	prev := make([]int32, len(src))

	hashAt := func(i int) uint32 {
		v := uint32(src[i]) | uint32(src[i+1])<<8 | uint32(src[i+2])<<16
		return (v * 2654435761) >> (32 - lzHashBits)
	}
	insert := func(i int) {
		if i+lzMinRun <= len(src) {
			h := hashAt(i)
			prev[i] = head[h]
			head[h] = int32(i)
		}
	}

	litStart := 0
	emitLiterals := func(end int) {
		for litStart < end {
			n := end - litStart
			if n > lzMaxLiteral {
				n = lzMaxLiteral
			}

			out = append(out, byte((n-1)<<2))
			out = append(out, src[litStart:litStart+n]...)
			litStart += n
		}
	}

	i := 0
	for i < len(src) {
		bestLen, bestDist := 0, 0
		if i+lzMinRun <= len(src) {
			limit := len(src) - i
			if limit > lzMaxLongRun {
				limit = lzMaxLongRun
			}

			for j, steps := head[hashAt(i)], 0; j >= 0 && steps < lzMaxChain; j, steps = prev[j], steps+1 {
				dist := i - int(j)
				if dist > lzMaxDistance {
					break
				}

				l := 0
				for l < limit && src[int(j)+l] == src[i+l] {
					l++
				}

				if l > bestLen {
					bestLen, bestDist = l, dist
					if l == limit {
						break
					}
				}
			}
		}

		if bestLen < lzMinRun {
			insert(i)
			i++
			continue
		}

		emitLiterals(i)
		if bestLen <= lzMaxShortRun {
			v := uint32(bestDist)<<4 | uint32(bestLen-lzMinRun)<<1 | 0x1
			out = append(out, byte(v), byte(v>>8))
		} else {
			v := uint32(bestDist)<<12 | uint32(bestLen-lzMinRun)<<2 | 0x2
			out = append(out, byte(v), byte(v>>8), byte(v>>16))
		}

		for k := 0; k < bestLen; k++ {
			insert(i + k)
		}

		i += bestLen
		litStart = i
	}

	emitLiterals(len(src))
	return out
}

// lzDecompress decodes an LZ chunk stream into exactly expectedSize bytes.
func lzDecompress(src []byte, expectedSize int) ([]byte, error) {
	if expectedSize < 0 {
		return nil, fmt.Errorf("%w: negative output size", ErrCorruptPayload)
	}

	out := make([]byte, 0, expectedSize)
	pos := 0
	next := func() (byte, error) {
		if pos >= len(src) {
			return 0, fmt.Errorf("%w: lz stream ends at %d with %d/%d bytes decoded",
				ErrCorruptPayload, pos, len(out), expectedSize)
		}

		b := src[pos]
		pos++
		return b, nil
	}

	for len(out) < expectedSize {
		code, err := next()
		if err != nil {
			return nil, err
		}

		// Literal chunk
		if code&0x3 == 0 {
			n := int(code>>2) + 1
			if pos+n > len(src) || len(out)+n > expectedSize {
				return nil, fmt.Errorf("%w: literal chunk of %d bytes overruns", ErrCorruptPayload, n)
			}

			out = append(out, src[pos:pos+n]...)
			pos += n
			continue
		}

		var runLen, dist int
		if code&0x1 == 1 {
			// Short-distance run
			b0, err := next()
			if err != nil {
				return nil, err
			}

			v := uint32(b0)<<8 | uint32(code)
			runLen = int((v&0xE)>>1) + lzMinRun
			dist = int(v >> 4)
		} else {
			// Long-distance run
			b0, err := next()
			if err != nil {
				return nil, err
			}
			b1, err := next()
			if err != nil {
				return nil, err
			}

			v := uint32(b1)<<16 | uint32(b0)<<8 | uint32(code)
			runLen = int((v>>2)&0x3FF) + lzMinRun
			dist = int(v >> 12)
		}

		if dist <= 0 || dist > len(out) {
			return nil, fmt.Errorf("%w: run distance %d at output %d", ErrCorruptPayload, dist, len(out))
		}
		if len(out)+runLen > expectedSize {
			return nil, fmt.Errorf("%w: run of %d bytes overruns output", ErrCorruptPayload, runLen)
		}

		// Byte-wise copy: runs may overlap their own output.
		for k := 0; k < runLen; k++ {
			out = append(out, out[len(out)-dist])
		}
	}

	return out, nil
}
