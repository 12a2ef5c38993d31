// Package simd provides runtime CPU-feature dispatch (detect once at
// init, cache the choice for the life of the process) plus the two
// word-parallel algorithms the format scanners build their chunked paths
// on: CSV quote-mask computation (PDEP-style carry arithmetic in
// hardware) and JSON PFSM transition-table composition (a vpshufb
// shuffle in hardware).
//
// The vectorized tiers select portable Go implementations of the same
// word-parallel algorithms rather than hand-written assembly: the
// payloads operate on uint64 words, and the dispatch decides chunked vs
// per-byte scanning, so every tier produces bit-identical output to the
// scalar reference.
package simd

import "golang.org/x/sys/cpu"

// Level identifies which dispatch tier was selected at process init.
type Level int

const (
	LevelScalar Level = iota
	LevelAVX2
	LevelAVX2BMI2
	LevelAVX512
	LevelNEON
)

func (l Level) String() string {
	switch l {
	case LevelAVX2:
		return "avx2"
	case LevelAVX2BMI2:
		return "avx2+bmi2"
	case LevelAVX512:
		return "avx512"
	case LevelNEON:
		return "neon"
	default:
		return "scalar"
	}
}

// Selected is the dispatch level chosen once at package init and cached
// for the lifetime of the process.
var Selected Level

func init() {
	Selected = detect()
}

func detect() Level {
	switch {
	case cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW:
		return LevelAVX512
	case cpu.X86.HasAVX2 && cpu.X86.HasBMI2:
		return LevelAVX2BMI2
	case cpu.X86.HasAVX2:
		return LevelAVX2
	case cpu.ARM64.HasASIMD:
		return LevelNEON
	default:
		return LevelScalar
	}
}

// Chunk granularities for the chunked scanners: the CSV quote-mask
// algorithm works in 64-byte (one-uint64-of-bits) chunks, the JSON PFSM
// composition in 16-byte sub-chunks.
const (
	CSVChunkBytes  = 64
	JSONChunkBytes = 16
)
