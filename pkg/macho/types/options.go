package types

// Options control how strictly bit sets are decoded.
type Options struct {
	// Lenient keeps unknown flag and section attribute bits in a residual
	// mask instead of failing with ErrUnknownFlagBit.
	Lenient bool
}

// ScanBits splits mask into the set bits accepted by known, lowest bit
// first, and the residual bits that known rejected.
func ScanBits(mask uint32, known func(bit uint32) bool) (bits []uint32, residual uint32) {
	for i := 0; i < 32; i++ {
		bit := uint32(1) << i
		if mask&bit == 0 {
			continue
		}
		if known(bit) {
			bits = append(bits, bit)
		} else {
			residual |= bit
		}
	}
	return bits, residual
}
