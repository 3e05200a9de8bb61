package png

import "fmt"

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// paeth returns whichever of a (left), b (above) or c (upper left) is
// closest to a+b-c, preferring them in that order on a tie.
func paeth(a, b, c int) int {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

// undoFilter reverses the filter applied to cur in place. prev is the
// previous reconstructed scanline of the same image or pass, all zeroes
// for the first one, and must be the same length as cur. fu is the
// filter unit.
func undoFilter(filterType byte, cur, prev []byte, fu int) error {
	switch filterType {
	case ftNone:
		// No-op.
	case ftSub:
		for i := fu; i < len(cur); i++ {
			cur[i] += cur[i-fu]
		}
	case ftUp:
		for i, p := range prev {
			cur[i] += p
		}
	case ftAverage:
		for i := 0; i < fu && i < len(cur); i++ {
			cur[i] += prev[i] / 2
		}
		for i := fu; i < len(cur); i++ {
			cur[i] += uint8((int(cur[i-fu]) + int(prev[i])) >> 1)
		}
	case ftPaeth:
		for i := 0; i < fu && i < len(cur); i++ {
			cur[i] += prev[i]
		}
		for i := fu; i < len(cur); i++ {
			cur[i] += uint8(paeth(int(cur[i-fu]), int(prev[i]), int(prev[i-fu])))
		}
	default:
		return FormatError(fmt.Sprintf("invalid filter type %d", filterType))
	}
	return nil
}
