package models

// OpenDaysAll marks every day of the week as open.
const OpenDaysAll uint8 = 0x7F

// EncodeOpenDays packs seven Monday-first flags into a bitmask (Monday = bit 0).
func EncodeOpenDays(days [7]bool) uint8 {
	var mask uint8
	for i, open := range days {
		if open {
			mask |= 1 << i
		}
	}
	return mask
}

// DecodeOpenDays unpacks a bitmask into seven Monday-first flags.
func DecodeOpenDays(mask uint8) [7]bool {
	var days [7]bool
	for i := range days {
		days[i] = mask&(1<<i) != 0
	}
	return days
}
