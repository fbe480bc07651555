package addr

// Translate maps a 32-bit virtual address to its physical address per the
// region-mask table: KUSEG (regions 0-3) and KSEG2 (regions 6-7) pass through
// unmasked; KSEG0 (region 4) masks to a 31-bit physical address; KSEG1
// (region 5, the uncached window used to bypass the instruction cache)
// masks to a 29-bit physical address.
func Translate(vaddr uint32) (paddr uint32, uncached bool) {
	region := vaddr >> 29
	switch region {
	case 4:
		return vaddr & 0x7FFF_FFFF, false
	case 5:
		return vaddr & 0x1FFF_FFFF, true
	default:
		return vaddr, false
	}
}
