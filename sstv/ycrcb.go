package sstv

/*
 * RGB -> Y/Cr/Cb transform for the Robot families.
 *
 * This is the simplified, non-standard transform the original
 * implementation uses (not the scaled ITU-R BT.601 form): Cr and Cb
 * are left unscaled, so 1900+400*C can land outside [1500, 2300] Hz
 * on saturated colors. Preserved bit-exact per Open Question 2 in
 * DESIGN.md rather than "corrected", since spec.md requires matching
 * the source's on-air behavior.
 */

// rgbToYCrCb converts normalized [0,1] r/g/b channel samples to the
// Robot-family Y/Cr/Cb triple.
func rgbToYCrCb(r, g, b float64) (y, cr, cb float64) {
	y = 0.299*r + 0.587*g + 0.114*b
	cr = r - y
	cb = b - y
	return y, cr, cb
}
