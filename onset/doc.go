// Package onset detects candidate transients in a mono sample buffer.
//
// The buffer is cut into non-overlapping FrameSize windows. Each window's
// mean spectral magnitude is differenced against the previous window (only
// increases count), and the resulting flux is thinned to local maxima above
// Threshold. The result is a sparse Profile: zero everywhere except at
// candidate transients.
//
// # Usage
//
//	profile := onset.Detect(samples)
//	ix := onset.NewIndex(profile)
//	frame, ok := ix.Nearest(66150)
package onset
