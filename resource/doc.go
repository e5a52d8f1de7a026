// Package resource tracks the scarce resources of the storage substrate:
// off-heap memory and spill IO bandwidth.
//
// Off-heap segments are not garbage collected, so every allocation reserves
// bytes from the Controller and every Free returns them. The spill channel
// layer consults the IO limiter before touching disk so that background
// spills cannot starve the foreground.
package resource
