// Package synth compiles parsed proxy nodes and chosen rule categories into a
// Clash routing configuration.
//
// Synthesize is pure and deterministic: the same nodes and categories always
// produce byte-identical YAML. Empty inputs yield a valid, inert document.
package synth
