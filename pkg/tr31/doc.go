// Package tr31 implements ANSI X9 TR-31:2018 key blocks.
//
// A key block is a printable envelope that carries a wrapped key together with
// its usage metadata. The header travels in clear text and is bound to the key
// by a CMAC, so any change to the header invalidates the block.
//
// The package covers the header codec with its optional block chain, the
// version D key derivation, the payload codec and the Wrap/Unwrap operations.
// Only the version D binding method is supported for wrapping. Headers of
// versions A, B and C are still parsed and exported.
//
// All operations are pure. Randomness for payload padding is supplied by the
// caller.
package tr31
