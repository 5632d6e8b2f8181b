// Package bincode implements the wire format used across the bridge:
// little-endian fixed-width integers, one-byte bools and option tags,
// u64 length-prefixed strings and sequences, u32 variant indexes,
// concatenated tuples and fixed arrays, and a container depth limit of
// 500.
//
// The Encoder and Decoder operate at the byte level; the Codec layers a
// registry-driven dynamic value model on top so that every registered
// user type can be round-tripped and byte-compared in tests, and so Go
// hosts implementing entry points can produce result buffers without
// hand-rolling the format.
//
// Decoding is strict: a value that does not consume its entire input
// fails with ErrTrailingBytes, matching the generated C++
// bincodeDeserialize methods.
package bincode
