// Package oracle defines the verification contract and the concrete
// verifiers that decide whether a candidate is the thing being recovered.
//
// An Oracle sees batches of decoded candidates and returns the batch
// indices that matched. Oracles are pure with respect to the space: they
// never see ordinals' meaning, only the rendered candidates, so the
// enumerator and dispatcher can be tested with a scripted oracle.
//
// Two real oracles ship: a BIP39/BIP44 seed oracle that derives addresses
// from each mnemonic candidate and checks them against an address set or a
// target account xpub, and a PBKDF2 oracle for password-style recovery
// against a stored derived key.
package oracle
