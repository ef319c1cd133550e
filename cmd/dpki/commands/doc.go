// Package commands implements the dpki command line: seed hierarchy
// management, keypair derivation, signing and multi-recipient encryption
// over a local keystore directory.
package commands
