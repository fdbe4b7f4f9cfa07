// Package demo embeds a tiny bundled MOD module so the CLI tools have
// something to play when invoked without a filename, per spec §6.3.
package demo

import _ "embed"

//go:embed demo.mod
var MOD []byte
