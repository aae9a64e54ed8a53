// Package common holds small helpers shared by the client packages.
package common

// WipeByteArray overwrites b with zeros. Passwords read from the terminal
// are wiped this way once they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
