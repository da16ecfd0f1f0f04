// Package extract pulls structured content out of rendered page HTML:
// outbound links in document order and a pruned login-page markup suitable
// for selector detection.
package extract
