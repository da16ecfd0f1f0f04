// Package visited implements the session-local membership cache for
// visited URLs: a capacity-tiered probabilistic set with no false
// negatives and a bounded false-positive rate.
package visited
