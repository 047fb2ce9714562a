/*
Package namegen provides a character-level Markov chain toolkit for
generating fantasy character names.

A Registry owns one global model plus any number of named category models
(one per race or faction), tracks which raw names have been trained into
it, and can be serialized to a human-readable JSON document and restored
later. Training and generation operate on fixed-width character windows;
generation is randomized but total, degrading to documented fallback
strings rather than failing.

The Registry performs no internal locking. Embedding applications that
share one Registry across goroutines must serialize access themselves.
*/
package namegen
