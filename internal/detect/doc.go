// Package detect provides amplitude-based speech detection for the echo
// agent: a silence detector that ends a recording after a sustained run of
// quiet samples, and a start detector that arms a recording once enough of
// the preroll window looks like speech.
package detect
