// Package audio provides the sample storage and shaping primitives of the
// echo agent: the fixed-capacity speech buffer, the circular preroll buffer,
// the silence attenuation pass, playback oversampling and volume scaling,
// WAV encoding, and round-robin diagnostic capture dumps.
package audio
