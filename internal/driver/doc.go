// Package driver abstracts the audio hardware paths of the echo agent: the
// microphone (ADC) capture stream and the loudspeaker (DAC) playback stream.
// Backends transfer fixed-size chunks at a fixed sample rate and bit depth so
// capture and playback stay faithful to each other. The portaudio backend
// drives real host audio; the sim backend is scriptable and fault-injectable
// for tests and hardware-free runs.
package driver
