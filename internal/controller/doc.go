// Package controller implements the mode state machine of the echo agent.
// A single cooperative loop moves between on-hold, listening and playing,
// driven by toggle events and by the capture stop conditions (sustained
// silence or a full speech buffer). All hardware work happens a chunk at a
// time so toggles, faults and shutdown take effect at chunk boundaries.
package controller
