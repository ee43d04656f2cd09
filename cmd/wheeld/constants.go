package main

// Linux input event constants (from input-event-codes.h)
const (
	EV_KEY = 0x01

	KEY_ESC   = 1
	KEY_Q     = 16
	KEY_T     = 20
	KEY_P     = 25
	KEY_S     = 31
	KEY_SPACE = 57
	KEY_LEFT  = 105
	KEY_RIGHT = 106

	evValuePress = 1
)

// Daemon defaults
const (
	defaultTickHz        = 120
	defaultHistorySize   = 45
	defaultSimulateSpins = 45
	defaultPointerAngle  = 270.0 // pointer at the top of the screen
	defaultSegments      = 54
)
