package reload

import "markestedt/reloadbridge/platform"

func down(k platform.Key) platform.KeyEvent { return platform.KeyEvent{Key: k, Phase: platform.Down} }
func up(k platform.Key) platform.KeyEvent   { return platform.KeyEvent{Key: k, Phase: platform.Up} }

// ChatSequence returns the complete keystroke batch that pastes the clipboard
// into the game's chat line and submits it. The order is significant and the
// batch is built in full before anything is dispatched.
func ChatSequence(restoreFocusElsewhere bool) []platform.KeyEvent {
	seq := make([]platform.KeyEvent, 0, 22)

	// open chat
	seq = append(seq, platform.Press(platform.KeyEnter)...)

	// ctrl+a over whatever is already typed, then ctrl+v
	seq = append(seq, down(platform.KeyControl))
	seq = append(seq, platform.Press(platform.KeyA)...)
	seq = append(seq, platform.Press(platform.KeyV)...)
	seq = append(seq, up(platform.KeyControl))

	// send
	seq = append(seq, platform.Press(platform.KeyEnter)...)

	// Reopen chat, walk back past the command we just sent and close it again,
	// leaving the chat box the way the player left it.
	seq = append(seq, platform.Press(platform.KeyEnter)...)
	seq = append(seq, platform.Press(platform.KeyUp)...)
	seq = append(seq, platform.Press(platform.KeyUp)...)
	seq = append(seq, platform.Press(platform.KeyEscape)...)

	if restoreFocusElsewhere {
		seq = append(seq, down(platform.KeyAlt))
		seq = append(seq, platform.Press(platform.KeyTab)...)
		seq = append(seq, up(platform.KeyAlt))
	}

	return seq
}
