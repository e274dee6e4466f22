package biostate

import "strings"

// lifecycle tracks one bio from generation through editing.
// originalText is the generator output; editedText is the edit buffer and
// only diverges from bio.Headlines while editing.
type lifecycle struct {
	state        State
	bio          *SmartBio
	originalText []string
	editedText   []string
	lastError    string
	token        uint64
}

// begin enters generating and returns the token the result must present.
// A request made while generating supersedes the one in flight. Open edits
// must be saved or cancelled first.
func (l *lifecycle) begin() (uint64, error) {
	if l.state == StateEditing {
		return 0, ErrUnsavedEdits
	}
	l.token++
	l.state = StateGenerating
	return l.token, nil
}

func (l *lifecycle) current(token uint64) bool {
	return token == l.token
}

func (l *lifecycle) complete(bio *SmartBio) {
	l.bio = bio
	l.originalText = cloneStrings(bio.Headlines)
	l.editedText = cloneStrings(bio.Headlines)
	l.lastError = ""
	l.state = StateDisplayed
}

func (l *lifecycle) fail(msg string) {
	l.lastError = msg
	l.state = StateErrored
}

func (l *lifecycle) beginEdit() error {
	if l.state == StateGenerating {
		return ErrGenerating
	}
	if l.bio == nil || (l.state != StateDisplayed && l.state != StateEditing) {
		return ErrNoActiveBio
	}
	if l.state == StateDisplayed {
		l.editedText = cloneStrings(l.bio.Headlines)
		l.state = StateEditing
	}
	return nil
}

func (l *lifecycle) editSentence(index int, text string) error {
	if l.state != StateEditing {
		return ErrNotEditing
	}
	if index < 0 || index >= len(l.editedText) {
		return ErrSentenceIndex
	}
	l.editedText[index] = text
	return nil
}

func (l *lifecycle) setEdited(sentences []string) error {
	if l.state != StateEditing {
		return ErrNotEditing
	}
	l.editedText = cloneStrings(sentences)
	return nil
}

// save commits the buffer. Sentences blanked out during editing are dropped.
func (l *lifecycle) save() error {
	if l.state != StateEditing {
		return ErrNotEditing
	}
	committed := make([]string, 0, len(l.editedText))
	for _, s := range l.editedText {
		if s = strings.TrimSpace(s); s != "" {
			committed = append(committed, s)
		}
	}
	if len(committed) == 0 {
		return ErrEmptyBio
	}
	l.bio.Headlines = committed
	l.editedText = cloneStrings(committed)
	l.state = StateDisplayed
	return nil
}

func (l *lifecycle) cancel() error {
	if l.state != StateEditing {
		return ErrNotEditing
	}
	l.editedText = cloneStrings(l.bio.Headlines)
	l.state = StateDisplayed
	return nil
}

// reset reverts to the generator output, discarding saved edits too.
func (l *lifecycle) reset() error {
	if l.state == StateGenerating {
		return ErrGenerating
	}
	if l.bio == nil || (l.state != StateDisplayed && l.state != StateEditing) {
		return ErrNoActiveBio
	}
	l.bio.Headlines = cloneStrings(l.originalText)
	l.editedText = cloneStrings(l.originalText)
	l.state = StateDisplayed
	return nil
}
