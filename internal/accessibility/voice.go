package accessibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	ListenTimeout = 5 * time.Second
	PhraseLimit   = 5 * time.Second

	// pause before listening again after a silent window
	silenceBackoff = 250 * time.Millisecond

	notUnderstood = "Sorry, I didn't understand that command."
)

// ErrNoSpeech is returned by a Recognizer when nothing intelligible was heard
var ErrNoSpeech = errors.New("no speech recognized")

type commandPhrases struct {
	Name    string
	Phrases []string
}

// Checked in order; the first command with a phrase contained in the text wins
var commandTables = map[string][]commandPhrases{
	"en-IN": {
		{"dashboard", []string{"dashboard", "home", "main screen"}},
		{"transactions", []string{"transactions", "expenses", "spending"}},
		{"budget", []string{"budget", "budgeting", "spending plan"}},
		{"scan", []string{"scan", "scan receipt", "take photo"}},
		{"settings", []string{"settings", "preferences", "options"}},
		{"back", []string{"back", "go back", "previous"}},
		{"next", []string{"next", "forward", "continue"}},
	},
	"hi-IN": {
		{"dashboard", []string{"डैशबोर्ड", "होम", "मुख्य स्क्रीन"}},
		{"transactions", []string{"लेनदेन", "खर्च", "व्यय"}},
		{"budget", []string{"बजट", "बजटिंग", "खर्च योजना"}},
		{"scan", []string{"स्कैन", "रसीद स्कैन", "फोटो लें"}},
		{"settings", []string{"सेटिंग्स", "प्राथमिकताएं", "विकल्प"}},
		{"back", []string{"वापस", "पीछे जाओ", "पिछला"}},
		{"next", []string{"अगला", "आगे", "जारी रखें"}},
	},
}

// MatchCommand finds the navigation command named in text
func MatchCommand(text, language string) (string, bool) {
	table, ok := commandTables[NormalizeLanguage(language)]
	if !ok {
		table = commandTables[DefaultLanguage]
	}
	text = strings.ToLower(text)
	for _, c := range table {
		for _, phrase := range c.Phrases {
			if strings.Contains(text, phrase) {
				return c.Name, true
			}
		}
	}
	return "", false
}

// Command is a recognised voice command waiting to be handled
type Command struct {
	Name       string    `json:"command"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Recognizer captures one spoken phrase and returns its text
type Recognizer interface {
	Recognize(ctx context.Context, language string, listenTimeout, phraseLimit time.Duration) (string, error)
}

// VoiceCommands listens for navigation commands in the background and
// queues them for the client to collect
type VoiceCommands struct {
	recognizer Recognizer
	speaker    Speaker
	queue      chan Command
	now        func() time.Time

	mu       sync.Mutex
	language string
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewVoiceCommands creates a command processor. recognizer may be nil, in
// which case only submitted text is processed.
func NewVoiceCommands(recognizer Recognizer, speaker Speaker, language string, queueSize int) *VoiceCommands {
	if queueSize < 1 {
		queueSize = 1
	}
	return &VoiceCommands{
		recognizer: recognizer,
		speaker:    speaker,
		queue:      make(chan Command, queueSize),
		now:        time.Now,
		language:   NormalizeLanguage(language),
	}
}

// SetLanguage changes the recognition language
func (v *VoiceCommands) SetLanguage(language string) {
	v.mu.Lock()
	v.language = NormalizeLanguage(language)
	v.mu.Unlock()
}

func (v *VoiceCommands) currentLanguage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.language
}

// Submit processes recognised text. Matching commands are queued; anything
// else gets a spoken apology.
func (v *VoiceCommands) Submit(ctx context.Context, text string) (Command, bool) {
	language := v.currentLanguage()
	name, ok := MatchCommand(text, language)
	if !ok {
		if err := v.speaker.Speak(ctx, notUnderstood, language); err != nil {
			slog.Warn("Failed to speak voice command feedback", "error", err)
		}
		return Command{}, false
	}

	cmd := Command{Name: name, Text: strings.ToLower(text), ReceivedAt: v.now()}
	select {
	case v.queue <- cmd:
	default:
		slog.Warn("Voice command queue full, dropping command", "command", name)
	}
	return cmd, true
}

// Drain returns and clears all queued commands, oldest first
func (v *VoiceCommands) Drain() []Command {
	commands := make([]Command, 0, len(v.queue))
	for {
		select {
		case cmd := <-v.queue:
			commands = append(commands, cmd)
		default:
			return commands
		}
	}
}

// Listening reports whether the background loop is running
func (v *VoiceCommands) Listening() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cancel != nil
}

// Listen starts the background listening loop. It is a no-op when already
// listening or when no recognizer is configured.
func (v *VoiceCommands) Listen() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		return
	}
	if v.recognizer == nil {
		slog.Warn("Voice commands requested but no recognizer is configured")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.done = make(chan struct{})
	go v.loop(ctx, v.done)
	slog.Info("Listening for voice commands", "language", v.language)
}

func (v *VoiceCommands) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for ctx.Err() == nil {
		text, err := v.recognizer.Recognize(ctx, v.currentLanguage(), ListenTimeout, PhraseLimit)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, ErrNoSpeech):
			sleep(ctx, silenceBackoff)
			continue
		case err != nil:
			slog.Warn("Voice recognition failed", "error", err)
			sleep(ctx, time.Second)
			continue
		}
		slog.Debug("Recognized speech", "text", text)
		v.Submit(ctx, text)
	}
}

// Stop ends the listening loop, waiting briefly for it to exit
func (v *VoiceCommands) Stop() {
	v.mu.Lock()
	cancel, done := v.cancel, v.done
	v.cancel, v.done = nil, nil
	v.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("Voice listener did not stop in time")
	}
}

// CommandRecognizer delegates recognition to an external program. The
// program gets the language as its last argument and prints the recognised
// text on stdout; empty output means nothing was heard.
type CommandRecognizer struct {
	name string
	args []string
}

// NewCommandRecognizer parses a command line such as "vosk-listen --model small"
func NewCommandRecognizer(commandLine string) (*CommandRecognizer, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("recognizer command is empty")
	}
	return &CommandRecognizer{name: fields[0], args: fields[1:]}, nil
}

// Recognize runs the program once, bounded by the listen and phrase timeouts
func (c *CommandRecognizer) Recognize(ctx context.Context, language string, listenTimeout, phraseLimit time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, listenTimeout+phraseLimit)
	defer cancel()

	args := append(append([]string(nil), c.args...), language)
	out, err := exec.CommandContext(ctx, c.name, args...).Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrNoSpeech
		}
		return "", fmt.Errorf("running recognizer: %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
