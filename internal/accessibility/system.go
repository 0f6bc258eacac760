package accessibility

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// commandRunner runs an external program to completion
type commandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const (
	defaultLEDPath = "/sys/class/leds/vibrator/activate"
	pulseGap       = 100 * time.Millisecond
)

// SystemVibrator approximates vibration with whatever the host offers: an
// attached Android device or a sysfs vibrator on Linux, and alert sounds on
// macOS and Windows.
type SystemVibrator struct {
	goos     string
	ledPath  string
	lookPath func(string) (string, error)
	run      commandRunner
}

// NewSystemVibrator creates a vibrator for the running OS
func NewSystemVibrator() *SystemVibrator {
	return &SystemVibrator{
		goos:     runtime.GOOS,
		ledPath:  defaultLEDPath,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

// Vibrate plays pulses, alternating on and off
func (v *SystemVibrator) Vibrate(ctx context.Context, pulses []time.Duration) error {
	switch v.goos {
	case "linux", "android":
		if _, err := v.lookPath("adb"); err == nil {
			return v.vibrateADB(ctx, pulses)
		}
		return v.vibrateLED(ctx, pulses)
	case "darwin":
		return v.perPulse(ctx, pulses, func(ctx context.Context, d time.Duration) error {
			if err := v.run(ctx, "osascript", "-e", `tell application "System Events" to play sound "Funk"`); err != nil {
				return err
			}
			return sleep(ctx, d)
		})
	case "windows":
		return v.perPulse(ctx, pulses, func(ctx context.Context, d time.Duration) error {
			script := fmt.Sprintf("[System.Media.SystemSounds]::Exclamation.Play(); Start-Sleep -Milliseconds %d", d.Milliseconds())
			return v.run(ctx, "powershell", "-NoProfile", "-Command", script)
		})
	default:
		return fmt.Errorf("vibration not supported on %s", v.goos)
	}
}

func (v *SystemVibrator) vibrateADB(ctx context.Context, pulses []time.Duration) error {
	values := make([]string, len(pulses))
	for i, p := range pulses {
		values[i] = strconv.FormatInt(p.Milliseconds(), 10)
	}
	broadcast := "am broadcast -a android.intent.action.VIBRATE -e pattern " + strings.Join(values, ",")
	return v.run(ctx, "adb", "shell", broadcast)
}

func (v *SystemVibrator) vibrateLED(ctx context.Context, pulses []time.Duration) error {
	return v.perPulse(ctx, pulses, func(ctx context.Context, d time.Duration) error {
		if err := os.WriteFile(v.ledPath, []byte("1"), 0644); err != nil {
			return fmt.Errorf("activating vibrator: %w", err)
		}
		waitErr := sleep(ctx, d)
		if err := os.WriteFile(v.ledPath, []byte("0"), 0644); err != nil {
			return fmt.Errorf("deactivating vibrator: %w", err)
		}
		return waitErr
	})
}

// perPulse plays every pulse with a short gap between them
func (v *SystemVibrator) perPulse(ctx context.Context, pulses []time.Duration, play func(context.Context, time.Duration) error) error {
	for i, d := range pulses {
		if i > 0 {
			if err := sleep(ctx, pulseGap); err != nil {
				return err
			}
		}
		if err := play(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Speaker reads text aloud
type Speaker interface {
	Speak(ctx context.Context, text, language string) error
}

// SystemSpeaker uses the host's speech synthesiser: espeak-ng or espeak on
// Linux, say on macOS and SAPI through PowerShell on Windows.
type SystemSpeaker struct {
	goos     string
	lookPath func(string) (string, error)
	run      commandRunner
}

// NewSystemSpeaker creates a speaker for the running OS
func NewSystemSpeaker() *SystemSpeaker {
	return &SystemSpeaker{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

// Speak blocks until the text has been spoken
func (s *SystemSpeaker) Speak(ctx context.Context, text, language string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	voice := strings.ToLower(strings.SplitN(language, "-", 2)[0])

	switch s.goos {
	case "linux":
		for _, name := range []string{"espeak-ng", "espeak"} {
			if _, err := s.lookPath(name); err == nil {
				return s.run(ctx, name, "-v", voice, "--", text)
			}
		}
		return fmt.Errorf("no speech synthesiser found: install espeak-ng")
	case "darwin":
		return s.run(ctx, "say", "--", text)
	case "windows":
		script := "Add-Type -AssemblyName System.Speech; " +
			"(New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak('" +
			strings.ReplaceAll(text, "'", "''") + "')"
		return s.run(ctx, "powershell", "-NoProfile", "-Command", script)
	default:
		return fmt.Errorf("speech not supported on %s", s.goos)
	}
}
