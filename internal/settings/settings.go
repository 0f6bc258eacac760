// Package settings holds the user's preference record.
package settings

import "context"

// UserSettings is the flat preference record exposed by /api/settings
type UserSettings struct {
	Theme       string `json:"theme" validate:"omitempty,oneof=light dark"`
	Currency    string `json:"currency"`
	PrivacyMode string `json:"privacy_mode" validate:"omitempty,oneof=private public"`

	// Accessibility
	HighContrast      bool   `json:"high_contrast"`
	LargeText         bool   `json:"large_text"`
	VoiceCommands     bool   `json:"voice_commands"`
	VoiceExplanation  bool   `json:"voice_explanation"`
	VibrationFeedback bool   `json:"vibration_feedback"`
	SimplifiedUI      bool   `json:"simplified_ui"`
	TextToSpeech      bool   `json:"text_to_speech"`
	FontType          string `json:"font_type"`
	FontSize          int    `json:"font_size" validate:"gte=0,lte=400"` // percent

	// Notifications
	EmailNotifications bool `json:"email_notifications"`
	PushNotifications  bool `json:"push_notifications"`
	SMSNotifications   bool `json:"sms_notifications"`

	Language string `json:"language"`

	// Security
	TwoFactorAuth  bool `json:"two_factor_auth"`
	BiometricLogin bool `json:"biometric_login"`

	// Display
	ShowBalance bool   `json:"show_balance"`
	DefaultView string `json:"default_view"`
}

// Defaults returns the settings of a fresh process
func Defaults() UserSettings {
	return UserSettings{
		Theme:             "light",
		Currency:          "INR",
		PrivacyMode:       "private",
		FontType:          "default",
		FontSize:          100,
		PushNotifications: true,
		Language:          "en",
		ShowBalance:       true,
		DefaultView:       "dashboard",
	}
}

// Store holds the single current settings record
type Store interface {
	// Get returns a copy of the current settings
	Get(ctx context.Context) (UserSettings, error)

	// Replace swaps the current settings wholesale
	Replace(ctx context.Context, s UserSettings) error
}
