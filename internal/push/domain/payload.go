package domain

import "strings"

// Defaults applied to every outgoing notification that leaves a field unset
const (
	DefaultIcon  = "/pwa-192x192.png"
	DefaultBadge = "/badge.png"
	DefaultURL   = "/"
	DefaultTag   = "habitflow-notification"
)

// DefaultVibrate is the standard short buzz sequence
var DefaultVibrate = []int{200, 100, 200}

// Payload is the notification content sent to every endpoint. Not persisted.
type Payload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Icon    string `json:"icon,omitempty"`
	Badge   string `json:"badge,omitempty"`
	URL     string `json:"url,omitempty"`
	Vibrate []int  `json:"vibrate,omitempty"`
	Tag     string `json:"tag,omitempty"`
}

// Validate requires title and body
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title", `payload must contain at least "title" and "body"`)
	}
	if strings.TrimSpace(p.Body) == "" {
		return NewValidationError("body", `payload must contain at least "title" and "body"`)
	}
	return nil
}

// WithDefaults returns a copy with every optional field filled in
func (p Payload) WithDefaults() Payload {
	if p.Icon == "" {
		p.Icon = DefaultIcon
	}
	if p.Badge == "" {
		p.Badge = DefaultBadge
	}
	if p.URL == "" {
		p.URL = DefaultURL
	}
	if len(p.Vibrate) == 0 {
		p.Vibrate = append([]int(nil), DefaultVibrate...)
	}
	if p.Tag == "" {
		p.Tag = DefaultTag
	}
	return p
}
