package api

import (
	"fmt"
	"io"
)

// Character is a user-authored persona held by the backend.
// References and ImageURL are paths relative to the image host.
type Character struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	References  []string  `json:"references"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// FirstReference returns the first reference image path, or "" if there is none.
func (c Character) FirstReference() string {
	if len(c.References) == 0 {
		return ""
	}
	return c.References[0]
}

// WasUpdated reports whether the record changed after it was created.
func (c Character) WasUpdated() bool {
	return !c.UpdatedAt.Equal(c.CreatedAt)
}

// Scene is a generated image of a character within a plot description.
type Scene struct {
	ID              string    `json:"id"`
	CharacterID     string    `json:"character_id"`
	PlotDescription string    `json:"plot_description"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       Timestamp `json:"created_at"`
}

// SceneRequest is the JSON body of POST /scenes.
type SceneRequest struct {
	CharacterID     string `json:"character_id"`
	PlotDescription string `json:"plot_description"`
}

// ImageUpload is a file sent as one multipart part.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// CharacterInput is the form submitted on create and update.
// Image is optional.
type CharacterInput struct {
	Description string
	Image       *ImageUpload
}

// Ack is the acknowledgement body returned by install and delete.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// InstallScope selects what POST /dependencies/install installs.
type InstallScope string

const (
	ScopeAll          InstallScope = "all"
	ScopeDependencies InstallScope = "dependencies"
	ScopeModels       InstallScope = "models"
)

// Valid reports whether s is one of the scopes the backend understands.
func (s InstallScope) Valid() bool {
	switch s {
	case ScopeAll, ScopeDependencies, ScopeModels:
		return true
	}
	return false
}

// ParseInstallScope converts a user-supplied string to a scope.
// The empty string means ScopeAll.
func ParseInstallScope(s string) (InstallScope, error) {
	if s == "" {
		return ScopeAll, nil
	}
	scope := InstallScope(s)
	if !scope.Valid() {
		return "", fmt.Errorf("%w: %q (want all, dependencies or models)", ErrInvalidScope, s)
	}
	return scope, nil
}
