package ui

import "animestudio/internal/api"

// NavigateMsg switches the app to another route.
type NavigateMsg struct {
	Route Route
}

// StartMsg is sent when the user presses Start on a ready status view.
type StartMsg struct{}

// QuitMsg stops the pollers and exits the program.
type QuitMsg struct{}

// InstallMsg asks the app to start an installation.
type InstallMsg struct {
	Scope api.InstallScope
}

// ShowModalMsg pushes a modal onto the overlay stack.
type ShowModalMsg struct {
	View View
}

// DismissModalMsg is sent when the user dismisses the top modal.
type DismissModalMsg struct{}

type statusSource int

const (
	statusFromStartup statusSource = iota
	statusFromPoll
	statusFromInstall
)

func (s statusSource) String() string {
	switch s {
	case statusFromStartup:
		return "startup"
	case statusFromPoll:
		return "poll"
	case statusFromInstall:
		return "install"
	}
	return "unknown"
}

// StatusLoadedMsg carries the result of a status fetch.
type StatusLoadedMsg struct {
	Source   statusSource
	Snapshot api.StatusSnapshot
	Err      error
}

// InstallStartedMsg carries the result of an install trigger.
type InstallStartedMsg struct {
	Scope api.InstallScope
	Ack   api.Ack
	Err   error
}

// CharactersLoadedMsg carries a character listing for the view identified by Owner.
type CharactersLoadedMsg struct {
	Owner      int64
	Characters []api.Character
	Err        error
}

// CharacterSavedMsg is the result of a create or update followed by a refresh.
// ListErr is set when the save succeeded but the refresh did not.
type CharacterSavedMsg struct {
	Owner      int64
	Updated    bool
	Character  api.Character
	Err        error
	Characters []api.Character
	ListErr    error
}

// EditCharacterMsg puts the character generator into edit mode.
type EditCharacterMsg struct {
	Owner     int64
	Character api.Character
}

// DeleteCharacterMsg is emitted once the user confirmed a delete.
type DeleteCharacterMsg struct {
	Owner int64
	ID    string
}

// CharacterDeletedMsg is the result of a delete followed by a refresh.
type CharacterDeletedMsg struct {
	Owner      int64
	ID         string
	Err        error
	Characters []api.Character
	ListErr    error
}

// SceneCreatedMsg carries a generated scene.
type SceneCreatedMsg struct {
	Owner int64
	Scene api.Scene
	Err   error
}

// ImageProbedMsg reports whether an image URL could be loaded.
type ImageProbedMsg struct {
	Owner int64
	Key   string
	URL   string
	Err   error
}
