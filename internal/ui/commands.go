package ui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
)

// fetchStatusCmd reads the current installation snapshot.
func fetchStatusCmd(svc *Services, source statusSource) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := svc.requestContext()
		defer cancel()
		snap, err := svc.Backend.Status(ctx)
		return StatusLoadedMsg{Source: source, Snapshot: snap, Err: err}
	}
}

// installCmd triggers a background installation on the server.
func installCmd(svc *Services, scope api.InstallScope) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := svc.requestContext()
		defer cancel()
		ack, err := svc.Backend.Install(ctx, scope)
		return InstallStartedMsg{Scope: scope, Ack: ack, Err: err}
	}
}

// loadCharactersCmd lists characters for the view identified by owner.
func loadCharactersCmd(svc *Services, owner int64) tea.Cmd {
	return func() tea.Msg {
		chars, err := listCharacters(svc)
		return CharactersLoadedMsg{Owner: owner, Characters: chars, Err: err}
	}
}

func listCharacters(svc *Services) ([]api.Character, error) {
	ctx, cancel := svc.requestContext()
	defer cancel()
	return svc.Backend.ListCharacters(ctx)
}

// characterForm is what the generator submits. An empty ImagePath sends no file.
type characterForm struct {
	Description string
	ImagePath   string
}

// saveCharacterCmd creates a character (id == "") or updates one, then
// refreshes the listing so the view settles in a single step.
func saveCharacterCmd(svc *Services, owner int64, id string, form characterForm) tea.Cmd {
	return func() tea.Msg {
		msg := CharacterSavedMsg{Owner: owner, Updated: id != ""}

		in := api.CharacterInput{Description: form.Description}
		if form.ImagePath != "" {
			f, err := os.Open(form.ImagePath)
			if err != nil {
				msg.Err = fmt.Errorf("open image: %w", err)
				return msg
			}
			defer f.Close()
			in.Image = &api.ImageUpload{Filename: form.ImagePath, Content: f}
		}

		ctx, cancel := svc.requestContext()
		if id == "" {
			msg.Character, msg.Err = svc.Backend.CreateCharacter(ctx, in)
		} else {
			msg.Character, msg.Err = svc.Backend.UpdateCharacter(ctx, id, in)
		}
		cancel()
		if msg.Err != nil {
			return msg
		}
		msg.Characters, msg.ListErr = listCharacters(svc)
		return msg
	}
}

// deleteCharacterCmd deletes a character and refreshes the listing.
func deleteCharacterCmd(svc *Services, owner int64, id string) tea.Cmd {
	return func() tea.Msg {
		msg := CharacterDeletedMsg{Owner: owner, ID: id}
		ctx, cancel := svc.requestContext()
		msg.Err = svc.Backend.DeleteCharacter(ctx, id)
		cancel()
		if api.IsNotFound(msg.Err) {
			svc.logger().Warn("character already deleted", "id", id)
			msg.Err = nil
		}
		if msg.Err != nil {
			return msg
		}
		msg.Characters, msg.ListErr = listCharacters(svc)
		return msg
	}
}

// createSceneCmd generates one scene.
func createSceneCmd(svc *Services, owner int64, req api.SceneRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := svc.requestContext()
		defer cancel()
		scene, err := svc.Backend.CreateScene(ctx, req)
		return SceneCreatedMsg{Owner: owner, Scene: scene, Err: err}
	}
}

// probeImageCmd checks that url can be fetched.
func probeImageCmd(svc *Services, owner int64, key, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := svc.requestContext()
		defer cancel()
		return ImageProbedMsg{Owner: owner, Key: key, URL: url, Err: svc.Backend.ProbeImage(ctx, url)}
	}
}
