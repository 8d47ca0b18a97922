package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"animestudio/internal/api"
)

func TestSortCharacters_NewestFirstWithoutMutation(t *testing.T) {
	in := []api.Character{
		{ID: "t1", CreatedAt: ts("2025-01-01T09:00:00")},
		{ID: "t3", CreatedAt: ts("2025-03-01T09:00:00")},
		{ID: "t2", CreatedAt: ts("2025-02-01T09:00:00.123456")},
	}
	got := SortCharacters(in)

	var ids []string
	for _, ch := range got {
		ids = append(ids, ch.ID)
	}
	if strings.Join(ids, ",") != "t3,t2,t1" {
		t.Errorf("order = %v, want t3,t2,t1", ids)
	}
	if in[0].ID != "t1" || in[1].ID != "t3" || in[2].ID != "t2" {
		t.Error("input slice was reordered")
	}
}

func TestSortCharacters_StableAndUnparsedLast(t *testing.T) {
	in := []api.Character{
		{ID: "bad", CreatedAt: ts("yesterday")},
		{ID: "a", CreatedAt: ts("2025-01-01T09:00:00")},
		{ID: "b", CreatedAt: ts("2025-01-01T09:00:00")},
	}
	got := SortCharacters(in)
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "bad" {
		t.Errorf("order = %s,%s,%s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestCharacterList_View(t *testing.T) {
	l := NewCharacterListView(newServices(&fakeBackend{}), 1)
	if !strings.Contains(l.View(), "No characters yet") {
		t.Error("empty list should say so")
	}

	long := strings.Repeat("x", 120)
	l.SetCharacters([]api.Character{
		{ID: "a", Description: long, CreatedAt: ts("2025-01-01T09:00:00"), UpdatedAt: ts("2025-01-01T09:00:00")},
		{ID: "b", Description: "edited", CreatedAt: ts("2024-01-01T09:00:00"), UpdatedAt: ts("2024-06-01T09:00:00")},
	})
	out := l.View()
	if !strings.Contains(out, strings.Repeat("x", 100)+"...") || strings.Contains(out, strings.Repeat("x", 101)) {
		t.Error("description should be cut at 100 characters")
	}
	if strings.Count(out, "Updated:") != 1 {
		t.Errorf("only the edited card should show an updated time:\n%s", out)
	}
}

func TestCharacterList_ImageFallsBackOnce(t *testing.T) {
	b := &fakeBackend{brokenImages: map[string]bool{"http://img.test/uploads/a.png": true}}
	l := NewCharacterListView(newServices(b), 7)

	msgs := collect(l.SetCharacters([]api.Character{{ID: "a", ImageURL: "/uploads/a.png"}}))
	probes := only[ImageProbedMsg](msgs)
	if len(probes) != 1 || probes[0].Err == nil {
		t.Fatalf("expected one failed probe, got %#v", msgs)
	}
	l.Update(probes[0])
	if got := l.Image("a").Src(); got != placeholderCharacter {
		t.Fatalf("Src = %q, want placeholder", got)
	}
	if l.Image("a").OnError() {
		t.Error("fallback fired twice")
	}

	// A refresh with the same URL must not probe again.
	if cmd := l.SetCharacters([]api.Character{{ID: "a", ImageURL: "/uploads/a.png"}}); cmd != nil {
		t.Error("unchanged image must not be re-probed")
	}
	if len(b.probes) != 1 {
		t.Errorf("probes = %v", b.probes)
	}
}

func TestCharacterList_Keys(t *testing.T) {
	l := NewCharacterListView(newServices(&fakeBackend{}), 3)
	l.OnEdit = func(ch api.Character) tea.Msg { return EditCharacterMsg{Owner: 3, Character: ch} }
	l.OnDelete = func(id string) tea.Msg { return DeleteCharacterMsg{Owner: 3, ID: id} }
	l.SetCharacters([]api.Character{
		{ID: "new", Description: "newest one", CreatedAt: ts("2025-02-01T00:00:00")},
		{ID: "old", Description: "the full description of the oldest", CreatedAt: ts("2025-01-01T00:00:00")},
	})

	if _, cmd := l.Update(keyMsg("j")); cmd != nil || l.Cursor != 0 {
		t.Fatal("unfocused list must ignore keys")
	}
	l.Focused = true
	l.Update(keyMsg("j"))
	l.Update(keyMsg("j"))
	if l.Cursor != 1 {
		t.Fatalf("Cursor = %d, want 1", l.Cursor)
	}

	_, cmd := l.Update(keyMsg("e"))
	edit, ok := cmd().(EditCharacterMsg)
	if !ok || edit.Character.ID != "old" {
		t.Errorf("e: got %#v", edit)
	}

	_, cmd = l.Update(keyMsg("x"))
	show, ok := cmd().(ShowModalMsg)
	if !ok {
		t.Fatal("x should open a confirm modal")
	}
	modal := show.View.(*ConfirmModal)
	if modal.Label != "the full description of the oldest" {
		t.Errorf("modal label = %q", modal.Label)
	}
	del, ok := modal.OnConfirm().(DeleteCharacterMsg)
	if !ok || del.ID != "old" {
		t.Errorf("confirm produced %#v", del)
	}
}
