package model

import (
	"testing"
)

func TestNewProjectTemplate(t *testing.T) {
	parts := []Part{
		NewPart("Side", 600, 400, 2, "white"),
		NewPart("Top", 500, 300, 1, "wood"),
	}
	tmpl := NewProjectTemplate("Wardrobe", "Standard wardrobe module", parts, DefaultNestingSettings())

	if tmpl.Name != "Wardrobe" {
		t.Errorf("expected name 'Wardrobe', got %q", tmpl.Name)
	}
	if tmpl.ID == "" {
		t.Error("expected non-empty ID")
	}
	if tmpl.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if len(tmpl.Parts) != 2 {
		t.Errorf("expected 2 parts, got %d", len(tmpl.Parts))
	}

	parts[0].Name = "Changed"
	if tmpl.Parts[0].Name != "Side" {
		t.Error("template parts must be a copy")
	}
}

func TestProjectTemplate_ToProject(t *testing.T) {
	parts := []Part{NewPart("Door", 700, 400, 2, "white")}
	parts[0].Grain = GrainVertical
	parts[0].EdgeBanding = EdgeBanding{Top: true, Bottom: true, Left: true, Right: true}
	tmpl := NewProjectTemplate("Doors", "", parts, DefaultNestingSettings())

	proj := tmpl.ToProject("Kitchen")
	if proj.Name != "Kitchen" {
		t.Errorf("expected project name 'Kitchen', got %q", proj.Name)
	}
	if len(proj.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(proj.Parts))
	}
	p := proj.Parts[0]
	if p.ID == tmpl.Parts[0].ID {
		t.Error("project part should have a fresh ID")
	}
	if p.Grain != GrainVertical || p.EdgeBanding.EdgeCount() != 4 || p.Material != "white" {
		t.Errorf("part attributes not carried over: %+v", p)
	}
}

func TestTemplateStore(t *testing.T) {
	store := NewTemplateStore()
	a := NewProjectTemplate("A", "", nil, DefaultNestingSettings())
	b := NewProjectTemplate("B", "", nil, DefaultNestingSettings())
	store.Add(a)
	store.Add(b)

	if got := store.Names(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("unexpected names %v", got)
	}
	if store.FindByName("B") == nil || store.FindByID(a.ID) == nil {
		t.Error("expected templates to be found")
	}
	if !store.Remove(a.ID) {
		t.Error("expected Remove to report success")
	}
	if store.Remove(a.ID) {
		t.Error("second Remove should report false")
	}
	if store.FindByName("A") != nil {
		t.Error("removed template still found")
	}
	if a.Parts == nil {
		t.Error("nil parts should become an empty slice")
	}
}
