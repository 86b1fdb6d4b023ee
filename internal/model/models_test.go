package model

import "testing"

func TestFileRecord_Clone(t *testing.T) {
	orig := &FileRecord{ID: "a", Name: "a.txt", Kind: KindDocument, Content: StringPtr("hello")}

	c := orig.Clone()
	*c.Content = "changed"
	c.Name = "b.txt"

	if orig.Text() != "hello" {
		t.Errorf("original content = %q, want %q", orig.Text(), "hello")
	}
	if orig.Name != "a.txt" {
		t.Errorf("original name = %q, want %q", orig.Name, "a.txt")
	}
}

func TestFileRecord_HasContent(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    bool
	}{
		{name: "absent", content: nil, want: false},
		{name: "empty", content: StringPtr(""), want: false},
		{name: "present", content: StringPtr("x"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FileRecord{Content: tt.content}
			if got := f.HasContent(); got != tt.want {
				t.Errorf("HasContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("Valid(%q) = false, want true", k)
		}
	}
	if Kind("spreadsheet").Valid() {
		t.Error("Valid(spreadsheet) = true, want false")
	}
}

func TestRole_Allows(t *testing.T) {
	r := &Role{ID: "editor", Permissions: map[Action]bool{ActionRead: true, ActionWrite: true}}

	if !r.Allows(ActionWrite) {
		t.Error("Allows(write) = false, want true")
	}
	if r.Allows(ActionDelete) {
		t.Error("Allows(delete) = true, want false")
	}
	if r.Allows(Action("share")) {
		t.Error("Allows(share) = true for missing action, want false")
	}
}
