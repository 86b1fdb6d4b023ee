package ffg

import (
	"ffg-go/internal/model"
)

// Seed role ids.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// DefaultRoles returns the three built-in roles.
func DefaultRoles() []model.Role {
	return []model.Role{
		{
			ID:   RoleAdmin,
			Name: "Administrator",
			Permissions: map[model.Action]bool{
				model.ActionRead:    true,
				model.ActionWrite:   true,
				model.ActionDelete:  true,
				model.ActionEncrypt: true,
			},
		},
		{
			ID:   RoleEditor,
			Name: "Editor",
			Permissions: map[model.Action]bool{
				model.ActionRead:    true,
				model.ActionWrite:   true,
				model.ActionDelete:  false,
				model.ActionEncrypt: false,
			},
		},
		{
			ID:   RoleViewer,
			Name: "Viewer",
			Permissions: map[model.Action]bool{
				model.ActionRead:    true,
				model.ActionWrite:   false,
				model.ActionDelete:  false,
				model.ActionEncrypt: false,
			},
		},
	}
}

// SeedTree returns the bootstrap tree installed on first run: the root, two
// folders, a readme, an image and a pdf.
func SeedTree(clock Clock) *Tree {
	now := clock.Now()
	records := []*model.FileRecord{
		{ID: model.RootID, Name: "Root", Kind: model.KindFolder, ModifiedAt: now, ParentID: model.NoParent},
		{ID: "documents", Name: "Documents", Kind: model.KindFolder, ModifiedAt: now, ParentID: model.RootID},
		{ID: "images", Name: "Images", Kind: model.KindFolder, ModifiedAt: now, ParentID: model.RootID},
		{
			ID:         "readme",
			Name:       "README.md",
			Kind:       model.KindDocument,
			Size:       1024,
			ModifiedAt: now,
			Content:    model.StringPtr("# File Forge Guardian\n\nA secure file management system"),
			ParentID:   model.RootID,
		},
		{ID: "profile", Name: "profile.jpg", Kind: model.KindImage, Size: 5242880, ModifiedAt: now, ParentID: "images"},
		{ID: "report", Name: "Annual Report.pdf", Kind: model.KindPDF, Size: 3145728, ModifiedAt: now, ParentID: "documents"},
	}
	tree, err := build(records, 0)
	if err != nil {
		panic("ffg: invalid seed tree: " + err.Error())
	}
	return tree
}
