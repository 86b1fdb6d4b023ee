package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ffg-go/internal/app"
	"ffg-go/internal/ffg"
	"ffg-go/internal/model"
	"ffg-go/internal/transform"
)

func printRecord(f *model.FileRecord) {
	flags := ""
	if f.IsEncrypted {
		flags = " [encrypted]"
	}
	size := "-"
	if !f.IsFolder() {
		size = transform.FormatSize(f.Size)
	}
	fmt.Printf("%-8s  %10s  %s  %-36s  %s%s\n",
		f.Kind,
		size,
		f.ModifiedAt.Local().Format("2006-01-02 15:04"),
		f.ID,
		f.Name,
		flags,
	)
}

func breadcrumbPath(nav *ffg.Navigator, id string) string {
	crumbs := nav.Breadcrumb(id)
	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	return strings.Join(names, "/")
}

var lsCmd = &cobra.Command{
	Use:   "ls [ID]",
	Short: "List a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp("ls", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		nav := a.Service().Navigator()
		if len(args) > 0 {
			f, ok := a.Service().GetFile(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", ffg.ErrNotFound, args[0])
			}
			if !f.IsFolder() {
				printRecord(f)
				return nil
			}
			nav.Navigate(f.ID)
		}

		files := nav.CurrentFiles()
		fmt.Printf("%s (%d item(s))\n", breadcrumbPath(nav, nav.CurrentDirectory()), len(files))
		for _, f := range files {
			printRecord(f)
		}
		return nil
	}),
}

var treeCmd = &cobra.Command{
	Use:   "tree [ID]",
	Short: "Show the folder hierarchy",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp("tree", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		id := model.RootID
		if len(args) > 0 {
			id = args[0]
		}
		node, err := app.BuildExport(a.Service().Tree(), id)
		if err != nil {
			return err
		}
		printTree(node, "", true, true)
		return nil
	}),
}

func printTree(n *app.ExportNode, prefix string, last, top bool) {
	label := n.Name
	if n.Type == model.KindFolder {
		label += "/"
	}
	switch {
	case top:
		fmt.Println(label)
	case last:
		fmt.Printf("%s└── %s\n", prefix, label)
		prefix += "    "
	default:
		fmt.Printf("%s├── %s\n", prefix, label)
		prefix += "│   "
	}
	for i, c := range n.Children {
		printTree(c, prefix, i == len(n.Children)-1, false)
	}
}

var statCmd = &cobra.Command{
	Use:   "stat ID",
	Short: "Show every attribute of a record",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("stat", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		f, ok := a.Service().GetFile(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", ffg.ErrNotFound, args[0])
		}
		fmt.Printf("ID:          %s\n", f.ID)
		fmt.Printf("Name:        %s\n", f.Name)
		fmt.Printf("Path:        %s\n", breadcrumbPath(a.Service().Navigator(), f.ID))
		fmt.Printf("Kind:        %s\n", f.Kind)
		fmt.Printf("Size:        %s (%d bytes)\n", transform.FormatSize(f.Size), f.Size)
		fmt.Printf("Modified:    %s\n", f.ModifiedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Encrypted:   %t\n", f.IsEncrypted)
		fmt.Printf("Permissions: %s\n", f.Permissions)
		fmt.Printf("Owner:       %s\n", f.Owner)
		if f.OriginalID != "" {
			fmt.Printf("Original:    %s\n", f.OriginalID)
		}
		if f.HasContent() {
			fmt.Printf("Content:     %d line(s)\n", strings.Count(f.Text(), "\n")+1)
		}
		return nil
	}),
}

var catCmd = &cobra.Command{
	Use:   "cat ID",
	Short: "Print a record's content",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("cat", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		if !a.Service().CheckAccess(args[0], model.ActionRead) {
			return fmt.Errorf("%w: cannot read %s", ffg.ErrPermissionDenied, args[0])
		}
		f, ok := a.Service().GetFile(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", ffg.ErrNotFound, args[0])
		}
		fmt.Println(f.Text())
		return nil
	}),
}

var findCmd = &cobra.Command{
	Use:   "find TERM",
	Short: "Search every record by name",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("find", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		nav := a.Service().Navigator()
		nav.SetSearchTerm(args[0])
		matches := nav.Search()
		if len(matches) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, f := range matches {
			fmt.Printf("%-36s  %s\n", f.ID, breadcrumbPath(nav, f.ID))
		}
		return nil
	}),
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir NAME",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("mkdir", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		f, err := a.Service().Create(ctx, ffg.NewFile{Name: args[0], Kind: model.KindFolder, ParentID: parent, Owner: a.Actor().Name})
		if f != nil {
			fmt.Println(f.ID)
		}
		return err
	}),
}

var touchCmd = &cobra.Command{
	Use:   "touch NAME",
	Short: "Create a file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("touch", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		nf := ffg.NewFile{Name: args[0], ParentID: parent, Owner: a.Actor().Name}
		if cmd.Flags().Changed("content") {
			content, _ := cmd.Flags().GetString("content")
			nf.Content = &content
		}
		f, err := a.Service().Create(ctx, nf)
		if f != nil {
			fmt.Println(f.ID)
		}
		return err
	}),
}

var renameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a record",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("rename", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().Rename(ctx, args[0], args[1])
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit ID CONTENT",
	Short: "Replace a file's content",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("edit", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().EditContent(ctx, args[0], args[1])
	}),
}

var rmCmd = &cobra.Command{
	Use:   "rm ID...",
	Short: "Delete records and everything below them",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp("rm", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().Delete(ctx, args)
	}),
}

var mvCmd = &cobra.Command{
	Use:   "mv TARGET ID...",
	Short: "Move records into a folder",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp("mv", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().Move(ctx, args[1:], args[0])
	}),
}

var cpCmd = &cobra.Command{
	Use:   "cp TARGET ID...",
	Short: "Copy records into a folder",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp("cp", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().Copy(ctx, args[1:], args[0])
	}),
}

func addFileCommands(root *cobra.Command) {
	mkdirCmd.Flags().StringP("parent", "p", model.RootID, "Parent folder id")
	touchCmd.Flags().StringP("parent", "p", model.RootID, "Parent folder id")
	touchCmd.Flags().StringP("content", "c", "", "Initial text content")

	root.AddCommand(lsCmd, treeCmd, statCmd, catCmd, findCmd)
	root.AddCommand(mkdirCmd, touchCmd, renameCmd, editCmd, rmCmd, mvCmd, cpCmd)
}
