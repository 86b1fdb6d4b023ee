package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"ffg-go/internal/app"
	"ffg-go/internal/model"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt ID",
	Short: "Encrypt a file's content with a passphrase",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("encrypt", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		passphrase, err := readNewPassphrase("File passphrase: ")
		if err != nil {
			return err
		}
		return a.Service().EncryptFile(ctx, args[0], passphrase)
	}),
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt ID",
	Short: "Decrypt a file's content",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("decrypt", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		passphrase, err := readPassphrase("File passphrase: ")
		if err != nil {
			return err
		}
		return a.Service().DecryptFile(ctx, args[0], passphrase)
	}),
}

var chmodCmd = &cobra.Command{
	Use:   "chmod ID MODE",
	Short: "Set a record's permission string (e.g. 644 or rw-r--r--)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("chmod", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().ChangePermissions(ctx, args[0], args[1])
	}),
}

var backupCmd = &cobra.Command{
	Use:   "backup ID",
	Short: "Create a .bak copy next to a file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("backup", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		f, err := a.Service().BackupFile(ctx, args[0])
		if f != nil {
			fmt.Println(f.ID)
		}
		return err
	}),
}

var compressCmd = &cobra.Command{
	Use:   "compress ID",
	Short: "Create a .gz archive of a file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("compress", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		f, err := a.Service().CompressFile(ctx, args[0])
		if f != nil {
			fmt.Println(f.ID)
		}
		return err
	}),
}

var decompressCmd = &cobra.Command{
	Use:   "decompress ID",
	Short: "Extract an archive created by compress",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("decompress", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		f, err := a.Service().DecompressFile(ctx, args[0])
		if f != nil {
			fmt.Println(f.ID)
		}
		return err
	}),
}

var clearCmd = &cobra.Command{
	Use:   "clear ID",
	Short: "Empty a file's content",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("clear", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().ClearContent(ctx, args[0])
	}),
}

var sortCmd = &cobra.Command{
	Use:   "sort ID",
	Short: "Sort a file's lines",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("sort", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		return a.Service().SortContent(ctx, args[0])
	}),
}

var grepCmd = &cobra.Command{
	Use:   "grep ID TERM",
	Short: "Search a file's lines, case-insensitively",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("grep", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		lines := a.Service().SearchContent(args[0], args[1])
		if len(lines) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Copy a host directory into the tree",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("import", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		res, err := a.Import(ctx, absPath, parent)
		if res != nil {
			fmt.Printf("Imported %d folder(s) and %d file(s)", res.Folders, res.Files)
			if res.Skipped > 0 {
				fmt.Printf(", skipped %d", res.Skipped)
			}
			fmt.Println()
		}
		return err
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the operation journal",
	RunE: withApp("history", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := a.History(ctx, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("#%d  %s  %-12s  %s\n",
				e.ID,
				e.At.Local().Format("2006-01-02 15:04:05"),
				e.Operation,
				e.Detail,
			)
		}
		return nil
	}),
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List roles and their permissions",
	RunE: withApp("roles", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		actor := a.Actor()
		for _, r := range a.Roles() {
			var actions []string
			for action, allowed := range r.Permissions {
				if allowed {
					actions = append(actions, string(action))
				}
			}
			slices.Sort(actions)

			marker := " "
			if r.ID == actor.RoleID {
				marker = "*"
			}
			fmt.Printf("%s %-8s %-15s %s\n", marker, r.ID, r.Name, strings.Join(actions, ","))
		}
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export [ID]",
	Short: "Write the tree as JSON or YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp("export", func(ctx context.Context, cmd *cobra.Command, a *app.FFGApp, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		id := model.RootID
		if len(args) > 0 {
			id = args[0]
		}
		node, err := app.BuildExport(a.Service().Tree(), id)
		if err != nil {
			return err
		}

		if output == "" || output == "-" {
			return app.WriteExport(os.Stdout, node, format)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		if err := app.WriteExport(f, node, format); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}),
}

func addContentCommands(root *cobra.Command) {
	importCmd.Flags().StringP("parent", "p", model.RootID, "Folder id to import into")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	exportCmd.Flags().StringP("format", "f", "yaml", "Output format: json or yaml")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	root.AddCommand(encryptCmd, decryptCmd, chmodCmd, backupCmd)
	root.AddCommand(compressCmd, decompressCmd, clearCmd, sortCmd, grepCmd)
	root.AddCommand(importCmd, historyCmd, rolesCmd, exportCmd)
}
