package main

import (
	"fmt"
	"strings"

	"drawer-go/internal/app"
	"drawer-go/internal/drawer"
	"drawer-go/internal/model"

	"github.com/spf13/cobra"
)

func printFiles(files []model.FileRecord) {
	if len(files) == 0 {
		fmt.Println("No files.")
		return
	}
	for _, f := range files {
		fmt.Printf("%s  %10d  %s  %-24s  %s\n",
			f.ID,
			f.Size,
			f.CreatedAt.Format("2006-01-02 15:04:05"),
			f.MimeType,
			f.FullPath,
		)
	}
}

func printTree(nodes []*model.FolderNode, depth int) {
	for _, n := range nodes {
		fmt.Printf("%s%s/\n", strings.Repeat("  ", depth), n.Name)
		printTree(n.Children, depth+1)
	}
}

// folder command
var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderMkCmd = &cobra.Command{
	Use:   "mk NAME",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		return withApp("folder mk", func(a *app.DrawerApp) error {
			f, err := a.Service().CreateFolder(args[0], parent)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n", f.Path)
			return nil
		})
	},
}

var folderLsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List a folder's contents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sortBy, _ := cmd.Flags().GetString("sort")
		path := drawer.RootPath
		if len(args) > 0 {
			path = args[0]
		}
		return withApp("folder ls", func(a *app.DrawerApp) error {
			files, folders, err := a.Service().ListChildren(path, drawer.ParseFileOrder(sortBy))
			if err != nil {
				return err
			}
			for _, f := range folders {
				fmt.Printf("%s/\n", f.Name)
			}
			for _, f := range files {
				fmt.Printf("%-40s  %10d  %s\n", f.DisplayName, f.Size, f.ID)
			}
			return nil
		})
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename PATH NEW_NAME",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("folder rename", func(a *app.DrawerApp) error {
			f, err := a.Service().RenameFolder(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Renamed to %s\n", f.Path)
			return nil
		})
	},
}

var folderMvCmd = &cobra.Command{
	Use:   "mv PATH NEW_PARENT",
	Short: "Move a folder under another folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("folder mv", func(a *app.DrawerApp) error {
			f, err := a.Service().MoveFolder(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Moved to %s\n", f.Path)
			return nil
		})
	},
}

var folderRmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Delete a folder and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("folder rm", func(a *app.DrawerApp) error {
			removed, err := a.Service().DeleteFolder(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d folder(s) and %d file(s)\n", len(removed.Folders), len(removed.Files))
			return nil
		})
	},
}

var folderTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the folder hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("folder tree", func(a *app.DrawerApp) error {
			fmt.Println("/")
			printTree(a.Service().Tree(), 1)
			return nil
		})
	},
}

// file command
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage files",
}

var filePutCmd = &cobra.Command{
	Use:   "put LOCAL_PATH [FOLDER]",
	Short: "Upload a local file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		folder := drawer.RootPath
		if len(args) > 1 {
			folder = args[1]
		}
		return withApp("file put", func(a *app.DrawerApp) error {
			f, err := a.PutFile(args[0], folder, name)
			if err != nil {
				return err
			}
			fmt.Printf("Stored %s as %s (%d bytes)\n", f.FullPath, f.ID, f.Size)
			return nil
		})
	},
}

var fileGetCmd = &cobra.Command{
	Use:   "get ID [DEST]",
	Short: "Download a file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := "."
		if len(args) > 1 {
			dest = args[1]
		}
		return withApp("file get", func(a *app.DrawerApp) error {
			f, err := a.GetFile(args[0], dest)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d bytes)\n", f.DisplayName, f.Size)
			return nil
		})
	},
}

var fileRenameCmd = &cobra.Command{
	Use:   "rename ID NEW_NAME",
	Short: "Rename a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("file rename", func(a *app.DrawerApp) error {
			f, err := a.Service().RenameFile(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Renamed to %s\n", f.FullPath)
			return nil
		})
	},
}

var fileMvCmd = &cobra.Command{
	Use:   "mv ID NEW_FOLDER",
	Short: "Move a file to another folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("file mv", func(a *app.DrawerApp) error {
			f, err := a.Service().MoveFile(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Moved to %s\n", f.FullPath)
			return nil
		})
	},
}

var fileRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("file rm", func(a *app.DrawerApp) error {
			f, err := a.Service().DeleteFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", f.FullPath)
			return nil
		})
	},
}

var fileLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every file",
	RunE: func(cmd *cobra.Command, args []string) error {
		mimeType, _ := cmd.Flags().GetString("type")
		return withApp("file ls", func(a *app.DrawerApp) error {
			if mimeType != "" {
				printFiles(a.Service().FilesByType(mimeType))
				return nil
			}
			printFiles(a.Service().AllFiles())
			return nil
		})
	},
}

var fileSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Find files by name or path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("file search", func(a *app.DrawerApp) error {
			printFiles(a.Service().Search(args[0]))
			return nil
		})
	},
}

var fileStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("file stats", func(a *app.DrawerApp) error {
			s := a.Service().Stats()
			fmt.Printf("Files:   %d\n", s.TotalFiles)
			fmt.Printf("Folders: %d\n", s.TotalFolders)
			fmt.Printf("Size:    %d bytes\n", s.TotalSize)
			for _, m := range s.MimeTypes {
				fmt.Printf("  %-32s %d\n", m.MimeType, m.Count)
			}
			return nil
		})
	},
}

func init() {
	folderCmd.AddCommand(folderMkCmd)
	folderMkCmd.Flags().StringP("parent", "p", drawer.RootPath, "Parent folder path")
	folderCmd.AddCommand(folderLsCmd)
	folderLsCmd.Flags().String("sort", "date", "File order: date or name")
	folderCmd.AddCommand(folderRenameCmd)
	folderCmd.AddCommand(folderMvCmd)
	folderCmd.AddCommand(folderRmCmd)
	folderCmd.AddCommand(folderTreeCmd)
	rootCmd.AddCommand(folderCmd)

	fileCmd.AddCommand(filePutCmd)
	filePutCmd.Flags().String("name", "", "Display name (defaults to the local file name)")
	fileCmd.AddCommand(fileGetCmd)
	fileCmd.AddCommand(fileRenameCmd)
	fileCmd.AddCommand(fileMvCmd)
	fileCmd.AddCommand(fileRmCmd)
	fileCmd.AddCommand(fileLsCmd)
	fileLsCmd.Flags().StringP("type", "t", "", "Only files with this MIME type")
	fileCmd.AddCommand(fileSearchCmd)
	fileCmd.AddCommand(fileStatsCmd)
	rootCmd.AddCommand(fileCmd)
}
