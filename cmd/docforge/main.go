package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docforge/internal/config"
	"docforge/internal/doctree"
	"docforge/internal/editor"
	"docforge/internal/importer"
	"docforge/internal/session"
	"docforge/internal/store"
)

var (
	rootCmd = &cobra.Command{
		Use:   "docforge",
		Short: "Topic-tree authoring tool: import documents, restructure, merge",
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(applyDepthCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(deleteCmd)
}

// openSession loads the project file and builds a session around it.
func openSession(path string) (*session.Session, *doctree.Tree) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := session.NewLogger(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	tree, err := store.LoadProject(path)
	if err != nil {
		log.Fatalf("Failed to load project: %v", err)
	}
	sess, err := session.New(tree, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	return sess, tree
}

// finish reports the operation result and saves the project on success.
func finish(path string, tree *doctree.Tree, res editor.Result) {
	if !res.Success {
		log.Fatalf("Operation failed: %s", res.Message)
	}
	if err := store.SaveProject(path, tree); err != nil {
		log.Fatalf("Failed to save project: %v", err)
	}
	fmt.Printf("✅ %s\n", res.Message)
}

var importCmd = &cobra.Command{
	Use:   "import [markdown-file]",
	Short: "Import a markdown document into a new project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("out")

		tree, err := importer.MarkdownImporter{}.Import(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		if err := store.SaveProject(out, tree); err != nil {
			log.Fatalf("Failed to save project: %v", err)
		}
		fmt.Printf("📄 Imported %s -> %s (%d topics)\n", args[0], out, len(tree.Topics))
	},
}

var showCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Print the project outline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tree, err := store.LoadProject(args[0])
		if err != nil {
			log.Fatalf("Failed to load project: %v", err)
		}
		tree.Walk(func(n, _ *doctree.Node) bool {
			marker := "§"
			if n.IsTopic() {
				marker = "•"
			}
			title := n.Title
			if title == "" && n.IsTopic() {
				if topic := tree.Topic(n.Ref); topic != nil {
					title = topic.Title
				}
			}
			indent := n.Level - 1
			if indent < 0 {
				indent = 0
			}
			fmt.Printf("%s%s %s", strings.Repeat("  ", indent), marker, title)
			if n.IsTopic() {
				fmt.Printf("  (%s)", n.Ref)
			}
			fmt.Println()
			return true
		})
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview [project]",
	Short: "Print one topic body as plain text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref, _ := cmd.Flags().GetString("ref")

		tree, err := store.LoadProject(args[0])
		if err != nil {
			log.Fatalf("Failed to load project: %v", err)
		}
		out, err := importer.TextPreviewer{}.Preview(tree, ref)
		if err != nil {
			log.Fatalf("Preview failed: %v", err)
		}
		fmt.Print(out)
	},
}

var applyDepthCmd = &cobra.Command{
	Use:   "apply-depth [project]",
	Short: "Limit the outline depth, merging deeper nodes into ancestors",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		sess, tree := openSession(args[0])
		defer sess.Close()
		finish(args[0], tree, sess.ApplyDepthLimit(limit))
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [project]",
	Short: "Merge source topics into a target topic",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, _ := cmd.Flags().GetString("target")
		sources, _ := cmd.Flags().GetStringSlice("sources")

		sess, tree := openSession(args[0])
		defer sess.Close()
		finish(args[0], tree, sess.MergeTopics(sources, target))
	},
}

var moveCmd = &cobra.Command{
	Use:   "move [project]",
	Short: "Move a topic one position up or down in document order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref, _ := cmd.Flags().GetString("ref")
		dir, _ := cmd.Flags().GetString("dir")

		sess, tree := openSession(args[0])
		defer sess.Close()

		node := tree.FindRef(ref)
		if node == nil {
			log.Fatalf("No topic node for %q", ref)
		}
		var res editor.Result
		if dir == "down" {
			res = sess.MoveDown(node)
		} else {
			res = sess.MoveUp(node)
		}
		finish(args[0], tree, res)
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename [project]",
	Short: "Rename a topic",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref, _ := cmd.Flags().GetString("ref")
		title, _ := cmd.Flags().GetString("title")

		sess, tree := openSession(args[0])
		defer sess.Close()
		finish(args[0], tree, sess.Rename(ref, title))
	},
}

// findSection resolves a section node by its navigation title, first match
// in document order. Sections carry no reference key, so the CLI addresses
// them by title.
func findSection(tree *doctree.Tree, title string) *doctree.Node {
	var found *doctree.Node
	tree.Walk(func(n, _ *doctree.Node) bool {
		if n.IsSection() && n.Title == title {
			found = n
			return false
		}
		return true
	})
	return found
}

var insertCmd = &cobra.Command{
	Use:   "insert [project]",
	Short: "Insert a new section after a topic or at the top of a section",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		after, _ := cmd.Flags().GetString("after")
		into, _ := cmd.Flags().GetString("into")

		sess, tree := openSession(args[0])
		defer sess.Close()

		var res editor.Result
		switch {
		case after != "":
			node := tree.FindRef(after)
			if node == nil {
				log.Fatalf("No topic node for %q", after)
			}
			res = sess.InsertSection(node, false, title)
		case into != "":
			section := findSection(tree, into)
			if section == nil {
				log.Fatalf("No section titled %q", into)
			}
			res = sess.InsertSection(section, true, title)
		default:
			log.Fatalf("Either --after or --into is required")
		}
		finish(args[0], tree, res)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [project]",
	Short: "Convert a section into a content-bearing topic",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("section")

		sess, tree := openSession(args[0])
		defer sess.Close()

		section := findSection(tree, title)
		if section == nil {
			log.Fatalf("No section titled %q", title)
		}
		finish(args[0], tree, sess.ConvertSectionToTopic(section))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [project]",
	Short: "Delete topics by reference key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		refs, _ := cmd.Flags().GetStringSlice("refs")

		sess, tree := openSession(args[0])
		defer sess.Close()
		finish(args[0], tree, sess.DeleteTopics(refs))
	},
}

func init() {
	importCmd.Flags().String("out", "project.json", "Output project file")
	previewCmd.Flags().String("ref", "", "Topic reference key")
	applyDepthCmd.Flags().Int("limit", 2, "Maximum outline depth")
	mergeCmd.Flags().String("target", "", "Target topic reference key")
	mergeCmd.Flags().StringSlice("sources", nil, "Source topic reference keys, in merge order")
	moveCmd.Flags().String("ref", "", "Topic reference key")
	moveCmd.Flags().String("dir", "up", "Direction: up or down")
	renameCmd.Flags().String("ref", "", "Topic reference key")
	renameCmd.Flags().String("title", "", "New title")
	insertCmd.Flags().String("title", "", "Title of the new section")
	insertCmd.Flags().String("after", "", "Topic reference key to insert after")
	insertCmd.Flags().String("into", "", "Section title to insert into as first child")
	convertCmd.Flags().String("section", "", "Title of the section to convert")
	deleteCmd.Flags().StringSlice("refs", nil, "Topic reference keys")
}
