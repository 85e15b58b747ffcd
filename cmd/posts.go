package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/blogctl/internal/content"
	"github.com/KaramelBytes/blogctl/internal/frontmatter"
	"github.com/spf13/cobra"
)

var errContentProblems = errors.New("content store has problems")

var (
	postsListTag   string
	postsNewCats   []string
	postsNewTags   []string
	postsNewFormat string
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Inspect and scaffold posts in the content store",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := newStore(cfg, logger).Load(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(posts))
		for _, p := range posts {
			if postsListTag != "" && !p.HasTag(postsListTag) {
				continue
			}
			date := "-"
			if !p.Date.IsZero() {
				date = p.Date.Format("2006-01-02")
			}
			sum := p.Summarize()
			rows = append(rows, []string{
				date,
				p.Title,
				strings.Join(p.Categories, "/"),
				strings.Join(p.Tags, ", "),
				fmt.Sprintf("%d min", sum.ReadingMinutes),
			})
		}
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no posts)")
			return nil
		}
		return writeTable(cmd.OutOrStdout(), []string{"DATE", "TITLE", "CATEGORIES", "TAGS", "READ"}, rows)
	},
}

var postsNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Scaffold a new post with front matter",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := frontmatter.Format(strings.ToLower(postsNewFormat))
		if _, err := frontmatter.Lookup(format); err != nil {
			return err
		}
		path, err := newStore(cfg, logger).New(strings.Join(args, " "), content.NewOptions{
			Categories: postsNewCats,
			Tags:       postsNewTags,
			Format:     format,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Created", path)
		return nil
	},
}

var postsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report posts with missing or invalid front matter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		problems, err := newStore(cfg, logger).Check(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(problems) == 0 {
			fmt.Fprintln(out, "✓ No problems found")
			return nil
		}
		for _, p := range problems {
			fmt.Fprintf(out, "✗ %s\n", p.Error())
		}
		return fmt.Errorf("%w: %d", errContentProblems, len(problems))
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsNewCmd, postsCheckCmd)

	postsListCmd.Flags().StringVar(&postsListTag, "tag", "", "only list posts with this tag")
	postsNewCmd.Flags().StringSliceVarP(&postsNewCats, "category", "c", nil, "category (repeatable, ordered)")
	postsNewCmd.Flags().StringSliceVarP(&postsNewTags, "tag", "t", nil, "tag (repeatable)")
	postsNewCmd.Flags().StringVar(&postsNewFormat, "format", string(frontmatter.YAML), "front matter format: yaml, toml, json")
}
