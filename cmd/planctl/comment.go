package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"planboard.app/server/internal/model"
)

func commentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Read and write task comments",
	}

	add := &cobra.Command{
		Use:   "add <taskId> <content>...",
		Short: "Comment on a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			comment, err := a.api.AddComment(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if t, ok := a.store.Task(args[0]); ok {
				t.Comments = append(t.Comments, *comment)
				if err := a.store.UpsertTask(t); err != nil {
					return err
				}
			}
			fmt.Printf("Comment %s added\n", comment.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list <taskId>",
		Short: "List comments on a task, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			comments, err := a.api.ListComments(ctx, args[0])
			if err != nil {
				return err
			}
			if t, ok := a.store.Task(args[0]); ok {
				t.Comments = comments
				if err := a.store.UpsertTask(t); err != nil {
					return err
				}
			}
			return printComments(comments)
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func printComments(comments []model.Comment) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tAUTHOR\tCOMMENT")
	for _, c := range comments {
		author := c.UserID
		if c.User != nil && c.User.Name != "" {
			author = c.User.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.CreatedAt.Format("2006-01-02 15:04"), author, c.Content)
	}
	return tw.Flush()
}
