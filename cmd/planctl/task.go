package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/model"
)

func tasksCmd(a *app) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks in the current workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			ws := a.store.CurrentWorkspace()
			if ws == nil {
				return fmt.Errorf("no workspace selected")
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROJECT\tTITLE\tSTATUS\tPRIORITY\tDUE")
			for _, p := range ws.Projects {
				if projectID != "" && p.ID != projectID {
					continue
				}
				for _, t := range p.Tasks {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						t.ID, p.Name, t.Title, t.Status, t.Priority, t.DueDate.Format("2006-01-02"))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "only tasks of this project")
	return cmd
}

func taskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, edit and delete tasks",
	}
	cmd.AddCommand(taskCreateCmd(a), taskUpdateCmd(a), taskDeleteCmd(a))
	return cmd
}

type taskFlags struct {
	title, description string
	kind, status, prio string
	assignee, due      string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "task title")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.kind, "type", "", "TASK, BUG, FEATURE, IMPROVEMENT or OTHER")
	fs.StringVar(&f.status, "status", "", "TODO, IN_PROGRESS or DONE")
	fs.StringVar(&f.prio, "priority", "", "LOW, MEDIUM or HIGH")
	fs.StringVar(&f.assignee, "assignee", "", "assignee user id")
	fs.StringVar(&f.due, "due", "", "due date (YYYY-MM-DD)")
}

func taskCreateCmd(a *app) *cobra.Command {
	var (
		f         taskFlags
		projectID string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			due, err := dto.ParseDate(f.due)
			if err != nil {
				return err
			}
			req := dto.CreateTaskRequest{
				ProjectID: projectID,
				Title:     f.title,
				Type:      model.TaskType(strings.ToUpper(f.kind)),
				Status:    model.TaskStatus(strings.ToUpper(f.status)),
				Priority:  model.Priority(strings.ToUpper(f.prio)),
				DueDate:   &due,
			}
			if cmd.Flags().Changed("description") {
				req.Description = &f.description
			}
			if f.assignee != "" {
				req.AssigneeID = &f.assignee
			}

			task, err := a.api.CreateTask(ctx, req)
			if err != nil {
				return err
			}
			if err := a.store.UpsertTask(*task); err != nil {
				return err
			}
			fmt.Printf("Created task %s (%s)\n", task.Title, task.ID)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func taskUpdateCmd(a *app) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "update <taskId>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}

			var req dto.UpdateTaskRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &f.title
			}
			if flags.Changed("description") {
				req.Description = &f.description
			}
			if flags.Changed("type") {
				v := model.TaskType(strings.ToUpper(f.kind))
				req.Type = &v
			}
			if flags.Changed("status") {
				v := model.TaskStatus(strings.ToUpper(f.status))
				req.Status = &v
			}
			if flags.Changed("priority") {
				v := model.Priority(strings.ToUpper(f.prio))
				req.Priority = &v
			}
			if flags.Changed("assignee") {
				req.AssigneeID = &f.assignee
			}
			if flags.Changed("due") {
				due, err := dto.ParseDate(f.due)
				if err != nil {
					return err
				}
				req.DueDate = &due
			}

			task, err := a.api.UpdateTask(ctx, args[0], req)
			if err != nil {
				return err
			}
			if err := a.store.UpsertTask(*task); err != nil {
				return err
			}
			fmt.Printf("Updated task %s\n", task.Title)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func taskDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <taskId>...",
		Short: "Delete tasks of one project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			projectID, err := a.projectOfTasks(args)
			if err != nil {
				return err
			}
			if err := a.api.DeleteTasks(ctx, args); err != nil {
				return err
			}
			if err := a.store.DeleteTasks(args, projectID); err != nil {
				return err
			}
			fmt.Printf("Deleted %d task(s)\n", len(args))
			return nil
		},
	}
}

// projectOfTasks returns the single project every id belongs to.
func (a *app) projectOfTasks(ids []string) (string, error) {
	projectID := ""
	for _, id := range ids {
		t, ok := a.store.Task(id)
		if !ok {
			return "", fmt.Errorf("unknown task %s", id)
		}
		if projectID != "" && t.ProjectID != projectID {
			return "", fmt.Errorf("tasks belong to different projects")
		}
		projectID = t.ProjectID
	}
	return projectID, nil
}
